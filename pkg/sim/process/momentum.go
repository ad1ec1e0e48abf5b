package process

import (
	"path/filepath"
	"strconv"

	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/sink"
)

// momentum_value.csv sampling interval, in steps.
const momentumDumpFreq = 10

// MomentumRecorder tracks the aggregate momentum signal across the
// momentum-trader population and samples it to momentum_value.csv.
type MomentumRecorder struct {
	value float64
	out   *sink.TableWriter
}

func NewMomentumRecorder(dir string) (*MomentumRecorder, error) {
	out, err := sink.NewTableWriter(filepath.Join(dir, "momentum_value.csv"),
		[]string{"timestamp", "value"})
	if err != nil {
		return nil, err
	}
	return &MomentumRecorder{out: out}, nil
}

func (m *MomentumRecorder) Record(step int64, now string, momentum float64) {
	m.value = momentum
	if step%momentumDumpFreq == 0 {
		m.out.Write([]string{now, strconv.FormatFloat(momentum, 'f', 6, 64)})
	}
}

func (m *MomentumRecorder) Value() float64 {
	return m.value
}

func (m *MomentumRecorder) Close() error {
	return m.out.Close()
}
