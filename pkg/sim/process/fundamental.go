package process

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/sink"
)

// FundamentalValue drives the exogenous asset-value process that
// informed agents track. It either evolves a geometric Brownian motion
// from its own seeded stream, or replays a pre-computed path from
// source_fv.csv, and dumps the realised path to fundamental_value.csv.
type FundamentalValue struct {
	value    float64
	ready    bool
	source   []float64
	rng      *rand.Rand
	drift    float64
	diffSD   float64
	dumpFreq int64
	out      *sink.TableWriter
}

func NewFundamentalValue(seed int64, p params.FVParams, dir string) (*FundamentalValue, error) {
	fv := &FundamentalValue{
		ready:    p.IsReady,
		dumpFreq: p.DumpFreq,
	}
	if p.IsReady {
		source, err := readSourcePath(filepath.Join(p.SourcePath, "source_fv.csv"))
		if err != nil {
			return nil, err
		}
		fv.source = source
	} else {
		dt := float64(p.StepSize)
		fv.value = p.S0
		fv.drift = (p.Mu - p.Sigma*p.Sigma/2) * dt
		fv.diffSD = p.Sigma * math.Sqrt(dt)
		fv.rng = rand.New(rand.NewSource(seed))
	}

	out, err := sink.NewTableWriter(filepath.Join(dir, "fundamental_value.csv"),
		[]string{"timestamp", "value"})
	if err != nil {
		return nil, err
	}
	fv.out = out
	return fv, nil
}

func readSourcePath(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fundamental value source: %w", err)
	}
	defer f.Close()

	var source []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("parse fundamental value source line %d: %w", len(source)+1, err)
		}
		source = append(source, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read fundamental value source: %w", err)
	}
	return source, nil
}

// Update advances the process to the given step. Replay mode indexes
// the source path directly; GBM mode multiplies by one log-normal
// increment per step after the first.
func (fv *FundamentalValue) Update(step int64, now string) {
	if fv.ready {
		fv.value = fv.source[step]
	} else if step != 0 {
		fv.value *= math.Exp(fv.drift + fv.diffSD*fv.rng.NormFloat64())
	}
	if step%fv.dumpFreq == 0 {
		fv.out.Write([]string{now, strconv.FormatFloat(fv.value, 'f', 6, 64)})
	}
}

func (fv *FundamentalValue) Value() float64 {
	return fv.value
}

// Ready reports whether the process replays a pre-computed path.
func (fv *FundamentalValue) Ready() bool {
	return fv.ready
}

// SourceLength is the number of replayable steps, 0 in GBM mode.
func (fv *FundamentalValue) SourceLength() int {
	return len(fv.source)
}

func (fv *FundamentalValue) Close() error {
	return fv.out.Close()
}
