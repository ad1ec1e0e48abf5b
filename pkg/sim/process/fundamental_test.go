package process

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ferrari1996gk/exchange-lob/params"
)

func gbmParams() params.FVParams {
	return params.FVParams{
		S0:       100,
		Mu:       0,
		Sigma:    1e-6,
		StepSize: 25_000,
		DumpFreq: 1,
	}
}

func TestFundamentalValueGBMIsDeterministicPerSeed(t *testing.T) {
	a, err := NewFundamentalValue(42, gbmParams(), t.TempDir())
	require.NoError(t, err)
	b, err := NewFundamentalValue(42, gbmParams(), t.TempDir())
	require.NoError(t, err)
	c, err := NewFundamentalValue(43, gbmParams(), t.TempDir())
	require.NoError(t, err)

	for step := int64(0); step < 100; step++ {
		a.Update(step, "t")
		b.Update(step, "t")
		c.Update(step, "t")
	}
	require.Equal(t, a.Value(), b.Value())
	require.NotEqual(t, a.Value(), c.Value())

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	require.NoError(t, c.Close())
}

func TestFundamentalValueStepZeroKeepsS0(t *testing.T) {
	fv, err := NewFundamentalValue(1, gbmParams(), t.TempDir())
	require.NoError(t, err)
	fv.Update(0, "t")
	require.Equal(t, 100.0, fv.Value())
	require.NoError(t, fv.Close())
}

func TestFundamentalValueReplaysSourcePath(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "source_fv.csv"),
		[]byte("100.5\n101.25\n99.0\n"), 0o644))

	p := gbmParams()
	p.IsReady = true
	p.SourcePath = src

	fv, err := NewFundamentalValue(1, p, t.TempDir())
	require.NoError(t, err)
	require.True(t, fv.Ready())
	require.Equal(t, 3, fv.SourceLength())

	fv.Update(0, "t")
	require.Equal(t, 100.5, fv.Value())
	fv.Update(2, "t")
	require.Equal(t, 99.0, fv.Value())
	require.NoError(t, fv.Close())
}

func TestFundamentalValueDumpsAtFrequency(t *testing.T) {
	dir := t.TempDir()
	p := gbmParams()
	p.DumpFreq = 5

	fv, err := NewFundamentalValue(1, p, dir)
	require.NoError(t, err)
	for step := int64(0); step < 10; step++ {
		fv.Update(step, "t")
	}
	require.NoError(t, fv.Close())

	b, err := os.ReadFile(filepath.Join(dir, "fundamental_value.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Equal(t, "timestamp,value", lines[0])
	require.Len(t, lines, 3) // header + steps 0 and 5
}

func TestMomentumRecorderSamplesEveryTenSteps(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMomentumRecorder(dir)
	require.NoError(t, err)
	for step := int64(0); step < 25; step++ {
		m.Record(step, "t", float64(step)*0.1)
	}
	require.InDelta(t, 2.4, m.Value(), 1e-9)
	require.NoError(t, m.Close())

	b, err := os.ReadFile(filepath.Join(dir, "momentum_value.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 4) // header + steps 0, 10, 20
}
