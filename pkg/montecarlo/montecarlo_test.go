package montecarlo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/storage"
)

func batchSimParams() params.SimParams {
	return params.SimParams{
		Symbol:        "SIM",
		ClosingBidPrc: 100.00,
		ClosingAskPrc: 100.01,
		TickSize:      0.01,
		StepSize:      25_000,
		NSteps:        200,
		Verbose:       1,
		L2Depth:       10,
		DateFormat:    "02-Jan-2006 15:04:05",
		Date:          "2021-06-15",
		NThreads:      2,
		NRuns:         3,
		Seed:          777,
		NZITraders:    10,
	}
}

func batchModelParams() params.ModelParams {
	var m params.ModelParams
	m.ZIBase.Delta = 0.05
	m.ZIBase.Mean = params.Range{Min: 1.5, Max: 2.5}
	m.ZIBase.SD = params.Range{Min: 0.4, Max: 0.4}
	m.ZIBase.LimitVol = 5
	m.ZIBase.MarketVol = 5
	m.ZI.Alpha = 3
	m.ZI.MORatio = 0.3
	return m
}

func batchFVParams() params.FVParams {
	return params.FVParams{Mu: 0, Sigma: 1e-5, DumpFreq: 100}
}

func TestExpandIsDeterministicAndScaled(t *testing.T) {
	dir1 := t.TempDir()
	runs1, err := Expand(dir1, dir1, batchSimParams(), batchModelParams(), batchFVParams())
	require.NoError(t, err)
	require.Len(t, runs1, 3)

	dir2 := t.TempDir()
	runs2, err := Expand(dir2, dir2, batchSimParams(), batchModelParams(), batchFVParams())
	require.NoError(t, err)

	for i := range runs1 {
		assert.Equal(t, runs1[i].Seed, runs2[i].Seed, "seed chain is reproducible")
		assert.Equal(t, runs1[i].ZI, runs2[i].ZI)
	}

	// Distinct seeds and calibration samples across runs.
	assert.NotEqual(t, runs1[0].Seed, runs1[1].Seed)
	assert.NotEqual(t, runs1[0].ZI.Base.Mean, runs1[1].ZI.Base.Mean)
	// Pinned ranges stay pinned.
	assert.Equal(t, 0.4, runs1[0].ZI.Base.SD)

	// Per-capita scaling: alpha 3 across 10 traders.
	assert.InDelta(t, 0.3, runs1[0].ZI.Alpha, 1e-12)
	assert.InDelta(t, 0.09, runs1[0].ZI.Mu, 1e-12)

	for i, run := range runs1 {
		assert.DirExists(t, run.ResultsPath)
		assert.FileExists(t, filepath.Join(run.ResultsPath, "run_params.json"), "run %d", i)
	}
}

func TestExpandRunDirsAreZeroPadded(t *testing.T) {
	dir := t.TempDir()
	runs, err := Expand(dir, dir, batchSimParams(), batchModelParams(), batchFVParams())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_00000"), runs[0].ResultsPath)
	assert.Equal(t, filepath.Join(dir, "run_00002"), runs[2].ResultsPath)
}

func TestRunBatchSkipsCompletedRuns(t *testing.T) {
	dir := t.TempDir()
	simParams := batchSimParams()
	runs, err := Expand(dir, dir, simParams, batchModelParams(), batchFVParams())
	require.NoError(t, err)

	store, err := storage.NewRunStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.SetStatus(0, storage.StatusOK))

	runner := NewRunner(simParams, store, zap.NewNop().Sugar(), nil)
	result := runner.RunBatch(runs)
	assert.Equal(t, 2, result.Completed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	// Re-running the batch is a no-op.
	result = runner.RunBatch(runs)
	assert.Equal(t, 0, result.Completed)
	assert.Equal(t, 3, result.Skipped)
}

func TestRunBatchIsolatesFailedRuns(t *testing.T) {
	dir := t.TempDir()
	simParams := batchSimParams()
	simParams.NFTTraders = 2
	model := batchModelParams()
	// FT acting frequency of zero makes the strategy divide by zero.
	model.FT.KappaLO = params.Range{Min: 0.1, Max: 0.1}
	model.FT.KappaLO3 = params.Range{Min: 0.01, Max: 0.01}
	model.FT.KappaMORatio = 0.5
	model.FT.Freq = 0

	runs, err := Expand(dir, dir, simParams, model, batchFVParams())
	require.NoError(t, err)

	store, err := storage.NewRunStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	runner := NewRunner(simParams, store, zap.NewNop().Sugar(), nil)
	result := runner.RunBatch(runs)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, 0, result.Completed)

	st, err := store.Status(1)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusFailed, st)
}

func TestRunBatchPersistsSummaries(t *testing.T) {
	dir := t.TempDir()
	simParams := batchSimParams()
	simParams.NRuns = 1
	runs, err := Expand(dir, dir, simParams, batchModelParams(), batchFVParams())
	require.NoError(t, err)

	store, err := storage.NewRunStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	runner := NewRunner(simParams, store, zap.NewNop().Sugar(), nil)
	result := runner.RunBatch(runs)
	require.Equal(t, 1, result.Completed)

	var summary struct {
		NumOrders uint64 `json:"num_orders"`
	}
	found, err := store.Summary(0, &summary)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, result.Summaries[0].NumOrders, summary.NumOrders)

	_, err = os.Stat(filepath.Join(runs[0].ResultsPath, "trades.csv"))
	assert.NoError(t, err)
}
