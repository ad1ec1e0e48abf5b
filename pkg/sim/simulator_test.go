package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

func testSimParams() params.SimParams {
	return params.SimParams{
		Symbol:        "SIM",
		ClosingBidPrc: 100.00,
		ClosingAskPrc: 100.01,
		TickSize:      0.01,
		StepSize:      25_000,
		NSteps:        500,
		Verbose:       3,
		L2Depth:       10,
		DateFormat:    "02-Jan-2006 15:04:05",

		NZITraders: 10,
		NFTTraders: 2,
		NMTTraders: 2,
		NMMTraders: 1,
		NSTTraders: 1,
	}
}

func testRunParams(seed int64, dir string) params.RunParams {
	base := params.ZIBaseParams{
		Delta:     0.05,
		Mean:      2,
		SD:        0.5,
		LimitVol:  5,
		MarketVol: 5,
	}
	return params.RunParams{
		RunID:       0,
		Seed:        seed,
		Date:        "2021-06-15",
		ResultsPath: dir,
		ZI:          params.ZIParams{Alpha: 0.3, Mu: 0.1, Base: base},
		FT: params.FTParams{
			KappaLO: 0.05, KappaMO: 0.02, KappaLO3: 0.001, KappaMO3: 0.0005,
			Freq: 10, Base: base,
		},
		MT: params.MTParams{
			Alpha: 0.2, BetaLO: 0.2, BetaMO: 0.1, Gamma: 2, Base: base,
		},
		MM: params.MMParams{
			Delta: 0.1, LimitRate: 0.5, Vol: 10, Edge: 5,
			PosLimit: 200, PosSafe: 50, MarketVol: 20, Rest: 100,
		},
		ST: params.STParams{MarketRate: 0.005, Vol: 10, Interval: 5},
		FV: params.FVParams{
			S0: 100, Mu: 0, Sigma: 1e-5, StepSize: 25_000, DumpFreq: 100,
		},
	}
}

func runOnce(t *testing.T, seed int64) (Summary, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(testSimParams(), testRunParams(seed, dir), zap.NewNop().Sugar(), nil)
	require.NoError(t, err)
	summary, err := s.Run()
	require.NoError(t, err)
	return summary, dir
}

func TestRunIsDeterministicInTheSeed(t *testing.T) {
	sum1, dir1 := runOnce(t, 1234)
	sum2, dir2 := runOnce(t, 1234)
	require.Equal(t, sum1, sum2)

	for _, name := range []string{
		"trades.csv", "orders.csv", "lob_l1.csv",
		"orders_cancelled.csv", "fundamental_value.csv",
		"momentum_value.csv", "agentPosition.csv",
	} {
		a, err := os.ReadFile(filepath.Join(dir1, name))
		require.NoError(t, err, name)
		b, err := os.ReadFile(filepath.Join(dir2, name))
		require.NoError(t, err, name)
		assert.Equal(t, a, b, "%s differs between identical seeds", name)
	}
}

func TestRunsWithDifferentSeedsDiverge(t *testing.T) {
	sum1, dir1 := runOnce(t, 1)
	_, dir2 := runOnce(t, 2)
	assert.Greater(t, sum1.NumOrders, uint64(0))

	a, err := os.ReadFile(filepath.Join(dir1, "orders.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir2, "orders.csv"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRunProducesActivity(t *testing.T) {
	summary, dir := runOnce(t, 99)
	assert.Greater(t, summary.NumOrders, uint64(100))
	assert.Greater(t, summary.NumTransactions, uint64(0))
	assert.Equal(t, int64(500), summary.Steps)

	b, err := os.ReadFile(filepath.Join(dir, "agentPosition.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "ZIpos,FTpos,MTpos,HMTpos,MMpos,STpos,INSpos,step,time")
}

func TestReplayedFundamentalValueCapsTheRun(t *testing.T) {
	dir := t.TempDir()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "source_fv.csv"),
		[]byte("100\n100.1\n100.2\n"), 0o644))

	run := testRunParams(7, dir)
	run.FV.IsReady = true
	run.FV.SourcePath = src

	s, err := New(testSimParams(), run, zap.NewNop().Sugar(), nil)
	require.NoError(t, err)
	summary, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Steps)
}

func TestStepTradeIsVolumeWeighted(t *testing.T) {
	txs := []orderbook.Transaction{
		{Price: 10_000, Vol: 3},
		{Price: 10_010, Vol: 1},
	}

	trade, ok := stepTrade(txs, 0.01, 42, "15-Jun-2021 09:00:01.050")
	require.True(t, ok)
	// 0.01 * (10000*3 + 10010*1) / 4
	assert.InDelta(t, 100.025, trade.VWAP, 1e-9)
	assert.Equal(t, int64(4), trade.Vol)
	assert.Equal(t, int64(42), trade.Step)
	assert.Equal(t, "15-Jun-2021 09:00:01.050", trade.Time)
}

func TestStepWithoutTransactionsBroadcastsNoTrade(t *testing.T) {
	trade, ok := stepTrade(nil, 0.01, 1, "")
	assert.False(t, ok)
	assert.Equal(t, orderbook.Trade{}, trade)
}
