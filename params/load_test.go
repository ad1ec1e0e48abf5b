package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSimJSON = `{
	"symbol": "SIM",
	"closing_bid_prc": 100.0,
	"closing_ask_prc": 100.01,
	"tick_size": 0.01,
	"step_size": 25000,
	"date": "2021-06-15",
	"verbose": 1,
	"n_zi_traders": 10
}`

const testModelJSON = `{
	"ZI_base_params": {"delta": 0.05, "mean": 2.0, "sd": 0.5},
	"ZI_params": {"alpha": 0.3, "zi_mo_ratio": 0.3}
}`

func writeWorkflow(t *testing.T, simJSON, modelJSON, fvJSON string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sim_params.json"), []byte(simJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_params.json"), []byte(modelJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fundamental_value_params.json"), []byte(fvJSON), 0o644))
	return dir
}

func TestLoadWorkflow(t *testing.T) {
	dir := writeWorkflow(t, testSimJSON, testModelJSON,
		`{"mu": 0.0, "sigma": 0.1, "dump_freq": 5, "is_ready": 0}`)

	sim, model, fv, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "SIM", sim.Symbol)
	assert.Equal(t, int64(510*60_000_000/25_000), sim.NSteps)
	assert.Equal(t, Range{Min: 2.0, Max: 2.0}, model.ZIBase.Mean)
	assert.Equal(t, int64(5), fv.DumpFreq)
	assert.False(t, fv.IsReady)
}

func TestLoadRejectsNonPositiveDumpFreq(t *testing.T) {
	dir := writeWorkflow(t, testSimJSON, testModelJSON,
		`{"mu": 0.0, "sigma": 0.1, "dump_freq": 0}`)

	_, _, _, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dump_freq")
}

func TestLoadRejectsCrossedClosingPrices(t *testing.T) {
	bad := `{
		"symbol": "SIM",
		"closing_bid_prc": 100.01,
		"closing_ask_prc": 100.0,
		"tick_size": 0.01,
		"step_size": 25000,
		"date": "2021-06-15"
	}`
	dir := writeWorkflow(t, bad, testModelJSON, `{"mu": 0.0, "sigma": 0.1}`)

	_, _, _, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing ask")
}
