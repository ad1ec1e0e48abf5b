package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSummary struct {
	Orders int `json:"orders"`
}

func TestRunStoreStatusLifecycle(t *testing.T) {
	s, err := NewRunStore(filepath.Join(t.TempDir(), "runs"))
	require.NoError(t, err)
	defer s.Close()

	st, err := s.Status(3)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st, "unknown runs are pending")

	require.NoError(t, s.SetStatus(3, StatusRunning))
	require.NoError(t, s.SetStatus(3, StatusOK))
	st, err = s.Status(3)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
}

func TestRunStoreSummaryRoundTrip(t *testing.T) {
	s, err := NewRunStore(filepath.Join(t.TempDir(), "runs"))
	require.NoError(t, err)
	defer s.Close()

	var out testSummary
	found, err := s.Summary(1, &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SaveSummary(1, testSummary{Orders: 42}))
	found, err = s.Summary(1, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, out.Orders)
}
