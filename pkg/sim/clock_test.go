package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepClockStampsFromMarketOpen(t *testing.T) {
	c, err := NewStepClock("2021-06-15", 25_000, "02-Jan-2006 15:04:05")
	require.NoError(t, err)

	assert.Equal(t, "15-Jun-2021 09:00:00.000", c.Stamp(0))
	// 40 steps * 25ms = 1s
	assert.Equal(t, "15-Jun-2021 09:00:01.000", c.Stamp(40))
	assert.Equal(t, "15-Jun-2021 09:00:00.025", c.Stamp(1))
	assert.Equal(t, "15-Jun-2021 09:00:00.975", c.Stamp(39))
}

func TestStepClockShiftsInsideClockChangeWindow(t *testing.T) {
	c, err := NewStepClock("2021-01-05", 25_000, "02-Jan-2006 15:04:05")
	require.NoError(t, err)
	assert.Equal(t, "05-Jan-2021 08:00:00.000", c.Stamp(0))
}

func TestStepClockRejectsBadDate(t *testing.T) {
	_, err := NewStepClock("05-01-2021", 25_000, "02-Jan-2006 15:04:05")
	require.Error(t, err)
}
