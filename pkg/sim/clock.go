package sim

import (
	"fmt"
	"time"
)

// UK clock-change window over the simulated period: market-open
// timestamps inside it render one hour earlier in UTC.
var (
	utcShiftStart = time.Date(2020, time.October, 26, 0, 0, 0, 0, time.UTC)
	utcShiftEnd   = time.Date(2021, time.March, 28, 0, 0, 0, 0, time.UTC)
)

// StepClock renders simulation steps as market timestamps: the trading
// date's 09:00 open plus the elapsed simulated time, with millisecond
// suffix.
type StepClock struct {
	open     time.Time
	stepSize int64 // microseconds per step
	layout   string
}

func NewStepClock(date string, stepSize int64, layout string) (*StepClock, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse trading date %q: %w", date, err)
	}
	open := day.Add(9 * time.Hour)
	if open.After(utcShiftStart) && open.Before(utcShiftEnd) {
		open = open.Add(-time.Hour)
	}
	return &StepClock{open: open, stepSize: stepSize, layout: layout}, nil
}

func (c *StepClock) Stamp(step int64) string {
	elapsed := step * c.stepSize
	t := c.open.Add(time.Duration(elapsed) * time.Microsecond)
	return fmt.Sprintf("%s.%03d", t.Format(c.layout), (elapsed/1000)%1000)
}
