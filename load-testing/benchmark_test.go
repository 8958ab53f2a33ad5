package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	stats := NewBenchmarkStats()
	for i := 1; i <= 10; i++ {
		var err error
		if i%5 == 0 {
			err = errors.New("boom")
		}
		stats.AddResult(RequestResult{Operation: "insert", Duration: time.Duration(i) * time.Millisecond, Err: err})
	}
	stats.EndTime = stats.StartTime.Add(2 * time.Second)

	total, failed := stats.Totals()
	assert.Equal(t, int64(10), total)
	assert.Equal(t, int64(2), failed)
	assert.InDelta(t, 80.0, stats.SuccessRate(), 0.001)
	assert.InDelta(t, 5.0, stats.RPS(), 0.001)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 9 * time.Millisecond, 10 * time.Millisecond}, stats.Percentiles(0.5, 0.9, 0.99))
}

func TestEmptyStats(t *testing.T) {
	stats := NewBenchmarkStats()
	assert.Equal(t, []time.Duration{0}, stats.Percentiles(0.5))
	assert.Zero(t, stats.SuccessRate())
}
