package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZeroIntervalDefaultsToOneSecond(t *testing.T) {
	p := NewProfiler(0)
	assert.Equal(t, time.Second, p.updateInterval)
}

func TestTickBeforeIntervalIsQuiet(t *testing.T) {
	p := NewProfiler(time.Hour)
	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
}

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler(time.Nanosecond)
	time.Sleep(time.Millisecond)
	assert.True(t, p.Tick())

	// Counters reset after a report, so the very next tick is quiet again.
	assert.False(t, p.Tick())
}
