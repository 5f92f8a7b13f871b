package telemetry

import (
	"math"

	"github.com/pthm-cable/slime/systems"
)

// Collector accumulates tick counts within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32
	steppedTicks    int
	pausedTicks     int

	// Reused between flushes
	values []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTick records one host frame. stepped is false while paused.
func (c *Collector) RecordTick(stepped bool) {
	if stepped {
		c.steppedTicks++
	} else {
		c.pausedTicks++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the current field and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, simTime float64, agents int, view systems.FieldView) WindowStats {
	c.values = view.Intensities(c.values)
	sum := SummarizeField(c.values)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,
		Agents:          agents,
		SteppedTicks:    c.steppedTicks,
		PausedTicks:     c.pausedTicks,
		TrailTotal:      sum.Total,
		TrailMean:       sum.Mean,
		TrailStd:        sum.Std,
		TrailMax:        sum.Max,
		TrailP50:        sum.P50,
		TrailP90:        sum.P90,
		TrailP99:        sum.P99,
		Coverage:        sum.Coverage,
	}

	c.windowStartTick = currentTick
	c.steppedTicks = 0
	c.pausedTicks = 0

	return stats
}
