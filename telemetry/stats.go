package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CoverageThreshold is the intensity above which a cell counts as part of the network.
const CoverageThreshold = 0.05

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Agents       int `csv:"agents"`
	SteppedTicks int `csv:"stepped_ticks"`
	PausedTicks  int `csv:"paused_ticks"`

	// Trail intensity distribution (sampled at window end)
	TrailTotal float64 `csv:"trail_total"`
	TrailMean  float64 `csv:"trail_mean"`
	TrailStd   float64 `csv:"trail_std"`
	TrailMax   float64 `csv:"trail_max"`
	TrailP50   float64 `csv:"trail_p50"`
	TrailP90   float64 `csv:"trail_p90"`
	TrailP99   float64 `csv:"trail_p99"`
	Coverage   float64 `csv:"coverage"` // fraction of cells above CoverageThreshold
}

// FieldSummary is the distribution of trail intensities at one instant.
type FieldSummary struct {
	Total, Mean, Std, Max float64
	P50, P90, P99         float64
	Coverage              float64
}

// SummarizeField computes the intensity distribution of values.
// values is sorted in place.
func SummarizeField(values []float64) FieldSummary {
	if len(values) == 0 {
		return FieldSummary{}
	}

	var s FieldSummary
	s.Total = floats.Sum(values)
	s.Mean, s.Std = stat.PopMeanStdDev(values, nil)
	s.Max = floats.Max(values)

	sort.Float64s(values)
	s.P50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, values, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, values, nil)

	// First index above threshold in the sorted slice
	above := sort.SearchFloat64s(values, CoverageThreshold)
	for above < len(values) && values[above] <= CoverageThreshold {
		above++
	}
	s.Coverage = float64(len(values)-above) / float64(len(values))

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("stepped_ticks", s.SteppedTicks),
		slog.Int("paused_ticks", s.PausedTicks),
		slog.Float64("trail_total", s.TrailTotal),
		slog.Float64("trail_mean", s.TrailMean),
		slog.Float64("trail_std", s.TrailStd),
		slog.Float64("trail_max", s.TrailMax),
		slog.Float64("trail_p50", s.TrailP50),
		slog.Float64("trail_p90", s.TrailP90),
		slog.Float64("trail_p99", s.TrailP99),
		slog.Float64("coverage", s.Coverage),
	)
}
