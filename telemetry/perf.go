package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of a simulation tick.
type Phase uint8

// Tick stages in execution order.
const (
	PhaseSnapshot Phase = iota
	PhaseSteering
	PhaseApply
	PhaseDeposit
	PhaseDiffusion
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"snapshot", "steering", "apply", "deposit", "diffusion", "telemetry",
}

func (p Phase) String() string {
	if p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// noPhase marks that no stage is being timed.
const noPhase = NumPhases

// tickSample is the timing of one stepped tick.
type tickSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
}

// PerfCollector keeps stage timings for the last windowSize stepped ticks.
// Timing methods are no-ops on a nil collector.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks (60 when not positive).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickSample, windowSize), phase: noPhase}
}

// StartTick begins timing a stepped tick.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.phase = noPhase
}

// StartPhase closes the running stage and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = ph
}

// EndTick closes the running stage and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase < NumPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = noPhase
}

// RecordFrame notes a presented frame for FPS reporting.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the collector window.
type PerfStats struct {
	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration
	Phase   [NumPhases]time.Duration // mean per stage

	TicksPerSecond float64
	FrameDuration  time.Duration
	FPS            float64
}

// Stats aggregates the ticks currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p == nil {
		return s
	}
	s.FrameDuration = p.frame
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	totals := make([]float64, p.count)
	var phaseSum [NumPhases]time.Duration
	for i, smp := range p.ring[:p.count] {
		totals[i] = float64(smp.total)
		for ph, d := range smp.phases {
			phaseSum[ph] += d
		}
	}

	s.AvgTick = time.Duration(stat.Mean(totals, nil))
	s.MinTick = time.Duration(floats.Min(totals))
	s.MaxTick = time.Duration(floats.Max(totals))
	for ph := range phaseSum {
		s.Phase[ph] = phaseSum[ph] / time.Duration(p.count)
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// Pct returns the share of the mean tick spent in ph, in percent.
func (s PerfStats) Pct(ph Phase) float64 {
	if s.AvgTick <= 0 || ph >= NumPhases {
		return 0
	}
	return float64(s.Phase[ph]) / float64(s.AvgTick) * 100
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if pct := s.Pct(ph); pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	SnapshotPct  float64 `csv:"snapshot_pct"`
	SteeringPct  float64 `csv:"steering_pct"`
	ApplyPct     float64 `csv:"apply_pct"`
	DepositPct   float64 `csv:"deposit_pct"`
	DiffusionPct float64 `csv:"diffusion_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		SnapshotPct:  s.Pct(PhaseSnapshot),
		SteeringPct:  s.Pct(PhaseSteering),
		ApplyPct:     s.Pct(PhaseApply),
		DepositPct:   s.Pct(PhaseDeposit),
		DiffusionPct: s.Pct(PhaseDiffusion),
		TelemetryPct: s.Pct(PhaseTelemetry),
	}
}
