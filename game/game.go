package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/telemetry"
)

// maxStepsPerUpdate caps the speed multiplier.
const maxStepsPerUpdate = 10

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool    // log window and perf stats via slog
	StatsWindowSec float64 // 0 = config telemetry.stats_window
	OutputDir      string  // CSV output directory, empty = disabled
	StepsPerUpdate int     // simulation ticks per Update call
}

// Game drives the simulation clock and collects telemetry.
// It supplies the per-tick parameter record and owns the pause state.
type Game struct {
	sim    *Simulation
	params systems.Params
	dt     float32

	// State
	tick           int32 // host steps, including paused ones
	simTime        float64
	paused         bool
	stepsPerUpdate int
	view           systems.FieldView

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	lastStats     telemetry.WindowStats
}

// NewGameWithOptions builds a game from the global config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	params := systems.ParamsFromConfig(cfg)

	sim, err := NewSimulation(params, SimOptions{
		Seed:          opts.Seed,
		Spawn:         cfg.Agents.Spawn,
		SpiralSpacing: cfg.Agents.SpiralSpacing,
		Workers:       cfg.Dispatch.Workers,
		MemoryLimit:   cfg.Derived.MaxMemoryBytes,
		Perf:          perf,
	})
	if err != nil {
		return nil, err
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Teardown()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	return &Game{
		sim:            sim,
		params:         params,
		dt:             cfg.Derived.DT32,
		stepsPerUpdate: steps,
		view:           sim.View(),
		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:  perf,
		outputManager:  outputManager,
		logStats:       opts.LogStats,
	}, nil
}

// Step runs one host step. While paused the simulation is ticked with a zero
// timestep, which leaves agents and field untouched.
func (g *Game) Step() error {
	p := g.params
	p.Time = float32(g.simTime)
	if !g.paused {
		p.DeltaTime = g.dt
		g.perfCollector.StartTick()
	}

	view, err := g.sim.Tick(p)
	if err != nil {
		return err
	}
	g.view = view
	g.tick++

	if !g.paused {
		g.simTime += float64(g.dt)
		g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	}

	g.collector.RecordTick(!g.paused)
	g.flushTelemetry()

	if !g.paused {
		g.perfCollector.EndTick()
	}
	return nil
}

// UpdateHeadless runs StepsPerUpdate steps.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// TogglePause flips the pause state and returns the new state.
func (g *Game) TogglePause() bool {
	g.paused = !g.paused
	slog.Debug("pause toggled", "paused", g.paused, "tick", g.tick)
	return g.paused
}

// Paused reports whether the clock is stopped.
func (g *Game) Paused() bool { return g.paused }

// StepsPerUpdate returns the speed multiplier.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// AdjustSpeed changes the speed multiplier by delta within [1, 10].
func (g *Game) AdjustSpeed(delta int) {
	g.stepsPerUpdate = min(max(g.stepsPerUpdate+delta, 1), maxStepsPerUpdate)
}

// View returns the field after the latest step.
func (g *Game) View() systems.FieldView { return g.view }

// Tick returns the number of host steps taken.
func (g *Game) Tick() int32 { return g.tick }

// SimTime returns elapsed simulated seconds.
func (g *Game) SimTime() float64 { return g.simTime }

// SimTicks returns the number of ticks that advanced the simulation.
func (g *Game) SimTicks() uint64 { return g.sim.Ticks() }

// Params returns the static parameter record.
func (g *Game) Params() systems.Params { return g.params }

// LastStats returns the most recently flushed window.
func (g *Game) LastStats() telemetry.WindowStats { return g.lastStats }

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// RecordFrame records a rendered frame for FPS tracking.
func (g *Game) RecordFrame() { g.perfCollector.RecordFrame() }

// Unload releases the simulation and closes output files.
func (g *Game) Unload() error {
	g.sim.Teardown()
	g.view = systems.FieldView{}
	return g.outputManager.Close()
}
