package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/telemetry"
)

// ErrNotInitialized is returned by Tick before a successful init or after Teardown.
var ErrNotInitialized = errors.New("simulation not initialized")

// State is the orchestrator state.
type State uint8

const (
	StateIdle State = iota
	StateStepping
)

func (s State) String() string {
	if s == StateStepping {
		return "stepping"
	}
	return "idle"
}

// SimOptions configures population setup and dispatch.
type SimOptions struct {
	Seed          int64
	Spawn         string  // config.SpawnDisc or config.SpawnSpiral
	SpiralSpacing float64 // see AgentStore.InitSpiral
	Workers       int     // 0 = GOMAXPROCS
	MemoryLimit   int64   // bytes, 0 = unchecked

	Noise systems.TurnNoise         // nil = HashNoise seeded from Seed
	Perf  *telemetry.PerfCollector // optional; the caller brackets Tick with StartTick/EndTick
}

// Simulation is the tick orchestrator. It owns the trail field and agent store
// exclusively and runs the steering and diffusion stages once per Tick.
type Simulation struct {
	shape systems.Params // dimensions fixed at init

	field     *systems.TrailField
	agents    *systems.AgentStore
	steering  *systems.SteeringSystem
	diffusion *systems.DiffusionSystem
	pool      *workerPool
	perf      *telemetry.PerfCollector

	scratch []systems.Agent
	state   State
	ticks   uint64
}

// NewSimulation validates p and allocates the field and population.
// On error nothing is left allocated.
func NewSimulation(p systems.Params, opts SimOptions) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.CheckMemory(opts.MemoryLimit); err != nil {
		return nil, err
	}

	field, err := systems.NewTrailField(p.Width, p.Height)
	if err != nil {
		return nil, err
	}

	agents := systems.NewAgentStore()
	switch opts.Spawn {
	case "", config.SpawnDisc:
		err = agents.Init(p.AgentCount, p.Width, p.Height, rand.New(rand.NewSource(opts.Seed)))
	case config.SpawnSpiral:
		err = agents.InitSpiral(p.AgentCount, p.Width, p.Height, opts.SpiralSpacing)
	default:
		err = &systems.ConfigurationError{Field: "agents.spawn", Value: opts.Spawn, Reason: "unknown spawn mode"}
	}
	if err != nil {
		return nil, fmt.Errorf("initializing agents: %w", err)
	}

	noise := opts.Noise
	if noise == nil {
		noise = systems.HashNoise{Seed: uint32(opts.Seed)}
	}

	s := &Simulation{
		shape:     p,
		field:     field,
		agents:    agents,
		steering:  systems.NewSteeringSystem(noise),
		diffusion: systems.NewDiffusionSystem(),
		pool:      newWorkerPool(opts.Workers),
		perf:      opts.Perf,
		scratch:   make([]systems.Agent, 0, p.AgentCount),
	}

	slog.Info("simulation initialized",
		"width", p.Width,
		"height", p.Height,
		"agents", p.AgentCount,
		"spawn", opts.Spawn,
		"workers", s.pool.numWorkers,
	)

	return s, nil
}

// Tick advances the simulation by one step and returns the current field.
// The view is only valid until the next Tick. A zero DeltaTime leaves agents and
// field untouched.
func (s *Simulation) Tick(p systems.Params) (systems.FieldView, error) {
	if s.field == nil {
		return systems.FieldView{}, ErrNotInitialized
	}
	if err := s.checkShape(p); err != nil {
		return systems.FieldView{}, err
	}

	s.state = StateStepping
	defer func() { s.state = StateIdle }()

	if p.DeltaTime == 0 {
		return s.field.View(), nil
	}

	s.perf.StartPhase(telemetry.PhaseSnapshot)
	s.scratch = s.agents.Snapshot(s.scratch)

	s.perf.StartPhase(telemetry.PhaseSteering)
	s.pool.dispatch(len(s.scratch), p.AgentGroup, func(i0, i1 int) {
		s.steering.Update(s.scratch, i0, i1, s.field, &p)
	})

	s.perf.StartPhase(telemetry.PhaseApply)
	s.agents.Apply(s.scratch)

	s.perf.StartPhase(telemetry.PhaseDeposit)
	s.pool.dispatch(p.Height, p.Tile, func(y0, y1 int) {
		s.field.CommitDeposits(y0, y1, p.DepositAmount)
	})

	s.perf.StartPhase(telemetry.PhaseDiffusion)
	s.pool.dispatch(p.Height, p.Tile, func(y0, y1 int) {
		s.diffusion.Update(s.field, y0, y1, &p)
	})
	s.field.Swap()
	s.ticks++

	return s.field.View(), nil
}

// checkShape rejects parameter records that no longer match the allocated buffers
// or carry non-finite tunables.
func (s *Simulation) checkShape(p systems.Params) error {
	switch {
	case p.Width != s.shape.Width:
		return &systems.ConfigurationError{Field: "width", Value: p.Width, Reason: "changed after init"}
	case p.Height != s.shape.Height:
		return &systems.ConfigurationError{Field: "height", Value: p.Height, Reason: "changed after init"}
	case p.AgentCount != s.shape.AgentCount:
		return &systems.ConfigurationError{Field: "agents.count", Value: p.AgentCount, Reason: "changed after init"}
	case p.AgentGroup != s.shape.AgentGroup || p.Tile != s.shape.Tile:
		return &systems.ConfigurationError{Field: "dispatch", Value: [2]int{p.AgentGroup, p.Tile}, Reason: "changed after init"}
	case p.SensorSize < 0:
		return &systems.ConfigurationError{Field: "sensors.size", Value: p.SensorSize, Reason: "must not be negative"}
	}
	return p.CheckFinite()
}

// State returns the orchestrator state.
func (s *Simulation) State() State { return s.state }

// Ticks returns the number of ticks that advanced the simulation.
func (s *Simulation) Ticks() uint64 { return s.ticks }

// View returns the current field without stepping.
func (s *Simulation) View() systems.FieldView {
	if s.field == nil {
		return systems.FieldView{}
	}
	return s.field.View()
}

// Agents returns the agent store.
func (s *Simulation) Agents() *systems.AgentStore { return s.agents }

// Teardown stops the workers and releases the field and population.
func (s *Simulation) Teardown() {
	if s.field == nil {
		return
	}
	s.pool.stop()
	s.agents.Teardown()
	s.field = nil
	s.scratch = nil
}
