package game

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/systems"
)

func testSimParams() systems.Params {
	return systems.Params{
		Width:              64,
		Height:             64,
		AgentCount:         256,
		MoveSpeed:          45,
		TurnSpeed:          1.5,
		SensorAngleSpacing: 30 * math.Pi / 180,
		SensorOffsetDst:    9,
		SensorSize:         1,
		EvaporateSpeed:     0.6,
		DiffuseSpeed:       8,
		DepositAmount:      0.1,
		DeltaTime:          1.0 / 60,
		AgentGroup:         64,
		Tile:               8,
	}
}

func newTestSim(t *testing.T, p systems.Params, opts SimOptions) *Simulation {
	t.Helper()
	sim, err := NewSimulation(p, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sim.Teardown)
	return sim
}

// run ticks the simulation n times and returns a copy of the final field.
func run(t *testing.T, sim *Simulation, p systems.Params, n int) []systems.Cell {
	t.Helper()
	var view systems.FieldView
	for i := 0; i < n; i++ {
		p.Time = float32(i) * p.DeltaTime
		var err error
		view, err = sim.Tick(p)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	return copyView(view)
}

func copyView(v systems.FieldView) []systems.Cell {
	out := make([]systems.Cell, v.Len())
	for i := range out {
		out[i] = v.Cell(i)
	}
	return out
}

func TestNewSimulationRejectsInvalidParams(t *testing.T) {
	p := testSimParams()
	p.AgentCount = 100 // not a multiple of 64

	_, err := NewSimulation(p, SimOptions{Seed: 1})
	var cfgErr *systems.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	p = testSimParams()
	_, err = NewSimulation(p, SimOptions{Seed: 1, Spawn: "grid"})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("unknown spawn: expected ConfigurationError, got %v", err)
	}
}

func TestNewSimulationMemoryLimit(t *testing.T) {
	p := testSimParams()
	_, err := NewSimulation(p, SimOptions{Seed: 1, MemoryLimit: 1024})

	var resErr *systems.ResourceExhaustionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResourceExhaustionError, got %v", err)
	}
	if resErr.Limit != 1024 {
		t.Errorf("expected limit 1024 in error, got %d", resErr.Limit)
	}
}

func TestTickDepositsOncePerAgent(t *testing.T) {
	p := testSimParams()
	p.DiffuseSpeed = 0
	p.EvaporateSpeed = 0
	sim := newTestSim(t, p, SimOptions{Seed: 5})

	cells := run(t, sim, p, 1)

	var total float64
	for _, c := range cells {
		total += float64(c.R)
	}
	want := float64(p.AgentCount) * float64(p.DepositAmount)
	if math.Abs(total-want) > 1e-3 {
		t.Errorf("expected total deposit %f, got %f", want, total)
	}
	if sim.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", sim.Ticks())
	}
}

func TestTickZeroDeltaTimeIsIdentity(t *testing.T) {
	p := testSimParams()
	sim := newTestSim(t, p, SimOptions{Seed: 9})

	before := run(t, sim, p, 10)
	agentsBefore := sim.Agents().Snapshot(nil)

	paused := p
	paused.DeltaTime = 0
	view, err := sim.Tick(paused)
	if err != nil {
		t.Fatal(err)
	}
	after := copyView(view)

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("cell %d changed while paused: %+v -> %+v", i, before[i], after[i])
		}
	}
	agentsAfter := sim.Agents().Snapshot(nil)
	for i := range agentsBefore {
		if agentsBefore[i] != agentsAfter[i] {
			t.Fatalf("agent %d moved while paused", i)
		}
	}
	if sim.Ticks() != 10 {
		t.Errorf("paused tick counted: %d", sim.Ticks())
	}
}

func TestTickDeterministicAcrossWorkerCounts(t *testing.T) {
	p := testSimParams()

	var reference []systems.Cell
	for _, workers := range []int{1, 2, 4, 7} {
		sim := newTestSim(t, p, SimOptions{Seed: 42, Workers: workers})
		cells := run(t, sim, p, 30)
		if reference == nil {
			reference = cells
			continue
		}
		for i := range cells {
			if cells[i] != reference[i] {
				t.Fatalf("workers=%d: cell %d differs: %+v vs %+v", workers, i, cells[i], reference[i])
			}
		}
	}
}

func TestTickFieldStaysInRange(t *testing.T) {
	p := testSimParams()
	sim := newTestSim(t, p, SimOptions{Seed: 3, Spawn: config.SpawnSpiral})

	cells := run(t, sim, p, 60)
	for i, c := range cells {
		if c.R < 0 || math.IsNaN(float64(c.R)) || math.IsInf(float64(c.R), 0) {
			t.Fatalf("cell %d invalid: %+v", i, c)
		}
	}

	for i, a := range sim.Agents().Snapshot(nil) {
		if a.X < 0 || a.X >= float32(p.Width) || a.Y < 0 || a.Y >= float32(p.Height) {
			t.Fatalf("agent %d left the field: %+v", i, a)
		}
		if a.Angle < -math.Pi-1e-5 || a.Angle > math.Pi+1e-5 {
			t.Fatalf("agent %d heading not normalized: %f", i, a.Angle)
		}
	}
}

func TestTickRejectsShapeChange(t *testing.T) {
	p := testSimParams()
	sim := newTestSim(t, p, SimOptions{Seed: 1})

	changed := p
	changed.Width = 128
	_, err := sim.Tick(changed)

	var cfgErr *systems.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "width" {
		t.Fatalf("expected width ConfigurationError, got %v", err)
	}
	if sim.State() != StateIdle {
		t.Errorf("expected idle after rejected tick, got %s", sim.State())
	}

	nan := p
	nan.TurnSpeed = float32(math.NaN())
	if _, err := sim.Tick(nan); !errors.As(err, &cfgErr) || cfgErr.Field != "motion.turn_speed" {
		t.Fatalf("expected turn speed ConfigurationError, got %v", err)
	}

	// Tunables may change between ticks
	tuned := p
	tuned.MoveSpeed = 10
	tuned.SensorSize = 3
	if _, err := sim.Tick(tuned); err != nil {
		t.Errorf("tunable change rejected: %v", err)
	}
}

func TestSimulationStatesAndTeardown(t *testing.T) {
	p := testSimParams()
	sim, err := NewSimulation(p, SimOptions{Seed: 1, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}

	if sim.State() != StateIdle {
		t.Errorf("expected idle after init, got %s", sim.State())
	}
	if _, err := sim.Tick(p); err != nil {
		t.Fatal(err)
	}
	if sim.State() != StateIdle {
		t.Errorf("expected idle after tick, got %s", sim.State())
	}

	sim.Teardown()
	sim.Teardown()

	if _, err := sim.Tick(p); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after teardown, got %v", err)
	}
	if sim.View().Len() != 0 {
		t.Error("expected empty view after teardown")
	}
}
