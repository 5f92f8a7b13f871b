package systems

import (
	"math"

	"github.com/pthm-cable/slime/config"
)

// Params is the per-tick parameter record supplied by the host.
// It is immutable for the duration of a tick.
type Params struct {
	Width, Height int
	AgentCount    int

	MoveSpeed          float32 // cells per second
	TurnSpeed          float32 // turns per second, scaled by 2π
	SensorAngleSpacing float32 // radians
	SensorOffsetDst    float32 // cells
	SensorSize         int     // half-width of the sampled square
	EvaporateSpeed     float32 // intensity per second
	DiffuseSpeed       float32 // blend rate per second
	DepositAmount      float32 // intensity added per agent visit

	Time      float32 // elapsed simulated seconds
	DeltaTime float32 // zero while paused

	AgentGroup int // agents per dispatch group
	Tile       int // field tile edge in cells
}

// Per-agent memory: ECS storage (components plus entity bookkeeping) and one snapshot slot.
const agentFootprint = 48

// Per-cell memory: two RGBA float32 grids plus one deposit counter.
const cellFootprint = 2*16 + 4

// ParamsFromConfig builds the static part of the parameter record.
// Time and DeltaTime are filled in by the host each tick.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Width:              cfg.Derived.WorldW,
		Height:             cfg.Derived.WorldH,
		AgentCount:         cfg.Agents.Count,
		MoveSpeed:          float32(cfg.Motion.MoveSpeed),
		TurnSpeed:          float32(cfg.Motion.TurnSpeed),
		SensorAngleSpacing: cfg.Derived.SensorAngleRad,
		SensorOffsetDst:    float32(cfg.Sensors.OffsetDst),
		SensorSize:         cfg.Sensors.Size,
		EvaporateSpeed:     float32(cfg.Trail.EvaporateSpeed),
		DiffuseSpeed:       float32(cfg.Trail.DiffuseSpeed),
		DepositAmount:      float32(cfg.Trail.DepositAmount),
		AgentGroup:         cfg.Dispatch.AgentGroup,
		Tile:               cfg.Dispatch.Tile,
	}
}

// Validate checks the parameters against the dispatch granularity.
// Populations and grids are never truncated to fit a dispatch.
func (p Params) Validate() error {
	if p.AgentGroup <= 0 {
		return configErr("dispatch.agent_group", p.AgentGroup, "must be positive")
	}
	if p.Tile <= 0 {
		return configErr("dispatch.tile", p.Tile, "must be positive")
	}
	if p.Width <= 0 {
		return configErr("width", p.Width, "must be positive")
	}
	if p.Height <= 0 {
		return configErr("height", p.Height, "must be positive")
	}
	if p.Width%p.Tile != 0 {
		return configErr("width", p.Width, "not a multiple of the dispatch tile")
	}
	if p.Height%p.Tile != 0 {
		return configErr("height", p.Height, "not a multiple of the dispatch tile")
	}
	if p.AgentCount <= 0 {
		return configErr("agents.count", p.AgentCount, "must be positive")
	}
	if p.AgentCount%p.AgentGroup != 0 {
		return configErr("agents.count", p.AgentCount, "not a multiple of the dispatch agent group")
	}
	if p.SensorSize < 0 {
		return configErr("sensors.size", p.SensorSize, "must not be negative")
	}
	if err := p.CheckFinite(); err != nil {
		return err
	}
	if p.DepositAmount < 0 {
		return configErr("trail.deposit_amount", p.DepositAmount, "must not be negative")
	}
	return nil
}

// CheckFinite rejects NaN and infinite float parameters.
func (p Params) CheckFinite() error {
	fields := [...]struct {
		name  string
		value float32
	}{
		{"motion.move_speed", p.MoveSpeed},
		{"motion.turn_speed", p.TurnSpeed},
		{"sensors.angle_spacing", p.SensorAngleSpacing},
		{"sensors.offset_dst", p.SensorOffsetDst},
		{"trail.evaporate_speed", p.EvaporateSpeed},
		{"trail.diffuse_speed", p.DiffuseSpeed},
		{"trail.deposit_amount", p.DepositAmount},
		{"time", p.Time},
		{"dt", p.DeltaTime},
	}
	for _, f := range fields {
		v := float64(f.value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErr(f.name, f.value, "must be finite")
		}
	}
	return nil
}

// MemoryBytes estimates the bytes needed for the field and agent buffers.
func (p Params) MemoryBytes() (field, agents int64) {
	field = int64(p.Width) * int64(p.Height) * cellFootprint
	agents = int64(p.AgentCount) * agentFootprint
	return field, agents
}

// CheckMemory fails when the estimated buffers exceed limit bytes.
// A non-positive limit disables the check.
func (p Params) CheckMemory(limit int64) error {
	if limit <= 0 {
		return nil
	}
	field, agents := p.MemoryBytes()
	if field > limit {
		return &ResourceExhaustionError{What: "trail field", Requested: field, Limit: limit}
	}
	if field+agents > limit {
		return &ResourceExhaustionError{What: "trail field and agents", Requested: field + agents, Limit: limit}
	}
	return nil
}
