// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Spawn modes for the initial agent distribution.
const (
	SpawnDisc   = "disc"
	SpawnSpiral = "spiral"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Agents    AgentsConfig    `yaml:"agents"`
	Motion    MotionConfig    `yaml:"motion"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Trail     TrailConfig     `yaml:"trail"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Limits    LimitsConfig    `yaml:"limits"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds trail field dimensions in cells.
type WorldConfig struct {
	Width  int `yaml:"width"`  // 0 = use screen width
	Height int `yaml:"height"` // 0 = use screen height
}

// AgentsConfig holds population parameters.
type AgentsConfig struct {
	Count         int     `yaml:"count"`
	Spawn         string  `yaml:"spawn"`          // disc or spiral
	SpiralSpacing float64 `yaml:"spiral_spacing"` // radius step in unit-disc units (0 = fit the disc)
}

// MotionConfig holds agent movement parameters.
type MotionConfig struct {
	MoveSpeed float64 `yaml:"move_speed"` // cells per second
	TurnSpeed float64 `yaml:"turn_speed"` // turns per second
}

// SensorsConfig holds the three-probe sensor geometry.
type SensorsConfig struct {
	AngleSpacingDeg float64 `yaml:"angle_spacing_deg"`
	OffsetDst       float64 `yaml:"offset_dst"`
	Size            int     `yaml:"size"` // half-width of the sampled square
}

// TrailConfig holds field dynamics.
type TrailConfig struct {
	EvaporateSpeed float64 `yaml:"evaporate_speed"`
	DiffuseSpeed   float64 `yaml:"diffuse_speed"`
	DepositAmount  float64 `yaml:"deposit_amount"`
}

// PhysicsConfig holds the fixed simulation timestep.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// DispatchConfig holds the parallel dispatch granularity.
type DispatchConfig struct {
	AgentGroup int `yaml:"agent_group"` // agents per work group
	Tile       int `yaml:"tile"`        // field tile edge in cells
	Workers    int `yaml:"workers"`     // 0 = GOMAXPROCS
}

// LimitsConfig holds resource limits checked before allocation.
type LimitsConfig struct {
	MaxMemoryMB int `yaml:"max_memory_mb"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	SensorAngleRad float32 // Sensors.AngleSpacingDeg in radians
	WorldW         int     // Effective field width
	WorldH         int     // Effective field height
	MaxMemoryBytes int64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Agents.Spawn != SpawnDisc && cfg.Agents.Spawn != SpawnSpiral {
		return nil, fmt.Errorf("agents.spawn: unknown mode %q", cfg.Agents.Spawn)
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.SensorAngleRad = float32(c.Sensors.AngleSpacingDeg * math.Pi / 180)

	// Field dimensions default to screen size if not specified
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = c.Screen.Width
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = c.Screen.Height
	}

	c.Derived.MaxMemoryBytes = int64(c.Limits.MaxMemoryMB) << 20
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
