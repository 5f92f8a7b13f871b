package systems

import (
	"errors"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slime/components"
)

// Agent is the flat per-agent record the stages operate on.
type Agent struct {
	X, Y  float32
	Angle float32 // radians
}

// ErrAlreadyPopulated is returned when Init is called on a populated store.
var ErrAlreadyPopulated = errors.New("agent store already populated")

// goldenAngle is (2 - φ) * 2π.
var goldenAngle = (2 - (math.Sqrt(5)+1)/2) * twoPi

// AgentStore owns the agent population as ECS entities.
// Each entity carries Position, Heading and its stable AgentID.
type AgentStore struct {
	world    *ecs.World
	mapper   *ecs.Map3[components.Position, components.Heading, components.AgentID]
	filter   *ecs.Filter3[components.Position, components.Heading, components.AgentID]
	entities []ecs.Entity
}

// NewAgentStore creates an empty store.
func NewAgentStore() *AgentStore {
	world := ecs.NewWorld()
	return &AgentStore{
		world:  world,
		mapper: ecs.NewMap3[components.Position, components.Heading, components.AgentID](world),
		filter: ecs.NewFilter3[components.Position, components.Heading, components.AgentID](world),
	}
}

// SampleUnitDisc draws a point uniformly distributed by area inside the unit disc.
// The radius is the square root of a uniform sample; a plain uniform radius would
// crowd points toward the center.
func SampleUnitDisc(rng *rand.Rand) (float32, float32) {
	radius := math.Sqrt(rng.Float64())
	theta := rng.Float64() * twoPi
	s, c := math.Sincos(theta)
	return float32(radius * c), float32(radius * s)
}

// SpiralDiscPoint returns point i (1-based) of a golden-angle spiral with radius step k.
func SpiralDiscPoint(i int, k float64) (float32, float32) {
	r := math.Sqrt(float64(i)) * k
	s, c := math.Sincos(goldenAngle * float64(i))
	return float32(r * c), float32(r * s)
}

// Init populates count agents in a disc of radius h/3 around the field center,
// each facing back toward the center. Positions are clamped onto the field.
func (s *AgentStore) Init(count, w, h int, rng *rand.Rand) error {
	return s.populate(count, w, h, func(int) (float32, float32) {
		return SampleUnitDisc(rng)
	})
}

// InitSpiral populates count agents on a golden-angle spiral inside the same disc.
// A non-positive k spaces the spiral so the last agent lands on the disc edge.
func (s *AgentStore) InitSpiral(count, w, h int, k float64) error {
	if k <= 0 && count > 0 {
		k = 1 / math.Sqrt(float64(count))
	}
	return s.populate(count, w, h, func(i int) (float32, float32) {
		return SpiralDiscPoint(i+1, k)
	})
}

func (s *AgentStore) populate(count, w, h int, offset func(i int) (float32, float32)) error {
	if count <= 0 {
		return configErr("agents.count", count, "must be positive")
	}
	if w <= 0 || h <= 0 {
		return configErr("size", [2]int{w, h}, "field dimensions must be positive")
	}
	if len(s.entities) > 0 {
		return ErrAlreadyPopulated
	}

	cx := float32(w) / 2
	cy := float32(h) / 2
	radius := float32(h) / 3

	s.entities = make([]ecs.Entity, count)
	for i := 0; i < count; i++ {
		ox, oy := offset(i)
		pos := components.Position{
			X: clampf(cx+ox*radius, 0, float32(w-1)),
			Y: clampf(cy+oy*radius, 0, float32(h-1)),
		}
		rot := components.Heading{Angle: float32(math.Atan2(float64(oy), float64(ox))) + math.Pi}
		id := components.AgentID{Index: uint32(i)}
		s.entities[i] = s.mapper.NewEntity(&pos, &rot, &id)
	}
	return nil
}

// Len returns the population size.
func (s *AgentStore) Len() int {
	return len(s.entities)
}

// Get returns agent i.
func (s *AgentStore) Get(i int) Agent {
	pos, rot, _ := s.mapper.Get(s.entities[i])
	return Agent{X: pos.X, Y: pos.Y, Angle: rot.Angle}
}

// Set overwrites agent i.
func (s *AgentStore) Set(i int, a Agent) {
	pos, rot, _ := s.mapper.Get(s.entities[i])
	pos.X, pos.Y = a.X, a.Y
	rot.Angle = a.Angle
}

// Snapshot copies the population into dst in index order, growing dst if needed.
func (s *AgentStore) Snapshot(dst []Agent) []Agent {
	n := len(s.entities)
	if cap(dst) < n {
		dst = make([]Agent, n)
	}
	dst = dst[:n]

	query := s.filter.Query()
	for query.Next() {
		pos, rot, id := query.Get()
		dst[id.Index] = Agent{X: pos.X, Y: pos.Y, Angle: rot.Angle}
	}
	return dst
}

// Apply writes src back into the population. len(src) must equal Len().
func (s *AgentStore) Apply(src []Agent) {
	query := s.filter.Query()
	for query.Next() {
		pos, rot, id := query.Get()
		a := src[id.Index]
		pos.X, pos.Y = a.X, a.Y
		rot.Angle = a.Angle
	}
}

// Teardown removes every agent entity.
func (s *AgentStore) Teardown() {
	for _, e := range s.entities {
		s.world.RemoveEntity(e)
	}
	s.entities = nil
}
