package systems

import (
	"math"
)

// Turn is the steering decision taken from the three sensor weights.
type Turn uint8

const (
	TurnNone   Turn = iota // forward strictly strongest, or left/right tie
	TurnRandom             // forward strictly weakest
	TurnRight              // toward the angle+spacing sensor
	TurnLeft               // toward the angle-spacing sensor
)

func (t Turn) String() string {
	switch t {
	case TurnNone:
		return "none"
	case TurnRandom:
		return "random"
	case TurnRight:
		return "right"
	case TurnLeft:
		return "left"
	}
	return "unknown"
}

// Steer picks a turn from the left (angle-spacing), forward and right (angle+spacing) weights.
func Steer(left, forward, right float32) Turn {
	switch {
	case forward > left && forward > right:
		return TurnNone
	case forward < left && forward < right:
		return TurnRandom
	case right > left:
		return TurnRight
	case left > right:
		return TurnLeft
	}
	return TurnNone
}

// TurnNoise supplies the signed unit used for random turns.
// Unit must return a value in [-1, 1) and be safe for concurrent use.
type TurnNoise interface {
	Unit(index uint32, time float32) float32
}

// HashNoise is a stateless TurnNoise keyed by agent index, time and seed.
type HashNoise struct {
	Seed uint32
}

// Unit implements TurnNoise.
func (n HashNoise) Unit(index uint32, time float32) float32 {
	h := hash(index, math.Float32bits(time), n.Seed)
	return hashUnit(h)*2 - 1
}

// SteeringSystem runs the sense, steer, move and deposit update for agents.
type SteeringSystem struct {
	noise TurnNoise
}

// NewSteeringSystem creates a steering system. A nil noise uses HashNoise{}.
func NewSteeringSystem(noise TurnNoise) *SteeringSystem {
	if noise == nil {
		noise = HashNoise{}
	}
	return &SteeringSystem{noise: noise}
}

// Update advances agents [i0,i1) by one tick. Each agent reads only the current
// field and its own record, so disjoint ranges may run concurrently. Deposits are
// recorded on the field and become visible after CommitDeposits.
func (s *SteeringSystem) Update(agents []Agent, i0, i1 int, field *TrailField, p *Params) {
	turnStep := p.TurnSpeed * p.DeltaTime * twoPi
	step := p.MoveSpeed * p.DeltaTime
	// Largest coordinates inside [0,W) x [0,H)
	maxX := math.Nextafter32(float32(field.W), 0)
	maxY := math.Nextafter32(float32(field.H), 0)

	for i := i0; i < i1; i++ {
		a := &agents[i]

		left := s.sense(field, a, a.Angle-p.SensorAngleSpacing, p)
		forward := s.sense(field, a, a.Angle, p)
		right := s.sense(field, a, a.Angle+p.SensorAngleSpacing, p)

		angle := a.Angle
		switch Steer(left, forward, right) {
		case TurnRandom:
			angle += s.noise.Unit(uint32(i), p.Time) * turnStep
		case TurnRight:
			angle += turnStep
		case TurnLeft:
			angle -= turnStep
		}

		dx, dy := direction(angle)
		x := a.X + dx*step
		y := a.Y + dy*step

		// Clamp and mirror the heading about the violated axis
		if x < 0 || x >= float32(field.W) {
			x = clampf(x, 0, maxX)
			angle = math.Pi - angle
		}
		if y < 0 || y >= float32(field.H) {
			y = clampf(y, 0, maxY)
			angle = -angle
		}

		a.X = x
		a.Y = y
		a.Angle = normalizeAngle(angle)

		field.Deposit(clampInt(int(x+0.5), 0, field.W-1), clampInt(int(y+0.5), 0, field.H-1))
	}
}

// sense sums the channel intensity in the square around the sensor at angle.
// Samples outside the grid clamp to the nearest edge cell.
func (s *SteeringSystem) sense(field *TrailField, a *Agent, angle float32, p *Params) float32 {
	dx, dy := direction(angle)
	cx := int(a.X + dx*p.SensorOffsetDst)
	cy := int(a.Y + dy*p.SensorOffsetDst)

	var sum float32
	for oy := -p.SensorSize; oy <= p.SensorSize; oy++ {
		y := clampInt(cy+oy, 0, field.H-1)
		row := field.cur[y*field.W : (y+1)*field.W]
		for ox := -p.SensorSize; ox <= p.SensorSize; ox++ {
			sum += row[clampInt(cx+ox, 0, field.W-1)].Intensity()
		}
	}
	return sum
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
