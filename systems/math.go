package systems

import "math"

const twoPi = 2 * math.Pi

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampInt clamps an int between lo and hi.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeAngle wraps an angle to [-Pi, Pi] in one step.
// Non-finite input yields NaN.
func normalizeAngle(angle float32) float32 {
	return float32(math.Remainder(float64(angle), twoPi))
}

// direction returns the unit vector for angle.
func direction(angle float32) (float32, float32) {
	s, c := math.Sincos(float64(angle))
	return float32(c), float32(s)
}

// hash generates a pseudo-random uint32 from two integers and a seed.
func hash(a, b, seed uint32) uint32 {
	h := a*374761393 + b*668265263 + seed*1442695041
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return h
}

// hashUnit maps a hash to [0,1).
func hashUnit(h uint32) float32 {
	return float32(h&0x00FFFFFF) / float32(0x01000000)
}
