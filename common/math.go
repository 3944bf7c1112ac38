package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TicksPerSecond is the fixed update rate the simulation is tuned for.
const TicksPerSecond = 60

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// MillisToTicks converts a duration in milliseconds to whole ticks at the
// given rate, rounding up so a non-zero delay never collapses to zero.
func MillisToTicks(ms float64, rate int) int {
	if ms <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Ceil(ms * float64(rate) / 1000.0))
}

// LenXZ is the horizontal length of v, ignoring Y.
func LenXZ(v mgl64.Vec3) float64 {
	return math.Hypot(v.X(), v.Z())
}

// Dist is the distance between two points.
func Dist(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// Normalize returns the unit vector, or the zero vector for a zero input.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// LerpVec moves a toward b by factor t on every axis.
func LerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
