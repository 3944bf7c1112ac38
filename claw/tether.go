package claw

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
)

// Segment is one rendered piece of the tether.
type Segment struct {
	Position  mgl64.Vec3 // start joint
	Direction mgl64.Vec3 // unit vector toward the next joint
	Yaw       float64     // rotation about Y, radians
	Pitch     float64     // elevation above the XZ plane, radians
	Length    float64
}

// Tether is the cosmetic cable from the winch to the claw. It never feeds
// back into gameplay.
type Tether struct {
	anchor     mgl64.Vec3
	joints     []mgl64.Vec3
	gravity    float64
	wind       float64
	iterations int
	slack      float64
	rng        Rand
}

func NewTether(cfg *Config, end mgl64.Vec3, rng Rand) *Tether {
	t := &Tether{
		anchor:     cfg.TetherAnchor,
		joints:     make([]mgl64.Vec3, cfg.TetherSegments+1),
		gravity:    cfg.TetherGravity,
		wind:       cfg.TetherWind,
		iterations: cfg.TetherIterations,
		slack:      cfg.TetherSlack,
		rng:        rng,
	}
	t.Reset(end)
	return t
}

// Reset lays the cable in a straight line from the anchor to end.
func (t *Tether) Reset(end mgl64.Vec3) {
	if t == nil {
		return
	}
	n := len(t.joints) - 1
	for i := range t.joints {
		t.joints[i] = common.LerpVec(t.anchor, end, float64(i)/float64(n))
	}
	t.joints[n] = end
}

// Update advances the cable one tick with its free end attached to end.
func (t *Tether) Update(end mgl64.Vec3) {
	if t == nil || len(t.joints) < 2 {
		return
	}
	n := len(t.joints) - 1
	rest := common.Dist(t.anchor, end) / float64(n) * t.slack

	for i := 1; i < n; i++ {
		j := &t.joints[i]
		j[1] -= t.gravity
		if t.rng != nil && t.wind > 0 {
			j[0] += (t.rng.Float64() - 0.5) * t.wind
			j[2] += (t.rng.Float64() - 0.5) * t.wind
		}
	}

	t.joints[0] = t.anchor
	t.joints[n] = end
	for it := 0; it < t.iterations; it++ {
		for i := 0; i < n; i++ {
			t.relax(i, n, rest)
		}
	}
	t.joints[n] = end
}

// relax pulls joints i and i+1 toward the rest length. A pinned endpoint
// passes the whole correction to its free neighbour.
func (t *Tether) relax(i, n int, rest float64) {
	a, b := t.joints[i], t.joints[i+1]
	delta := b.Sub(a)
	d := delta.Len()
	if d == 0 {
		return
	}
	correction := delta.Mul((d - rest) / d)

	pinnedA := i == 0
	pinnedB := i+1 == n
	switch {
	case pinnedA && pinnedB:
	case pinnedA:
		t.joints[i+1] = b.Sub(correction)
	case pinnedB:
		t.joints[i] = a.Add(correction)
	default:
		half := correction.Mul(0.5)
		t.joints[i] = a.Add(half)
		t.joints[i+1] = b.Sub(half)
	}
}

func (t *Tether) Anchor() mgl64.Vec3 {
	if t == nil {
		return mgl64.Vec3{}
	}
	return t.anchor
}

// Joints returns a copy of the joint positions, anchor first.
func (t *Tether) Joints() []mgl64.Vec3 {
	if t == nil {
		return nil
	}
	return append([]mgl64.Vec3(nil), t.joints...)
}

// Segments orients every segment toward its next joint.
func (t *Tether) Segments() []Segment {
	if t == nil || len(t.joints) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(t.joints)-1)
	for i := 0; i+1 < len(t.joints); i++ {
		a, b := t.joints[i], t.joints[i+1]
		delta := b.Sub(a)
		dir := common.Normalize(delta)
		out = append(out, Segment{
			Position:  a,
			Direction: dir,
			Yaw:       math.Atan2(dir.X(), dir.Z()),
			Pitch:     math.Asin(common.Clamp(dir.Y(), -1, 1)),
			Length:    delta.Len(),
		})
	}
	return out
}
