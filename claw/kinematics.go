package claw

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
)

// Kinematics turns lateral input into claw motion while the claw is idle.
type Kinematics struct {
	cfg     *Config
	dt      float64
	elapsed float64

	// pinned is set while the claw sits on a bound after a bounce, so the
	// bounce is reported once per crossing.
	pinnedX bool
	pinnedZ bool
}

func NewKinematics(cfg *Config) *Kinematics {
	return &Kinematics{cfg: cfg, dt: 1 / float64(cfg.TickRate)}
}

// Update advances the claw by one tick and returns the axes that bounced.
// It only moves the claw in StateIdle.
func (k *Kinematics) Update(c *Claw, in Input, state State) []Axis {
	if k == nil || c == nil {
		return nil
	}
	k.elapsed += k.dt
	if state != StateIdle {
		return nil
	}

	dx, dz := in.Direction(k.cfg.StickDeadzone)
	c.Velocity = mgl64.Vec3{dx*k.cfg.MoveSpeed, 0, dz*k.cfg.MoveSpeed}
	c.Position[0] += c.Velocity.X()
	c.Position[2] += c.Velocity.Z()

	if dx != 0 || dz != 0 {
		c.Swing = math.Sin(k.elapsed*k.cfg.SwingFrequency) * common.LenXZ(c.Velocity) * k.cfg.SwingIntensity
	} else {
		c.Swing *= k.cfg.SwingDecay
	}

	var bounced []Axis
	if constrain(&c.Position[0], &c.Velocity[0], c.Bounds.MinX, c.Bounds.MaxX, k.cfg.BounceFactor, &k.pinnedX) {
		bounced = append(bounced, AxisX)
	}
	if constrain(&c.Position[2], &c.Velocity[2], c.Bounds.MinZ, c.Bounds.MaxZ, k.cfg.BounceFactor, &k.pinnedZ) {
		bounced = append(bounced, AxisZ)
	}
	return bounced
}

// Reset re-arms bounce reporting.
func (k *Kinematics) Reset() {
	if k == nil {
		return
	}
	k.pinnedX = false
	k.pinnedZ = false
}

// constrain clamps one axis to [lo, hi] and reflects its velocity inward.
// It reports true only on the tick the claw first leaves the range.
func constrain(pos, vel *float64, lo, hi, bounce float64, pinned *bool) bool {
	var bound float64
	switch {
	case *pos > hi:
		bound = hi
	case *pos < lo:
		bound = lo
	default:
		if *pos > lo && *pos < hi {
			*pinned = false
		}
		return false
	}

	overshoot := bound - *pos
	*vel = common.Sign(overshoot) * math.Abs(*vel) * bounce
	*pos = bound

	if *pinned {
		return false
	}
	*pinned = true
	return true
}
