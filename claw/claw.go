package claw

import "github.com/go-gl/mathgl/mgl64"

// Claw is the session's single claw. Position X/Z are written by the
// kinematics while idle and by the sequencer otherwise; Y only by the
// sequencer.
type Claw struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3 // lateral, units per tick

	RestingHeight float64
	Bounds        Bounds

	OpenAngle    float64
	ClosedAngle  float64
	CurrentAngle float64
	Swing        float64

	held []*Prize
}

func newClaw(cfg Config) *Claw {
	return &Claw{
		Position:      cfg.RestPoint(),
		RestingHeight: cfg.RestingHeight,
		Bounds:        cfg.Bounds,
		OpenAngle:     cfg.OpenAngle,
		ClosedAngle:   cfg.ClosedAngle,
		CurrentAngle:  cfg.OpenAngle,
	}
}

// Held returns a copy of the held set.
func (c *Claw) Held() []*Prize {
	if c == nil || len(c.held) == 0 {
		return nil
	}
	return append([]*Prize(nil), c.held...)
}

func (c *Claw) HeldCount() int {
	if c == nil {
		return 0
	}
	return len(c.held)
}

func (c *Claw) Holding(p *Prize) bool {
	if c == nil || p == nil {
		return false
	}
	for _, h := range c.held {
		if h == p {
			return true
		}
	}
	return false
}

// hold and release are the only writers of Prize.Grabbed, which keeps
// Grabbed equal to membership in the held set.
func (c *Claw) hold(p *Prize) {
	if c == nil || p == nil || c.Holding(p) {
		return
	}
	p.Grabbed = true
	p.Settled = false
	c.held = append(c.held, p)
}

func (c *Claw) release(p *Prize) bool {
	if c == nil || p == nil {
		return false
	}
	for i, h := range c.held {
		if h != p {
			continue
		}
		c.held = append(c.held[:i], c.held[i+1:]...)
		p.Grabbed = false
		p.GripStrength = 0
		p.DropChance = 0
		return true
	}
	return false
}

// holdPoint is where a gripped prize's centre sits.
func (c *Claw) holdPoint(offset float64) mgl64.Vec3 {
	return c.Position.Sub(mgl64.Vec3{0, offset, 0})
}
