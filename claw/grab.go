package claw

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
	"github.com/milk9111/clawmachine/physics"
)

// Rand is the randomness the simulation draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// GrabAttempt is the context of one candidate's success test.
type GrabAttempt struct {
	Kind          string
	Distance      float64
	Weight        float64
	BaseRate      float64
	Plays         int
	PlaysSinceWin int
}

// SuccessRater decides the success probability of a grab attempt. A nil
// rater means the configured GrabSuccessRate is used as is.
type SuccessRater interface {
	SuccessRate(a GrabAttempt) float64
}

// GrabEngine owns the capture model: which prizes a closing claw takes,
// how firmly, and whether they slip while carried.
type GrabEngine struct {
	cfg   *Config
	rng   Rand
	rater SuccessRater

	plays         int
	playsSinceWin int
}

func NewGrabEngine(cfg *Config, rng Rand, rater SuccessRater) *GrabEngine {
	return &GrabEngine{cfg: cfg, rng: rng, rater: rater}
}

type candidate struct {
	prize    *Prize
	distance float64
}

// Candidates returns the free prizes in reach of the claw, closest first,
// capped at MaxGrabCount.
func (g *GrabEngine) Candidates(c *Claw, free []*Prize) []*Prize {
	if g == nil || c == nil {
		return nil
	}
	found := g.inRange(c, free)
	out := make([]*Prize, 0, len(found))
	for _, cand := range found {
		out = append(out, cand.prize)
	}
	return out
}

func (g *GrabEngine) inRange(c *Claw, free []*Prize) []candidate {
	var found []candidate
	for _, p := range free {
		if !p.Grabbable() {
			continue
		}
		d := common.Dist(c.Position, p.Position)
		if d < g.cfg.GrabRadius+p.Radius {
			found = append(found, candidate{prize: p, distance: d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})
	if len(found) > g.cfg.MaxGrabCount {
		found = found[:g.cfg.MaxGrabCount]
	}
	return found
}

// Evaluate runs the single grab test of a drop cycle and returns the prizes
// that ended up in the claw. Other free prizes near a successful grab are
// pushed away from the claw.
func (g *GrabEngine) Evaluate(c *Claw, free []*Prize, world physics.World) []*Prize {
	if g == nil || c == nil {
		return nil
	}
	g.plays++
	g.playsSinceWin++

	var grabbed []*Prize
	for _, cand := range g.inRange(c, free) {
		rate := g.successRate(cand)
		if !(g.rng.Float64() < rate) {
			continue
		}
		p := cand.prize
		c.hold(p)
		p.GripStrength = g.gripStrength(cand.distance, p.Weight)
		p.DropChance = (1 - p.GripStrength) * g.cfg.DropChanceScale
		if world != nil {
			world.SetLinearVelocity(p.Body, mgl64.Vec3{})
		}
		grabbed = append(grabbed, p)
	}

	if len(grabbed) > 0 {
		g.disturb(c, free, world)
	}
	return grabbed
}

func (g *GrabEngine) successRate(cand candidate) float64 {
	base := g.cfg.GrabSuccessRate
	if g.rater == nil {
		return base
	}
	rate := g.rater.SuccessRate(GrabAttempt{
		Kind:          cand.prize.Kind,
		Distance:      cand.distance,
		Weight:        cand.prize.Weight,
		BaseRate:      base,
		Plays:         g.plays,
		PlaysSinceWin: g.playsSinceWin,
	})
	if math.IsNaN(rate) {
		return base
	}
	return common.Clamp(rate, 0, 1)
}

func (g *GrabEngine) gripStrength(distance, weight float64) float64 {
	base := Range{Min: g.cfg.BaseGripMin, Max: g.cfg.BaseGripMax}.sample(g.rng)
	distancePenalty := math.Max(0, (distance-g.cfg.GripFreeDistance)*g.cfg.GripDistancePenalty)
	weightPenalty := weight * g.cfg.GripWeightPenalty
	return common.Clamp(base-distancePenalty-weightPenalty, g.cfg.MinGrip, base)
}

func (g *GrabEngine) disturb(c *Claw, free []*Prize, world physics.World) {
	if world == nil || g.cfg.DisturbImpulse == 0 {
		return
	}
	for _, p := range free {
		if !p.Grabbable() {
			continue
		}
		offset := p.Position.Sub(c.Position)
		offset[1] = 0
		if common.LenXZ(offset) >= g.cfg.DisturbRadius {
			continue
		}
		dir := common.Normalize(offset)
		physics.AddVelocity(world, p.Body, mgl64.Vec3{dir.X()*g.cfg.DisturbImpulse, g.cfg.DisturbImpulse*0.5, dir.Z()*g.cfg.DisturbImpulse})
	}
}

// DropChance is the per-tick slip probability of a held prize given the
// claw's current horizontal speed.
func (g *GrabEngine) DropChance(p *Prize, speed float64) float64 {
	if g == nil || p == nil {
		return 0
	}
	height := math.Max(0, (p.Position.Y()-g.cfg.HeightRiskFloor)/g.cfg.HeightRiskSpan)
	return p.DropChance + speed*g.cfg.SpeedDropFactor + height*g.cfg.HeightDropFactor
}

// CheckDrops draws one slip test per held prize. Slipped prizes leave the
// held set and are handed back to the physics world falling away from the
// claw.
func (g *GrabEngine) CheckDrops(c *Claw, world physics.World) []*Prize {
	if g == nil || c == nil || c.HeldCount() == 0 {
		return nil
	}
	speed := common.LenXZ(c.Velocity)

	var dropped []*Prize
	for _, p := range c.Held() {
		if !(g.rng.Float64() < g.DropChance(p, speed)) {
			continue
		}
		c.release(p)
		if world != nil {
			world.SetLinearVelocity(p.Body, mgl64.Vec3{
				(g.rng.Float64()-0.5)*g.cfg.DropScatter,
				-g.cfg.DropFallSpeed,
				(g.rng.Float64()-0.5)*g.cfg.DropScatter,
			})
		}
		dropped = append(dropped, p)
	}
	return dropped
}

// RecordWin restarts the plays-since-win count handed to the rater.
func (g *GrabEngine) RecordWin() {
	if g == nil {
		return
	}
	g.playsSinceWin = 0
}

// Plays is the number of grab evaluations run so far.
func (g *GrabEngine) Plays() int {
	if g == nil {
		return 0
	}
	return g.plays
}

func (g *GrabEngine) PlaysSinceWin() int {
	if g == nil {
		return 0
	}
	return g.playsSinceWin
}
