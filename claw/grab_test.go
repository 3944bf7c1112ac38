package claw

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/physics/physicstest"
)

func TestGrabSuccessRateStatistics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrabSuccessRate = 0.75
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(42)), nil)

	const trials = 10000
	successes := 0
	for i := 0; i < trials; i++ {
		c := newClaw(cfg)
		p := &Prize{Radius: 0.5, Position: c.Position}
		if len(g.Evaluate(c, []*Prize{p}, nil)) == 1 {
			successes++
		}
	}
	rate := float64(successes) / trials
	if math.Abs(rate-0.75) > 0.02 {
		t.Fatalf("expected success rate near 0.75, got %.4f", rate)
	}
	if g.Plays() != trials {
		t.Fatalf("expected %d plays, got %d", trials, g.Plays())
	}
}

func TestGrabCandidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGrabCount = 2
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(1)), nil)
	c := newClaw(cfg)
	c.Position = mgl64.Vec3{0, 0, 0}

	far := &Prize{Radius: 0.5, Position: mgl64.Vec3{1.2, 0, 0}}
	near := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, 0.2, 0}}
	mid := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, 0, 0.9}}
	out := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, -1.4, 0}}
	held := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, 0, 0}, Grabbed: true}
	won := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, 0, 0}, Won: true}

	got := g.Candidates(c, []*Prize{far, out, mid, held, near, won})
	if len(got) != 2 || got[0] != near || got[1] != mid {
		t.Fatalf("expected [near mid], got %v", got)
	}
}

func TestGrabGripStrength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrabSuccessRate = 1
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(7)), nil)

	for i := 0; i < 500; i++ {
		c := newClaw(cfg)
		p := &Prize{Radius: 0.5, Weight: float64(i%10) * 0.5, Position: c.Position.Add(mgl64.Vec3{0, -float64(i%13)*0.1, 0})}
		grabbed := g.Evaluate(c, []*Prize{p}, nil)
		if len(grabbed) != 1 {
			t.Fatalf("trial %d: expected a forced grab", i)
		}
		if p.GripStrength < cfg.MinGrip || p.GripStrength > cfg.BaseGripMax {
			t.Fatalf("trial %d: grip %v outside [%v,%v]", i, p.GripStrength, cfg.MinGrip, cfg.BaseGripMax)
		}
		if want := (1 - p.GripStrength) * cfg.DropChanceScale; math.Abs(p.DropChance-want) > 1e-15 {
			t.Fatalf("trial %d: drop chance %v, want %v", i, p.DropChance, want)
		}
		if !p.Grabbed || p.Settled || !c.Holding(p) {
			t.Fatalf("trial %d: prize not held after grab", i)
		}
	}
}

func TestGrabDisturbsNeighbours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrabSuccessRate = 1
	world := physicstest.New()
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(1)), nil)
	c := newClaw(cfg)
	c.Position = mgl64.Vec3{0, -3.8, 0}

	target := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, -4.3, 0}}
	target.Body = world.CreateDynamicSphere(target.Position, 0.5, 1, 0, 0.5)
	neighbour := &Prize{Radius: 0.5, Position: mgl64.Vec3{1.5, -4.5, 0}}
	neighbour.Body = world.CreateDynamicSphere(neighbour.Position, 0.5, 1, 0, 0.5)
	distant := &Prize{Radius: 0.5, Position: mgl64.Vec3{-3, -4.5, 0}}
	distant.Body = world.CreateDynamicSphere(distant.Position, 0.5, 1, 0, 0.5)

	grabbed := g.Evaluate(c, []*Prize{target, neighbour, distant}, world)
	if len(grabbed) != 1 || grabbed[0] != target {
		t.Fatalf("expected target grabbed, got %v", grabbed)
	}
	if v, _ := world.LinearVelocity(neighbour.Body); v.X() <= 0 {
		t.Fatalf("expected neighbour pushed away along +x, got %+v", v)
	}
	if v, _ := world.LinearVelocity(distant.Body); v != (mgl64.Vec3{}) {
		t.Fatalf("expected distant prize untouched, got %+v", v)
	}
	if v, _ := world.LinearVelocity(target.Body); v != (mgl64.Vec3{}) {
		t.Fatalf("expected grabbed prize at rest, got %+v", v)
	}
}

func TestGrabFailureLeavesPrizeFree(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrabSuccessRate = 0
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(1)), nil)
	c := newClaw(cfg)
	p := &Prize{Radius: 0.5, Position: c.Position}
	if got := g.Evaluate(c, []*Prize{p}, nil); len(got) != 0 {
		t.Fatalf("expected no grab at rate 0, got %v", got)
	}
	if p.Grabbed || c.HeldCount() != 0 {
		t.Fatalf("expected prize to stay free")
	}
}

type fixedRater struct {
	rate     float64
	attempts []GrabAttempt
}

func (f *fixedRater) SuccessRate(a GrabAttempt) float64 {
	f.attempts = append(f.attempts, a)
	return f.rate
}

func TestGrabUsesSuccessRater(t *testing.T) {
	cfg := DefaultConfig()
	rater := &fixedRater{rate: 1}
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(1)), rater)

	for i := 0; i < 3; i++ {
		c := newClaw(cfg)
		p := &Prize{Kind: "bear", Radius: 0.5, Weight: 0.4, Position: c.Position}
		if len(g.Evaluate(c, []*Prize{p}, nil)) != 1 {
			t.Fatalf("expected rater to force the grab")
		}
	}
	g.RecordWin()
	c := newClaw(cfg)
	g.Evaluate(c, []*Prize{{Kind: "duck", Radius: 0.5, Position: c.Position}}, nil)

	if len(rater.attempts) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(rater.attempts))
	}
	first := rater.attempts[0]
	if first.Kind != "bear" || first.Weight != 0.4 || first.BaseRate != cfg.GrabSuccessRate || first.Plays != 1 {
		t.Fatalf("unexpected attempt %+v", first)
	}
	if last := rater.attempts[3]; last.Plays != 4 || last.PlaysSinceWin != 1 {
		t.Fatalf("expected plays 4 and plays since win 1, got %+v", last)
	}
}

func TestCheckDropsNeverFiresWithoutRisk(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(3)), nil)
	c := newClaw(cfg)
	c.Position = mgl64.Vec3{0, cfg.HeightRiskFloor+cfg.HoldOffset, 0}
	p := &Prize{Radius: 0.5, Position: mgl64.Vec3{0, cfg.HeightRiskFloor, 0}}
	c.hold(p)
	p.DropChance = 0

	for i := 0; i < 1000; i++ {
		if dropped := g.CheckDrops(c, nil); len(dropped) != 0 {
			t.Fatalf("tick %d: prize dropped with zero risk", i)
		}
	}
	if !p.Grabbed || c.HeldCount() != 1 {
		t.Fatalf("expected prize still held")
	}
}

func TestCheckDropsReleasesPrize(t *testing.T) {
	cfg := DefaultConfig()
	world := physicstest.New()
	g := NewGrabEngine(&cfg, rand.New(rand.NewSource(3)), nil)
	c := newClaw(cfg)
	p := &Prize{Radius: 0.5, Position: c.holdPoint(cfg.HoldOffset)}
	p.Body = world.CreateDynamicSphere(p.Position, 0.5, 1, 0, 0.5)
	c.hold(p)
	p.GripStrength = 0.5
	p.DropChance = 1

	dropped := g.CheckDrops(c, world)
	if len(dropped) != 1 || dropped[0] != p {
		t.Fatalf("expected the prize to drop, got %v", dropped)
	}
	if p.Grabbed || c.HeldCount() != 0 || p.GripStrength != 0 || p.DropChance != 0 {
		t.Fatalf("expected a fully released prize, got %+v", p)
	}
	v, _ := world.LinearVelocity(p.Body)
	if v.Y() != -cfg.DropFallSpeed {
		t.Fatalf("expected downward velocity %v, got %v", -cfg.DropFallSpeed, v.Y())
	}
	if math.Abs(v.X()) > cfg.DropScatter/2 || math.Abs(v.Z()) > cfg.DropScatter/2 {
		t.Fatalf("scatter out of range: %+v", v)
	}
}

func TestDropChanceTerms(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGrabEngine(&cfg, nil, nil)
	p := &Prize{DropChance: 0.001, Position: mgl64.Vec3{0, 10, 0}}
	want := 0.001 + 0.5*cfg.SpeedDropFactor + (15.0/15.0)*cfg.HeightDropFactor
	if got := g.DropChance(p, 0.5); math.Abs(got-want) > 1e-12 {
		t.Fatalf("DropChance() = %v, want %v", got, want)
	}
	p.Position[1] = -8
	if got := g.DropChance(p, 0); got != 0.001 {
		t.Fatalf("expected no height risk below the floor, got %v", got)
	}
}
