package claw

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/ecs"
	"github.com/milk9111/clawmachine/physics/physicstest"
)

func TestPopulateAvoidsBin(t *testing.T) {
	cfg := DefaultConfig()
	world := physicstest.New()
	pool := NewPrizePool(&cfg, world, ecs.NewWorld())
	kinds := []PrizeKind{testKind, {
		Name:          "ball",
		Radius:        0.35,
		Weight:        Range{Min: 0.1, Max: 0.3},
		Bounciness:    Range{Min: 0.6, Max: 0.8},
		Deformability: Range{Min: 0, Max: 0.1},
	}}

	prizes, err := pool.Populate(kinds, 24, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(prizes) != 24 || pool.Len() != 24 || len(pool.Free()) != 24 {
		t.Fatalf("expected 24 free prizes, got %d/%d/%d", len(prizes), pool.Len(), len(pool.Free()))
	}

	cab := cfg.Cabinet
	for _, p := range prizes {
		if math.Abs(p.Position.X())+p.Radius > cab.PitHalfSize || math.Abs(p.Position.Z())+p.Radius > cab.PitHalfSize {
			t.Fatalf("prize %v outside the pit at %+v", p.ID, p.Position)
		}
		keepOut := cab.BinHalfSize + cab.WallThick + p.Radius
		if math.Abs(p.Position.X()-cfg.BinX) <= keepOut && math.Abs(p.Position.Z()-cfg.BinZ) <= keepOut {
			t.Fatalf("prize %v spawned over the bin at %+v", p.ID, p.Position)
		}
		drop := p.Position.Y() - p.Radius - cab.PitFloorY
		if drop < cfg.DropHeightMin || drop > cfg.DropHeightMax {
			t.Fatalf("prize %v drop height %v outside range", p.ID, drop)
		}
		if _, ok := world.Body(p.Body); !ok {
			t.Fatalf("prize %v has no body", p.ID)
		}
	}
	if prizes[1].Kind != "ball" || prizes[1].Radius != 0.35 {
		t.Fatalf("expected kinds to cycle, got %+v", prizes[1])
	}
}

func TestPopulateWithoutKinds(t *testing.T) {
	cfg := DefaultConfig()
	pool := NewPrizePool(&cfg, physicstest.New(), ecs.NewWorld())
	if _, err := pool.Populate(nil, 3, rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("expected an error without kinds")
	}
}

func TestSpawnSamplesKind(t *testing.T) {
	cfg := DefaultConfig()
	world := physicstest.New()
	pool := NewPrizePool(&cfg, world, ecs.NewWorld())
	kind := PrizeKind{
		Name:          "plush",
		Radius:        0.6,
		Weight:        Range{Min: 0.5, Max: 1},
		Bounciness:    Range{Min: 0.1, Max: 0.2},
		Deformability: Range{Min: 0.8, Max: 0.9},
	}
	p, err := pool.Spawn(kind, mgl64.Vec3{1, 0, 1}, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if p.Weight < 0.5 || p.Weight > 1 || p.Bounciness < 0.1 || p.Bounciness > 0.2 {
		t.Fatalf("sampled properties out of range: %+v", p)
	}
	body, _ := world.Body(p.Body)
	if body.Mass != p.Weight || body.Restitution != p.Bounciness {
		t.Fatalf("body does not carry the prize properties: %+v", body)
	}
	if want := 0.5 + p.Deformability*0.4; math.Abs(body.Friction-want) > 1e-12 {
		t.Fatalf("expected friction %v, got %v", want, body.Friction)
	}

	kind.Radius = -1
	if _, err := pool.Spawn(kind, mgl64.Vec3{}, rand.New(rand.NewSource(9))); err == nil {
		t.Fatalf("expected invalid kind to be rejected")
	}
}

func TestSyncMirrorsAndSettles(t *testing.T) {
	cfg := DefaultConfig()
	world := physicstest.New()
	pool := NewPrizePool(&cfg, world, ecs.NewWorld())
	p, _ := pool.Spawn(testKind, mgl64.Vec3{0, -4.5, 0}, rand.New(rand.NewSource(1)))

	world.SetLinearVelocity(p.Body, mgl64.Vec3{1, 0, 0})
	world.Step()
	pool.Sync(1)
	if p.Position.X() <= 0 {
		t.Fatalf("expected the prize mirrored from its body, got %+v", p.Position)
	}
	if p.Settled {
		t.Fatalf("moving prize must not be settled")
	}

	world.SetLinearVelocity(p.Body, mgl64.Vec3{})
	pool.Sync(2)
	if !p.Settled {
		t.Fatalf("expected a resting low prize to settle")
	}

	world.SetTranslation(p.Body, mgl64.Vec3{0, 3, 0})
	pool.Sync(3)
	if p.Settled {
		t.Fatalf("a prize resting high must not count as settled")
	}
}

func TestWonPrizeRemovedAfterDelay(t *testing.T) {
	cfg := DefaultConfig()
	world := physicstest.New()
	entities := ecs.NewWorld()
	pool := NewPrizePool(&cfg, world, entities)
	p, _ := pool.Spawn(testKind, mgl64.Vec3{}, rand.New(rand.NewSource(1)))

	pool.markWon(p, 10)
	pool.markWon(p, 20)
	if len(pool.Free()) != 0 {
		t.Fatalf("won prizes must not be grabbable")
	}

	due := 10 + cfg.Ticks(cfg.WonRemovalDelayMs)
	pool.Sync(due - 1)
	if pool.Len() != 1 {
		t.Fatalf("removed before the delay")
	}
	pool.Sync(due)
	if pool.Len() != 0 || world.Has(p.Body) || entities.IsAlive(p.ID) {
		t.Fatalf("expected prize, body and entity removed")
	}
	if len(world.Removed) != 1 {
		t.Fatalf("expected exactly one removal, got %d", len(world.Removed))
	}
	events := entities.Events().Drain()
	if len(events) != 1 || events[0].Type != EventPrizeRemoved {
		t.Fatalf("expected one removal event, got %v", events)
	}
}

func TestBuildCabinetLeavesBinOpen(t *testing.T) {
	cfg := DefaultConfig()
	world := physicstest.New()
	handles := BuildCabinet(world, cfg)
	if len(handles) != 13 {
		t.Fatalf("expected 13 static boxes, got %d", len(handles))
	}

	cab := cfg.Cabinet
	binFloors := 0
	for _, h := range handles {
		b, ok := world.Body(h)
		if !ok || !b.Static {
			t.Fatalf("expected a static body for %v", h)
		}
		top := b.Position.Y() + b.HalfExtents.Y()
		covers := math.Abs(cfg.BinX-b.Position.X()) < b.HalfExtents.X() && math.Abs(cfg.BinZ-b.Position.Z()) < b.HalfExtents.Z()
		if !covers {
			continue
		}
		if top != cab.BinFloorY {
			t.Fatalf("box %+v covers the bin opening", b)
		}
		binFloors++
	}
	if binFloors != 1 {
		t.Fatalf("expected one bin floor under the opening, got %d", binFloors)
	}
}
