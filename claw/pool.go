package claw

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
	"github.com/milk9111/clawmachine/ecs"
	"github.com/milk9111/clawmachine/physics"
)

type pendingRemoval struct {
	due   uint64
	prize *Prize
}

// PrizePool owns the prizes of a session: spawning, mirroring rigid bodies
// into prize state, settle detection and the delayed removal of won prizes.
type PrizePool struct {
	cfg      *Config
	world    physics.World
	entities *ecs.World
	bus      eventBus

	prizes   ecs.SparseSet[*Prize]
	removals []pendingRemoval
}

func NewPrizePool(cfg *Config, world physics.World, entities *ecs.World) *PrizePool {
	return &PrizePool{cfg: cfg, world: world, entities: entities, bus: entities}
}

// Spawn creates one prize of kind at pos with properties sampled from the
// kind's ranges.
func (p *PrizePool) Spawn(kind PrizeKind, pos mgl64.Vec3, rng Rand) (*Prize, error) {
	if p == nil {
		return nil, nil
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	prize := &Prize{
		ID:            p.entities.CreateEntity(),
		Kind:          kind.Name,
		Position:      pos,
		Radius:        kind.Radius,
		Weight:        kind.Weight.sample(rng),
		Bounciness:    kind.Bounciness.sample(rng),
		Deformability: kind.Deformability.sample(rng),
	}
	// Soft prizes grip the pile harder.
	friction := 0.5 + prize.Deformability*0.4
	prize.Body = p.world.CreateDynamicSphere(pos, prize.Radius, math.Max(prize.Weight, 0.01), prize.Bounciness, friction)
	p.prizes.Set(prize.ID, prize)
	return prize, nil
}

// Populate drops count prizes at random pit positions clear of the bin
// opening, cycling through kinds.
func (p *PrizePool) Populate(kinds []PrizeKind, count int, rng Rand) ([]*Prize, error) {
	if p == nil || count <= 0 {
		return nil, nil
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no prize kinds to populate", ErrInvalidConfig)
	}
	cab := p.cfg.Cabinet
	out := make([]*Prize, 0, count)
	for i := 0; i < count; i++ {
		kind := kinds[i%len(kinds)]
		pos := p.spawnPoint(kind.Radius, rng)
		pos[1] = cab.PitFloorY + kind.Radius + Range{Min: p.cfg.DropHeightMin, Max: p.cfg.DropHeightMax}.sample(rng)
		prize, err := p.Spawn(kind, pos, rng)
		if err != nil {
			return out, err
		}
		out = append(out, prize)
	}
	return out, nil
}

func (p *PrizePool) spawnPoint(radius float64, rng Rand) mgl64.Vec3 {
	cab := p.cfg.Cabinet
	span := Range{Min: -cab.PitHalfSize + radius, Max: cab.PitHalfSize - radius}
	keepOut := cab.BinHalfSize + cab.WallThick + radius
	var pos mgl64.Vec3
	for attempt := 0; attempt < 32; attempt++ {
		pos = mgl64.Vec3{span.sample(rng), 0, span.sample(rng)}
		if math.Abs(pos.X()-p.cfg.BinX) > keepOut || math.Abs(pos.Z()-p.cfg.BinZ) > keepOut {
			return pos
		}
	}
	// Fall back to the corner opposite the bin.
	return mgl64.Vec3{-common.Sign(p.cfg.BinX)*span.Max*0.5, 0, -common.Sign(p.cfg.BinZ)*span.Max*0.5}
}

func (p *PrizePool) Get(id ecs.Entity) (*Prize, bool) {
	if p == nil {
		return nil, false
	}
	return p.prizes.Get(id)
}

// All returns every prize still in the simulation.
func (p *PrizePool) All() []*Prize {
	if p == nil {
		return nil
	}
	return append([]*Prize(nil), p.prizes.Values()...)
}

// Free returns the prizes a grab may consider.
func (p *PrizePool) Free() []*Prize {
	if p == nil {
		return nil
	}
	var out []*Prize
	for _, prize := range p.prizes.Values() {
		if prize.Grabbable() {
			out = append(out, prize)
		}
	}
	return out
}

func (p *PrizePool) Len() int {
	if p == nil {
		return 0
	}
	return p.prizes.Len()
}

// markWon flags a released prize and schedules its removal.
func (p *PrizePool) markWon(prize *Prize, now uint64) {
	if p == nil || prize == nil || prize.Won {
		return
	}
	prize.Won = true
	prize.Settled = false
	p.removals = append(p.removals, pendingRemoval{
		due:   now + p.cfg.Ticks(p.cfg.WonRemovalDelayMs),
		prize: prize,
	})
}

// Sync mirrors rigid bodies into non-held prizes, updates settle state and
// removes won prizes whose delay has elapsed.
func (p *PrizePool) Sync(now uint64) {
	if p == nil {
		return
	}
	for _, prize := range p.prizes.Values() {
		if prize.Grabbed {
			continue
		}
		if pos, ok := p.world.Translation(prize.Body); ok {
			prize.Position = pos
		}
		vel, _ := p.world.LinearVelocity(prize.Body)
		prize.Settled = !prize.Won && vel.Len() < p.cfg.SettleSpeed && prize.Position.Y() < p.cfg.SettleHeight
	}

	kept := p.removals[:0]
	for _, r := range p.removals {
		if r.due > now {
			kept = append(kept, r)
			continue
		}
		p.remove(r.prize)
	}
	p.removals = kept
}

func (p *PrizePool) remove(prize *Prize) {
	if !p.prizes.Remove(prize.ID) {
		return
	}
	p.world.RemoveBody(prize.Body)
	p.entities.DestroyEntity(prize.ID)
	if p.bus != nil {
		p.bus.Publish(EventPrizeRemoved, prize)
	}
}

// Clear removes every prize and pending removal.
func (p *PrizePool) Clear() {
	if p == nil {
		return
	}
	for _, prize := range p.All() {
		p.remove(prize)
	}
	p.removals = nil
}
