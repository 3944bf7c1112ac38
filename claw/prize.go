package claw

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/ecs"
	"github.com/milk9111/clawmachine/physics"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min, Max float64
}

func (r Range) sample(rng Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// PrizeKind describes one family of prizes. Per-prize properties are sampled
// from the ranges once, at spawn.
type PrizeKind struct {
	Name          string
	Radius        float64
	Weight        Range
	Bounciness    Range
	Deformability Range
}

func (k PrizeKind) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: prize %q: "+format, append([]any{ErrInvalidConfig, k.Name}, args...)...))
	}
	if !(k.Radius > 0) {
		bad("radius must be positive, got %v", k.Radius)
	}
	for name, r := range map[string]Range{
		"weight":        k.Weight,
		"bounciness":    k.Bounciness,
		"deformability": k.Deformability,
	} {
		if !(r.Min >= 0) || r.Min > r.Max {
			bad("%s range [%v,%v] is invalid", name, r.Min, r.Max)
		}
	}
	if k.Bounciness.Max > 1 || k.Deformability.Max > 1 {
		bad("bounciness and deformability must stay within [0,1]")
	}
	return errors.Join(errs...)
}

// Prize is one collectible. Position mirrors the rigid body while the prize
// is free and follows the claw while it is grabbed.
type Prize struct {
	ID   ecs.Entity
	Body physics.BodyHandle
	Kind string

	Position mgl64.Vec3
	Radius   float64

	Weight        float64
	Bounciness    float64
	Deformability float64

	Grabbed bool
	Settled bool
	Won     bool

	GripStrength float64
	DropChance   float64
}

// Grabbable reports whether the prize may be considered by a grab.
func (p *Prize) Grabbable() bool {
	return p != nil && !p.Grabbed && !p.Won
}
