// Package physicstest provides an in-memory physics.World for tests.
package physicstest

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
	"github.com/milk9111/clawmachine/ecs"
	"github.com/milk9111/clawmachine/physics"
)

// Body is the fake's view of one body.
type Body struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	HalfExtents mgl64.Vec3
	Radius      float64
	Mass        float64
	Restitution float64
	Friction    float64
	Static      bool
}

// World integrates velocities without collisions. Dynamic bodies stop at
// FloorY when Gravity is non-zero; with the zero value nothing moves unless
// a velocity is set.
type World struct {
	Gravity  float64
	FloorY   float64
	TimeStep float64

	Steps   int
	Removed []physics.BodyHandle

	handles ecs.EntityStore
	bodies  ecs.SparseSet[*Body]
}

var _ physics.World = (*World)(nil)

func New() *World {
	return &World{TimeStep: 1.0 / common.TicksPerSecond}
}

func (w *World) CreateStaticBox(pos, half mgl64.Vec3) physics.BodyHandle {
	h := w.handles.Create()
	w.bodies.Set(h, &Body{Position: pos, HalfExtents: half, Static: true})
	return h
}

func (w *World) CreateDynamicSphere(pos mgl64.Vec3, radius, mass, restitution, friction float64) physics.BodyHandle {
	h := w.handles.Create()
	w.bodies.Set(h, &Body{
		Position:    pos,
		Radius:      radius,
		Mass:        mass,
		Restitution: restitution,
		Friction:    friction,
	})
	return h
}

func (w *World) Step() {
	w.Steps++
	dt := w.TimeStep
	w.bodies.Each(func(_ ecs.Entity, b *Body) {
		if b.Static {
			return
		}
		b.Velocity[1] -= w.Gravity * dt
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		if w.Gravity != 0 && b.Position.Y()-b.Radius < w.FloorY {
			b.Position[1] = w.FloorY + b.Radius
			b.Velocity = mgl64.Vec3{}
		}
	})
}

func (w *World) Translation(h physics.BodyHandle) (mgl64.Vec3, bool) {
	b, ok := w.bodies.Get(h)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return b.Position, true
}

func (w *World) LinearVelocity(h physics.BodyHandle) (mgl64.Vec3, bool) {
	b, ok := w.bodies.Get(h)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return b.Velocity, true
}

func (w *World) SetTranslation(h physics.BodyHandle, pos mgl64.Vec3) {
	if b, ok := w.bodies.Get(h); ok {
		b.Position = pos
	}
}

func (w *World) SetLinearVelocity(h physics.BodyHandle, vel mgl64.Vec3) {
	if b, ok := w.bodies.Get(h); ok && !b.Static {
		b.Velocity = vel
	}
}

func (w *World) RemoveBody(h physics.BodyHandle) {
	if w.bodies.Remove(h) {
		w.handles.Destroy(h)
		w.Removed = append(w.Removed, h)
	}
}

// Has reports whether h is still simulated.
func (w *World) Has(h physics.BodyHandle) bool {
	return w.bodies.Has(h)
}

// Body returns the stored body for inspection.
func (w *World) Body(h physics.BodyHandle) (*Body, bool) {
	return w.bodies.Get(h)
}

// Len returns the number of live bodies, static included.
func (w *World) Len() int {
	return w.bodies.Len()
}
