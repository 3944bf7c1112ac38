// Package physics holds the rigid-body contract the claw simulation consumes
// and a Chipmunk-backed implementation of it.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/ecs"
)

// BodyHandle identifies a body inside a World. Handles are generational, so
// a handle kept after RemoveBody never aliases a newer body.
type BodyHandle = ecs.Entity

// World is the narrow rigid-body contract. Implementations must treat calls
// with unknown or removed handles as no-ops.
type World interface {
	CreateStaticBox(pos, halfExtents mgl64.Vec3) BodyHandle
	CreateDynamicSphere(pos mgl64.Vec3, radius, mass, restitution, friction float64) BodyHandle
	Step()
	Translation(h BodyHandle) (mgl64.Vec3, bool)
	LinearVelocity(h BodyHandle) (mgl64.Vec3, bool)
	SetTranslation(h BodyHandle, pos mgl64.Vec3)
	SetLinearVelocity(h BodyHandle, vel mgl64.Vec3)
	RemoveBody(h BodyHandle)
}

// AddVelocity adds dv to a body's current linear velocity.
func AddVelocity(w World, h BodyHandle, dv mgl64.Vec3) {
	if w == nil {
		return
	}
	v, ok := w.LinearVelocity(h)
	if !ok {
		return
	}
	w.SetLinearVelocity(h, v.Add(dv))
}
