package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/clawmachine/common"
	"github.com/milk9111/clawmachine/ecs"
)

const (
	collisionTypeStatic cp.CollisionType = iota + 1
	collisionTypeSphere
)

// contactSlop keeps a body resting on a box top from registering as a side
// contact with that same box.
const contactSlop = 1e-3

const spaceIterations = 20

// SpaceConfig tunes the Chipmunk-backed world.
type SpaceConfig struct {
	Gravity        float64 // units/s^2, applied on -Y
	TimeStep       float64 // seconds per Step
	GroundFriction float64 // scales per-body friction while supported
	AirDamping     float64 // fraction of lateral velocity kept per second while airborne
	RestVelocity   float64 // vertical bounce speeds below this are zeroed
}

// DefaultSpaceConfig matches the claw machine's scale (1 unit ~ 10 cm).
func DefaultSpaceConfig() SpaceConfig {
	return SpaceConfig{
		Gravity:        20,
		TimeStep:       1.0 / common.TicksPerSecond,
		GroundFriction: 6,
		AirDamping:     0.9,
		RestVelocity:   0.6,
	}
}

// Space is a 2.5D rigid-body world. Chipmunk simulates the top-down X/Z
// plane (sphere and wall contacts, lateral friction); each sphere carries
// its own vertical integrator for gravity, support and restitution.
// Contacts whose vertical spans do not overlap are discarded in PreSolve.
type Space struct {
	cfg   SpaceConfig
	space *cp.Space

	handles ecs.EntityStore
	bodies  ecs.SparseSet[*bodyRecord]
	statics ecs.SparseSet[*boxRecord]

	shapeToBody map[*cp.Shape]*bodyRecord
	shapeToBox  map[*cp.Shape]*boxRecord
}

type bodyRecord struct {
	handle      BodyHandle
	body        *cp.Body
	shape       *cp.Shape
	radius      float64
	y, vy       float64
	restitution float64
	friction    float64
	supported   bool
}

type boxRecord struct {
	handle BodyHandle
	shape  *cp.Shape
	center mgl64.Vec3
	half   mgl64.Vec3
}

func (b *boxRecord) top() float64    { return b.center.Y() + b.half.Y() }
func (b *boxRecord) bottom() float64 { return b.center.Y() - b.half.Y() }

func (b *boxRecord) containsXZ(x, z float64) bool {
	return math.Abs(x-b.center.X()) <= b.half.X() && math.Abs(z-b.center.Z()) <= b.half.Z()
}

// NewSpace creates an empty world.
func NewSpace(cfg SpaceConfig) *Space {
	if cfg.TimeStep <= 0 {
		cfg.TimeStep = 1.0 / common.TicksPerSecond
	}
	space := cp.NewSpace()
	space.Iterations = spaceIterations
	space.SetGravity(cp.Vector{})

	s := &Space{
		cfg:         cfg,
		space:       space,
		shapeToBody: make(map[*cp.Shape]*bodyRecord),
		shapeToBox:  make(map[*cp.Shape]*boxRecord),
	}
	s.setupHandlers()
	return s
}

// Chipmunk returns the underlying Chipmunk space.
func (s *Space) Chipmunk() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// BodyCount returns the number of live dynamic bodies.
func (s *Space) BodyCount() int {
	if s == nil {
		return 0
	}
	return s.bodies.Len()
}

func (s *Space) CreateStaticBox(pos, half mgl64.Vec3) BodyHandle {
	if s == nil || s.space == nil {
		return 0
	}
	bb := cp.BB{L: pos.X() - half.X(), B: pos.Z() - half.Z(), R: pos.X() + half.X(), T: pos.Z() + half.Z()}
	shape := cp.NewBox2(s.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetElasticity(0.3)
	shape.SetCollisionType(collisionTypeStatic)
	s.space.AddShape(shape)

	rec := &boxRecord{handle: s.handles.Create(), shape: shape, center: pos, half: half}
	s.statics.Set(rec.handle, rec)
	s.shapeToBox[shape] = rec
	return rec.handle
}

func (s *Space) CreateDynamicSphere(pos mgl64.Vec3, radius, mass, restitution, friction float64) BodyHandle {
	if s == nil || s.space == nil || radius <= 0 {
		return 0
	}
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Z()})

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(friction)
	shape.SetElasticity(restitution)
	shape.SetCollisionType(collisionTypeSphere)

	rec := &bodyRecord{
		handle:      s.handles.Create(),
		body:        body,
		shape:       shape,
		radius:      radius,
		y:           pos.Y(),
		restitution: restitution,
		friction:    friction,
	}
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		keep := math.Pow(s.cfg.AirDamping, dt)
		if rec.supported {
			keep = math.Max(0, 1-rec.friction*s.cfg.GroundFriction*dt)
		}
		cp.BodyUpdateVelocity(b, cp.Vector{}, keep, dt)
	})

	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.bodies.Set(rec.handle, rec)
	s.shapeToBody[shape] = rec
	return rec.handle
}

// Step advances the vertical integrators, then the Chipmunk plane.
func (s *Space) Step() {
	if s == nil || s.space == nil {
		return
	}
	dt := s.cfg.TimeStep
	s.bodies.Each(func(_ ecs.Entity, rec *bodyRecord) {
		s.integrateVertical(rec, dt)
	})
	s.space.Step(dt)
}

func (s *Space) integrateVertical(rec *bodyRecord, dt float64) {
	pos := rec.body.Position()
	prevBottom := rec.y - rec.radius
	support := s.supportHeight(pos.X, pos.Y, prevBottom)

	rec.vy -= s.cfg.Gravity * dt
	rec.y += rec.vy * dt
	rec.supported = false

	if rec.y-rec.radius <= support+contactSlop {
		rec.y = support + rec.radius
		if rec.vy < 0 {
			rec.vy = -rec.vy * rec.restitution
			if rec.vy < s.cfg.RestVelocity {
				rec.vy = 0
			}
		}
		rec.supported = rec.vy == 0
	}
}

// supportHeight returns the highest box top under (x, z) that is not above
// bottom, or -Inf when nothing supports the point.
func (s *Space) supportHeight(x, z, bottom float64) float64 {
	best := math.Inf(-1)
	s.statics.Each(func(_ ecs.Entity, box *boxRecord) {
		if !box.containsXZ(x, z) {
			return
		}
		top := box.top()
		if top <= bottom+contactSlop && top > best {
			best = top
		}
	})
	return best
}

func (s *Space) Translation(h BodyHandle) (mgl64.Vec3, bool) {
	if s == nil {
		return mgl64.Vec3{}, false
	}
	if rec, ok := s.bodies.Get(h); ok {
		p := rec.body.Position()
		return mgl64.Vec3{p.X, rec.y, p.Y}, true
	}
	if box, ok := s.statics.Get(h); ok {
		return box.center, true
	}
	return mgl64.Vec3{}, false
}

func (s *Space) LinearVelocity(h BodyHandle) (mgl64.Vec3, bool) {
	if s == nil {
		return mgl64.Vec3{}, false
	}
	if rec, ok := s.bodies.Get(h); ok {
		v := rec.body.Velocity()
		return mgl64.Vec3{v.X, rec.vy, v.Y}, true
	}
	if s.statics.Has(h) {
		return mgl64.Vec3{}, true
	}
	return mgl64.Vec3{}, false
}

func (s *Space) SetTranslation(h BodyHandle, pos mgl64.Vec3) {
	if s == nil {
		return
	}
	rec, ok := s.bodies.Get(h)
	if !ok {
		return
	}
	rec.body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Z()})
	rec.y = pos.Y()
}

func (s *Space) SetLinearVelocity(h BodyHandle, vel mgl64.Vec3) {
	if s == nil {
		return
	}
	rec, ok := s.bodies.Get(h)
	if !ok {
		return
	}
	rec.body.SetVelocity(vel.X(), vel.Z())
	rec.vy = vel.Y()
	if vel.Y() != 0 {
		rec.supported = false
	}
}

func (s *Space) RemoveBody(h BodyHandle) {
	if s == nil || s.space == nil {
		return
	}
	if rec, ok := s.bodies.Get(h); ok {
		s.space.RemoveShape(rec.shape)
		s.space.RemoveBody(rec.body)
		delete(s.shapeToBody, rec.shape)
		s.bodies.Remove(h)
		s.handles.Destroy(h)
		return
	}
	if box, ok := s.statics.Get(h); ok {
		s.space.RemoveShape(box.shape)
		delete(s.shapeToBox, box.shape)
		s.statics.Remove(h)
		s.handles.Destroy(h)
	}
}

func (s *Space) setupHandlers() {
	sphereSphere := s.space.NewCollisionHandler(collisionTypeSphere, collisionTypeSphere)
	sphereSphere.UserData = s
	sphereSphere.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*Space)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		a := world.shapeToBody[shapeA]
		b := world.shapeToBody[shapeB]
		if a == nil || b == nil {
			return true
		}
		return math.Abs(a.y-b.y) < a.radius+b.radius
	}

	sphereStatic := s.space.NewCollisionHandler(collisionTypeSphere, collisionTypeStatic)
	sphereStatic.UserData = s
	sphereStatic.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*Space)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		rec := world.shapeToBody[shapeA]
		box := world.shapeToBox[shapeB]
		if rec == nil || box == nil {
			rec = world.shapeToBody[shapeB]
			box = world.shapeToBox[shapeA]
		}
		if rec == nil || box == nil {
			return true
		}
		return rec.y-rec.radius < box.top()-contactSlop && rec.y+rec.radius > box.bottom()
	}
}
