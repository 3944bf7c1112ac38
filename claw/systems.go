package claw

import "github.com/milk9111/clawmachine/ecs"

// The session's tick is a fixed pipeline of these systems. Each one observes
// everything written by the systems before it in the same tick.

type kinematicsSystem struct{ s *Session }

func (k kinematicsSystem) Update(w *ecs.World) {
	for _, axis := range k.s.kinematics.Update(k.s.claw, k.s.input, k.s.seq.State()) {
		w.Publish(EventBounce, axis)
	}
}

type sequencerSystem struct{ s *Session }

func (q sequencerSystem) Update(w *ecs.World) {
	q.s.seq.Update(w.Tick())
}

type dropCheckSystem struct{ s *Session }

func (d dropCheckSystem) Update(w *ecs.World) {
	if !d.s.seq.State().Carrying() {
		return
	}
	for _, p := range d.s.grab.CheckDrops(d.s.claw, d.s.physics) {
		w.Publish(EventPrizeDropped, p)
	}
}

type tetherSystem struct{ s *Session }

func (t tetherSystem) Update(_ *ecs.World) {
	t.s.tether.Update(t.s.claw.Position)
}

type physicsSystem struct{ s *Session }

func (p physicsSystem) Update(w *ecs.World) {
	p.s.physics.Step()
	p.s.seq.Carry()
	p.s.pool.Sync(w.Tick())
}
