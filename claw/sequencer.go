package claw

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/common"
	"github.com/milk9111/clawmachine/ecs"
	"github.com/milk9111/clawmachine/physics"
)

// Sequencer is the drop cycle state machine. Delayed steps are queued as
// actions due at a future tick, so a cycle is fully deterministic in ticks.
type Sequencer struct {
	cfg   *Config
	claw  *Claw
	grab  *GrabEngine
	pool  *PrizePool
	world physics.World
	bus   eventBus

	state    State
	timers   timerQueue
	jawsOpen bool
	atBin    bool
}

func NewSequencer(cfg *Config, c *Claw, grab *GrabEngine, pool *PrizePool, world physics.World, bus eventBus) *Sequencer {
	return &Sequencer{
		cfg:      cfg,
		claw:     c,
		grab:     grab,
		pool:     pool,
		world:    world,
		bus:      bus,
		jawsOpen: true,
	}
}

func (s *Sequencer) State() State {
	if s == nil {
		return StateIdle
	}
	return s.state
}

// Pending is the number of queued delayed actions.
func (s *Sequencer) Pending() int {
	if s == nil {
		return 0
	}
	return s.timers.len()
}

// Drop starts a cycle. It is rejected without side effects unless idle.
func (s *Sequencer) Drop() bool {
	if s == nil || s.state != StateIdle {
		return false
	}
	s.claw.Velocity = mgl64.Vec3{}
	s.setState(StateDescending)
	return true
}

// Update runs due actions, then the motion of the current state, then
// eases the jaws and carries held prizes to the claw.
func (s *Sequencer) Update(now uint64) {
	if s == nil {
		return
	}
	for _, action := range s.timers.popDue(now) {
		s.run(action, now)
	}

	switch s.state {
	case StateDescending:
		s.descend(now)
	case StateAscending:
		s.ascend()
	case StateMovingToBin:
		s.moveToBin(now)
	case StateReturning:
		s.returnToRest()
	}

	s.easeJaws()
	s.Carry()
}

func (s *Sequencer) descend(now uint64) {
	c := s.claw
	c.Position[1] -= s.cfg.DescendSpeed
	if c.Position.Y() > s.cfg.DescendFloorY {
		return
	}
	c.Position[1] = s.cfg.DescendFloorY
	s.jawsOpen = false
	s.setState(StateGrabbing)
	s.timers.schedule(now, s.cfg.Ticks(s.cfg.GrabDelayMs), actionEvaluateGrab)
}

func (s *Sequencer) ascend() {
	c := s.claw
	c.Position[1] += s.cfg.AscendSpeed
	if c.Position.Y() < c.RestingHeight {
		return
	}
	c.Position[1] = c.RestingHeight
	s.atBin = false
	s.setState(StateMovingToBin)
}

func (s *Sequencer) moveToBin(now uint64) {
	if s.atBin {
		return
	}
	c := s.claw
	bin := s.cfg.BinPoint()
	next := c.Position
	next[0] = common.Lerp(next.X(), bin.X(), s.cfg.BinEase)
	next[2] = common.Lerp(next.Z(), bin.Z(), s.cfg.BinEase)
	c.Velocity = mgl64.Vec3{next.X()-c.Position.X(), 0, next.Z()-c.Position.Z()}
	c.Position = next

	if common.LenXZ(bin.Sub(c.Position)) >= s.cfg.BinEpsilon {
		return
	}
	s.atBin = true
	c.Velocity = mgl64.Vec3{}

	if c.HeldCount() == 0 {
		s.timers.schedule(now, s.cfg.Ticks(s.cfg.NoCatchDelayMs), actionNoCatch)
		return
	}
	s.releaseAll(now)
	open := s.cfg.Ticks(s.cfg.OpenDelayMs)
	s.timers.schedule(now, open, actionOpenJaws)
	s.timers.schedule(now, open+s.cfg.Ticks(s.cfg.SettleDelayMs), actionBeginReturn)
}

// releaseAll drops every held prize into the bin.
func (s *Sequencer) releaseAll(now uint64) {
	for _, p := range s.claw.Held() {
		s.claw.release(p)
		if s.world != nil {
			s.world.SetLinearVelocity(p.Body, mgl64.Vec3{0, -s.cfg.ReleaseSpeed, 0})
		}
		s.pool.markWon(p, now)
		s.publish(EventPrizeWon, p)
	}
	s.grab.RecordWin()
}

func (s *Sequencer) returnToRest() {
	if s.completeReturn() {
		return
	}
	c := s.claw
	rest := s.cfg.RestPoint()
	ease := s.cfg.ReturnFarEase
	if common.Dist(c.Position, rest) < s.cfg.ReturnNearDistance {
		ease = s.cfg.ReturnNearEase
	}
	next := common.LerpVec(c.Position, rest, ease)
	c.Velocity = mgl64.Vec3{next.X()-c.Position.X(), 0, next.Z()-c.Position.Z()}
	c.Position = next
	s.completeReturn()
}

// completeReturn snaps the claw onto its rest point once within epsilon and
// ends the cycle.
func (s *Sequencer) completeReturn() bool {
	c := s.claw
	rest := s.cfg.RestPoint()
	if common.Dist(c.Position, rest) > s.cfg.ReturnEpsilon {
		return false
	}
	c.Position = rest
	c.Velocity = mgl64.Vec3{}
	if s.state != StateIdle {
		s.setState(StateIdle)
	}
	return true
}

func (s *Sequencer) run(action timerAction, now uint64) {
	switch action {
	case actionEvaluateGrab:
		if s.state != StateGrabbing {
			return
		}
		if grabbed := s.grab.Evaluate(s.claw, s.pool.Free(), s.world); len(grabbed) > 0 {
			s.publish(EventPrizesGrabbed, grabbed)
		}
		s.timers.schedule(now, s.cfg.Ticks(s.cfg.AscendDelayMs), actionBeginAscent)
	case actionBeginAscent:
		if s.state == StateGrabbing {
			s.setState(StateAscending)
		}
	case actionOpenJaws:
		s.jawsOpen = true
	case actionBeginReturn:
		if s.state == StateMovingToBin {
			s.setState(StateReturning)
		}
	case actionNoCatch:
		s.publish(EventLose, nil)
		s.jawsOpen = true
		if s.state == StateMovingToBin {
			s.setState(StateReturning)
		}
	}
}

func (s *Sequencer) easeJaws() {
	c := s.claw
	target := c.ClosedAngle
	if s.jawsOpen {
		target = c.OpenAngle
	}
	c.CurrentAngle = common.Lerp(c.CurrentAngle, target, s.cfg.AngleEase)
}

// Carry pins held prizes under the claw with zero velocity.
func (s *Sequencer) Carry() {
	if s == nil {
		return
	}
	hold := s.claw.holdPoint(s.cfg.HoldOffset)
	for _, p := range s.claw.held {
		p.Position = hold
		if s.world == nil {
			continue
		}
		s.world.SetTranslation(p.Body, hold)
		s.world.SetLinearVelocity(p.Body, mgl64.Vec3{})
	}
}

// Reset abandons the cycle: pending actions are dropped and held prizes
// fall where they are without counting as won. Leaving a running cycle
// publishes the change to Idle.
func (s *Sequencer) Reset() {
	if s == nil {
		return
	}
	s.timers.clear()
	for _, p := range s.claw.Held() {
		s.claw.release(p)
		if s.world != nil {
			s.world.SetLinearVelocity(p.Body, mgl64.Vec3{})
		}
	}
	c := s.claw
	c.Position = s.cfg.RestPoint()
	c.Velocity = mgl64.Vec3{}
	c.Swing = 0
	c.CurrentAngle = c.OpenAngle
	s.jawsOpen = true
	s.atBin = false
	s.setState(StateIdle)
}

func (s *Sequencer) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.publish(EventStateChanged, StateChange{From: from, To: to})
}

func (s *Sequencer) publish(t ecs.EventType, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(t, data)
}
