package claw

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/milk9111/clawmachine/ecs"
	"github.com/milk9111/clawmachine/physics"
)

// ErrNoPhysics is returned when a session is built without a physics world.
var ErrNoPhysics = errors.New("claw: nil physics world")

// Session is one running claw machine. All state lives here; nothing is
// global. It is not safe for concurrent use.
type Session struct {
	cfg     Config
	physics physics.World
	world   *ecs.World

	claw       *Claw
	kinematics *Kinematics
	grab       *GrabEngine
	seq        *Sequencer
	pool       *PrizePool
	tether     *Tether
	cabinet    []physics.BodyHandle

	rng      Rand
	rater    SuccessRater
	handlers Handlers
	input    Input
}

type Option func(*Session)

// WithRand seeds every random draw of the session.
func WithRand(rng Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSuccessRater replaces the fixed grab success rate.
func WithSuccessRater(r SuccessRater) Option {
	return func(s *Session) { s.rater = r }
}

func WithHandlers(h Handlers) Option {
	return func(s *Session) { s.handlers = h }
}

// NewSession validates cfg, builds the cabinet into world and returns an
// idle claw at its rest point.
func NewSession(cfg Config, world physics.World, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("claw: new session: %w", err)
	}
	if world == nil {
		return nil, ErrNoPhysics
	}

	s := &Session{cfg: cfg, physics: world}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.world = ecs.NewWorld()
	s.claw = newClaw(s.cfg)
	s.kinematics = NewKinematics(&s.cfg)
	s.grab = NewGrabEngine(&s.cfg, s.rng, s.rater)
	s.pool = NewPrizePool(&s.cfg, world, s.world)
	s.seq = NewSequencer(&s.cfg, s.claw, s.grab, s.pool, world, s.world)
	s.tether = NewTether(&s.cfg, s.claw.Position, s.rng)
	s.cabinet = BuildCabinet(world, s.cfg)

	s.world.AddSystem(kinematicsSystem{s})
	s.world.AddSystem(sequencerSystem{s})
	s.world.AddSystem(dropCheckSystem{s})
	s.world.AddSystem(tetherSystem{s})
	s.world.AddSystem(physicsSystem{s})

	log.Printf("claw: session ready, %d cabinet bodies", len(s.cabinet))
	return s, nil
}

// Populate spawns count prizes cycling through kinds.
func (s *Session) Populate(kinds []PrizeKind, count int) ([]*Prize, error) {
	if s == nil {
		return nil, nil
	}
	return s.pool.Populate(kinds, count, s.rng)
}

// DropClaw starts a drop cycle. It returns false while a cycle is running.
func (s *Session) DropClaw() bool {
	if s == nil {
		return false
	}
	return s.seq.Drop()
}

// Update advances the machine one tick and then reports the tick's events
// to the handlers. in.Drop behaves like calling DropClaw first.
func (s *Session) Update(in Input) {
	if s == nil {
		return
	}
	if in.Drop {
		s.seq.Drop()
	}
	s.input = in
	s.world.Update()
	s.dispatch()
}

func (s *Session) dispatch() {
	for _, evt := range s.world.Events().Drain() {
		s.handlers.dispatch(evt)
	}
}

// Reset returns the claw to rest and abandons any running cycle. Events
// still queued are discarded; handlers then see the change to Idle if a
// cycle was running. Prizes already released into the bin are still
// removed on schedule.
func (s *Session) Reset() {
	if s == nil {
		return
	}
	s.world.ClearEvents()
	s.seq.Reset()
	s.kinematics.Reset()
	s.tether.Reset(s.claw.Position)
	s.input = Input{}
	s.dispatch()
}

func (s *Session) SetHandlers(h Handlers) {
	if s == nil {
		return
	}
	s.handlers = h
}

func (s *Session) Claw() *Claw {
	if s == nil {
		return nil
	}
	return s.claw
}

func (s *Session) State() State {
	if s == nil {
		return StateIdle
	}
	return s.seq.State()
}

func (s *Session) Pool() *PrizePool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Prizes returns every prize still simulated.
func (s *Session) Prizes() []*Prize {
	if s == nil {
		return nil
	}
	return s.pool.All()
}

func (s *Session) Tether() *Tether {
	if s == nil {
		return nil
	}
	return s.tether
}

func (s *Session) Grab() *GrabEngine {
	if s == nil {
		return nil
	}
	return s.grab
}

func (s *Session) Sequencer() *Sequencer {
	if s == nil {
		return nil
	}
	return s.seq
}

func (s *Session) Physics() physics.World {
	if s == nil {
		return nil
	}
	return s.physics
}

func (s *Session) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.cfg
}

// Tick is the number of completed updates.
func (s *Session) Tick() uint64 {
	if s == nil {
		return 0
	}
	return s.world.Tick()
}
