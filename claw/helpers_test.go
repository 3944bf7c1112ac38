package claw

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/physics/physicstest"
)

var testKind = PrizeKind{
	Name:          "bear",
	Radius:        0.5,
	Weight:        Range{Min: 0.2, Max: 0.2},
	Bounciness:    Range{Min: 0.3, Max: 0.3},
	Deformability: Range{Min: 0.5, Max: 0.5},
}

func newTestSession(t *testing.T, seed int64, mutate func(*Config), opts ...Option) (*Session, *physicstest.World) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	world := physicstest.New()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(seed)))}, opts...)
	s, err := NewSession(cfg, world, opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, world
}

func spawnAt(t *testing.T, s *Session, pos mgl64.Vec3) *Prize {
	t.Helper()
	p, err := s.Pool().Spawn(testKind, pos, s.rng)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	return p
}

// runUntil ticks the session until done reports true or max ticks pass.
func runUntil(s *Session, in Input, max int, done func() bool) bool {
	for i := 0; i < max; i++ {
		if done() {
			return true
		}
		s.Update(in)
	}
	return done()
}

func checkHeldInvariant(t *testing.T, s *Session) {
	t.Helper()
	c := s.Claw()
	for _, p := range s.Prizes() {
		if p.Grabbed != c.Holding(p) {
			t.Fatalf("tick %d: prize %v grabbed=%v but held=%v", s.Tick(), p.ID, p.Grabbed, c.Holding(p))
		}
	}
	for _, p := range c.Held() {
		if !p.Grabbed {
			t.Fatalf("tick %d: held prize %v not marked grabbed", s.Tick(), p.ID)
		}
		v, ok := s.Physics().LinearVelocity(p.Body)
		if ok && v != (mgl64.Vec3{}) {
			t.Fatalf("tick %d: held prize %v has velocity %+v", s.Tick(), p.ID, v)
		}
	}
}
