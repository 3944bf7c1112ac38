// Package odds lets an operator script decide how often the claw holds.
package odds

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/clawmachine/claw"
	"github.com/milk9111/clawmachine/prefabs"
)

// ErrNoRate is returned when a script leaves rate unset or non-numeric.
var ErrNoRate = errors.New("odds: script did not set a numeric rate")

// Policy runs a payout script per grab attempt. The script sees kind,
// distance, weight, base_rate, plays and plays_since_win and must assign
// rate. Any script failure falls back to the base rate.
type Policy struct {
	name string

	mu       sync.Mutex
	compiled *tengo.Compiled
	failures int
}

var _ claw.SuccessRater = (*Policy)(nil)

// Compile builds a policy from script source.
func Compile(name string, src []byte) (*Policy, error) {
	script := tengo.NewScript(src)
	for name, v := range map[string]any{
		"kind":            "",
		"distance":        0.0,
		"weight":          0.0,
		"base_rate":       0.0,
		"plays":           0,
		"plays_since_win": 0,
		"rate":            0.0,
	} {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("odds: add %s: %w", name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("odds: compile %s: %w", name, err)
	}
	return &Policy{name: name, compiled: compiled}, nil
}

// Load compiles a script from the prefab scripts directory.
func Load(name string) (*Policy, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("odds: load %s: %w", name, err)
	}
	return Compile(name, src)
}

func (p *Policy) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Failures counts attempts that fell back to the base rate.
func (p *Policy) Failures() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Rate runs the script for one attempt.
func (p *Policy) Rate(a claw.GrabAttempt) (float64, error) {
	if p == nil || p.compiled == nil {
		return a.BaseRate, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.compiled
	for name, v := range map[string]any{
		"kind":            a.Kind,
		"distance":        a.Distance,
		"weight":          a.Weight,
		"base_rate":       a.BaseRate,
		"plays":           a.Plays,
		"plays_since_win": a.PlaysSinceWin,
		"rate":            a.BaseRate,
	} {
		if err := c.Set(name, v); err != nil {
			return a.BaseRate, fmt.Errorf("odds: %s: set %s: %w", p.name, name, err)
		}
	}
	if err := c.Run(); err != nil {
		return a.BaseRate, fmt.Errorf("odds: %s: run: %w", p.name, err)
	}

	out := c.Get("rate")
	switch out.ValueType() {
	case "float", "int":
	default:
		return a.BaseRate, fmt.Errorf("%w: %s set %s", ErrNoRate, p.name, out.ValueType())
	}
	rate := out.Float()
	if math.IsNaN(rate) {
		return a.BaseRate, fmt.Errorf("%w: %s produced NaN", ErrNoRate, p.name)
	}
	return math.Max(0, math.Min(1, rate)), nil
}

// SuccessRate implements claw.SuccessRater.
func (p *Policy) SuccessRate(a claw.GrabAttempt) float64 {
	rate, err := p.Rate(a)
	if err != nil {
		p.mu.Lock()
		p.failures++
		p.mu.Unlock()
		log.Printf("odds: %v", err)
		return a.BaseRate
	}
	return rate
}
