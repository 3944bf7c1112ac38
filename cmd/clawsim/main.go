// Command clawsim plays a machine headless and reports how often it pays
// out. It aims at a random free prize before every drop.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"

	"github.com/milk9111/clawmachine/claw"
	"github.com/milk9111/clawmachine/odds"
	"github.com/milk9111/clawmachine/physics"
	"github.com/milk9111/clawmachine/prefabs"
)

func main() {
	machine := flag.String("machine", "", "machine prefab in prefabs/ (default machine.yaml)")
	plays := flag.Int("plays", 100, "number of plays")
	seed := flag.Int64("seed", 1, "random seed")
	script := flag.String("script", "", "payout script to rate grabs with, e.g. payout.tengo (\"none\" forces the fixed rate)")
	flag.Parse()

	spec, err := prefabs.LoadMachineSpec(*machine)
	if err != nil {
		log.Fatal(err)
	}
	switch *script {
	case "":
	case "none":
		spec.Grab.Script = ""
	default:
		spec.Grab.Script = *script
	}
	if err := spec.Validate(); err != nil {
		log.Fatal(err)
	}

	rng := rand.New(rand.NewSource(*seed))
	opts := []claw.Option{claw.WithRand(rng)}
	if spec.Grab.Script != "" {
		policy, err := odds.Load(spec.Grab.Script)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, claw.WithSuccessRater(policy))
	}

	session, err := claw.NewSession(spec.Config(), physics.NewSpace(spec.SpaceConfig()), opts...)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := session.Populate(spec.PrizeKinds(), spec.Prizes.Count); err != nil {
		log.Fatal(err)
	}

	sim := newSimulator(session, rng)
	// Let the pit settle before the first play.
	sim.idle(settleTicks)
	for i := 0; i < *plays; i++ {
		if !sim.play() {
			log.Printf("clawsim: stopped after %d plays", i)
			break
		}
	}
	sim.report(os.Stdout, spec.Name)
}

const (
	settleTicks = 180
	aimTicks    = 600
	cycleTicks  = 3000
	aimEpsilon  = 0.05
)

type result struct {
	Plays   int
	Wins    int
	Prizes  int
	Grabbed int
	Dropped int
	Bounces int
	ByKind  map[string]int
}

type simulator struct {
	session *claw.Session
	rng     *rand.Rand
	res     result
	won     bool
}

func newSimulator(s *claw.Session, rng *rand.Rand) *simulator {
	sim := &simulator{session: s, rng: rng, res: result{ByKind: make(map[string]int)}}
	s.SetHandlers(claw.Handlers{
		OnPrizeGrabbed: func(p []*claw.Prize) { sim.res.Grabbed += len(p) },
		OnPrizeDropped: func(*claw.Prize) { sim.res.Dropped++ },
		OnPrizeWon: func(p *claw.Prize) {
			sim.res.Prizes++
			sim.res.ByKind[p.Kind]++
			sim.won = true
		},
		OnBounce: func(claw.Axis) { sim.res.Bounces++ },
	})
	return sim
}

func (sim *simulator) idle(ticks int) {
	for i := 0; i < ticks; i++ {
		sim.session.Update(claw.Input{})
	}
}

// play aims, drops and waits for the claw to come home. It returns false
// when the pit is empty or the cycle never finished.
func (sim *simulator) play() bool {
	free := sim.session.Pool().Free()
	if len(free) == 0 {
		return false
	}
	target := free[sim.rng.Intn(len(free))].Position

	for i := 0; i < aimTicks; i++ {
		c := sim.session.Claw().Position
		dx, dz := target.X()-c.X(), target.Z()-c.Z()
		if abs(dx) < aimEpsilon && abs(dz) < aimEpsilon {
			break
		}
		sim.session.Update(claw.Input{MoveX: axis(dx), MoveZ: axis(dz)})
	}

	sim.won = false
	if !sim.session.DropClaw() {
		return false
	}
	sim.res.Plays++
	for i := 0; i < cycleTicks; i++ {
		sim.session.Update(claw.Input{})
		if sim.session.State() == claw.StateIdle {
			if sim.won {
				sim.res.Wins++
			}
			return true
		}
	}
	return false
}

func (sim *simulator) report(w io.Writer, name string) {
	r := sim.res
	rate := 0.0
	if r.Plays > 0 {
		rate = float64(r.Wins) / float64(r.Plays) * 100
	}
	fmt.Fprintf(w, "machine: %s\n", name)
	fmt.Fprintf(w, "plays: %d  wins: %d (%.1f%%)  prizes: %d\n", r.Plays, r.Wins, rate, r.Prizes)
	fmt.Fprintf(w, "grabbed: %d  dropped: %d  bounces: %d\n", r.Grabbed, r.Dropped, r.Bounces)
	kinds := make([]string, 0, len(r.ByKind))
	for kind := range r.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %s: %d\n", kind, r.ByKind[kind])
	}
}

func axis(d float64) float64 {
	switch {
	case d > aimEpsilon:
		return 1
	case d < -aimEpsilon:
		return -1
	}
	return 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
