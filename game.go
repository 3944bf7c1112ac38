package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/clawmachine/claw"
	"github.com/milk9111/clawmachine/odds"
	"github.com/milk9111/clawmachine/physics"
	"github.com/milk9111/clawmachine/prefabs"
	"github.com/milk9111/clawmachine/stats"
	"github.com/quasilyte/gdata/v2"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	appName = "clawmachine"
)

type Game struct {
	frames int

	machinePath string
	seed        int64

	spec    prefabs.MachineSpec
	space   *physics.Space
	session *claw.Session
	policy  *odds.Policy
	tracker *stats.Tracker
	store   *gdata.Manager
	watcher *prefabs.Watcher

	input *Input
	ui    *ebitenui.UI

	paused        bool
	quit          bool
	debug         bool
	reloadPending bool
	message       string
}

// NewGame builds the machine described by machinePath. A seed of 0 seeds
// from the clock.
func NewGame(machinePath string, seed int64, debug, watch bool) (*Game, error) {
	g := &Game{
		machinePath: machinePath,
		seed:        seed,
		debug:       debug,
		input:       NewInput(),
	}
	store, err := stats.Open(appName)
	if err != nil {
		log.Printf("stats disabled: %v", err)
	}
	g.store = store

	if err := g.buildMachine(); err != nil {
		return nil, err
	}

	if watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, prefabs.ScriptDir())
		if err != nil {
			log.Printf("hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	g.ui = NewPauseUI(g)
	return g, nil
}

// buildMachine loads the prefab and replaces the running session.
func (g *Game) buildMachine() error {
	spec, err := prefabs.LoadMachineSpec(g.machinePath)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	var opts []claw.Option
	if g.seed != 0 {
		opts = append(opts, claw.WithRand(rand.New(rand.NewSource(g.seed))))
	}
	var policy *odds.Policy
	if spec.Grab.Script != "" {
		policy, err = odds.Load(spec.Grab.Script)
		if err != nil {
			log.Printf("payout script %s: %v (using fixed rate)", spec.Grab.Script, err)
		} else {
			opts = append(opts, claw.WithSuccessRater(policy))
		}
	}
	opts = append(opts, claw.WithHandlers(g.handlers()))

	space := physics.NewSpace(spec.SpaceConfig())
	session, err := claw.NewSession(spec.Config(), space, opts...)
	if err != nil {
		return err
	}
	if _, err := session.Populate(spec.PrizeKinds(), spec.Prizes.Count); err != nil {
		return fmt.Errorf("populate %s: %w", spec.Name, err)
	}

	g.spec = spec
	g.space = space
	g.session = session
	g.policy = policy
	if g.tracker == nil {
		g.tracker = stats.NewTracker(g.store, spec.Name)
	} else {
		g.tracker = g.tracker.Switch(spec.Name)
	}
	log.Printf("machine %q loaded with %d prizes", spec.Name, len(session.Prizes()))
	return nil
}

func (g *Game) handlers() claw.Handlers {
	return claw.Handlers{
		OnStateChange: func(sc claw.StateChange) {
			switch sc.To {
			case claw.StateDescending:
				g.tracker.RecordPlay()
			case claw.StateIdle:
				if sc.From != claw.StateReturning {
					g.tracker.RecordAbort()
				}
				if err := g.tracker.Save(); err != nil {
					log.Printf("save stats: %v", err)
				}
			}
		},
		OnPrizeGrabbed: func(prizes []*claw.Prize) {
			g.message = fmt.Sprintf("grabbed %d", len(prizes))
		},
		OnPrizeDropped: func(p *claw.Prize) {
			g.tracker.RecordDrop()
			g.message = "dropped the " + p.Kind
		},
		OnPrizeWon: func(p *claw.Prize) {
			g.tracker.RecordPrize(p.Kind)
			g.message = "won a " + p.Kind + "!"
		},
		OnLose: func() {
			g.tracker.RecordLoss()
			g.message = "no luck"
		},
	}
}

func (g *Game) Update() error {
	g.frames++
	g.input.Update()

	if g.quit {
		if err := g.tracker.Save(); err != nil {
			log.Printf("save stats: %v", err)
		}
		if g.watcher != nil {
			_ = g.watcher.Close()
		}
		return ebiten.Termination
	}

	if g.input.PausePressed {
		g.paused = !g.paused
	}
	if g.paused {
		g.ui.Update()
		return nil
	}

	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.input.ResetPressed {
		g.session.Reset()
	}

	g.pollWatcher()
	if g.reloadPending && g.session.State() == claw.StateIdle {
		g.reloadPending = false
		if err := g.buildMachine(); err != nil {
			log.Printf("reload: %v", err)
			g.message = "reload failed"
		} else {
			g.message = "reloaded " + g.spec.Name
		}
	}

	g.session.Update(g.input.Claw)
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("prefab changed: %s (%s)", change.Path, change.Kind)
			g.reloadPending = true
		case err, ok := <-g.watcher.Errors:
			if ok && err != nil {
				log.Printf("watch: %v", err)
			}
			return
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawMachine(screen, g.session)
	if g.debug {
		drawChipmunk(screen, g.space)
	}

	st := g.tracker.Stats()
	hud := fmt.Sprintf("%s  FPS: %.2f\nstate: %s\nplays: %d  wins: %d  streak: %d  rate: %.0f%%",
		g.spec.Name, ebiten.ActualFPS(), g.session.State(),
		st.Plays, st.Wins, st.Streak, st.WinRate()*100)
	if g.message != "" {
		hud += "\n" + g.message
	}
	if g.debug {
		hud += fmt.Sprintf("\ntick: %d  bodies: %d  plays since win: %d",
			g.session.Tick(), g.space.BodyCount(), g.session.Grab().PlaysSinceWin())
		if g.policy != nil {
			hud += fmt.Sprintf("\nscript: %s  failures: %d", g.policy.Name(), g.policy.Failures())
		}
	}
	ebitenutil.DebugPrint(screen, hud)

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
