// Package stats keeps lifetime play statistics per machine.
package stats

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const statsObject = "stats"

// Stats is the persisted record of one machine.
type Stats struct {
	Plays      int            `yaml:"plays"`
	Wins       int            `yaml:"wins"`
	Losses     int            `yaml:"losses"`
	Drops      int            `yaml:"drops"`
	Prizes     int            `yaml:"prizes"`
	Streak     int            `yaml:"streak"`
	BestStreak int            `yaml:"best_streak"`
	ByKind     map[string]int `yaml:"by_kind,omitempty"`
}

// WinRate is wins over plays, zero before the first play.
func (s Stats) WinRate() float64 {
	if s.Plays == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Plays)
}

// Tracker records plays of one machine. A nil gdata manager keeps the
// stats in memory only.
type Tracker struct {
	manager *gdata.Manager
	machine string
	stats   Stats

	playWon bool
	dirty   bool
}

// Open opens the platform data store for appName. Callers fall back to
// NewTracker(nil, ...) when it fails.
func Open(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("stats: open %s: %w", appName, err)
	}
	return m, nil
}

// NewTracker loads the stored record for machine. A record that fails to
// load is logged and replaced with a fresh one.
func NewTracker(manager *gdata.Manager, machine string) *Tracker {
	t := &Tracker{manager: manager, machine: machine}
	if err := t.Load(); err != nil {
		log.Printf("stats: %v (starting fresh)", err)
	}
	return t
}

func (t *Tracker) Load() error {
	if t == nil {
		return nil
	}
	t.stats = Stats{}
	if t.manager == nil || !t.manager.ObjectPropExists(statsObject, t.machine) {
		return nil
	}
	data, err := t.manager.LoadObjectProp(statsObject, t.machine)
	if err != nil {
		return fmt.Errorf("stats: load %s: %w", t.machine, err)
	}
	var loaded Stats
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("stats: unmarshal %s: %w", t.machine, err)
	}
	t.stats = loaded
	return nil
}

// Save writes the record if it changed since the last save.
func (t *Tracker) Save() error {
	if t == nil || t.manager == nil || !t.dirty {
		return nil
	}
	data, err := yaml.Marshal(t.stats)
	if err != nil {
		return fmt.Errorf("stats: marshal %s: %w", t.machine, err)
	}
	if err := t.manager.SaveObjectProp(statsObject, t.machine, data); err != nil {
		return fmt.Errorf("stats: save %s: %w", t.machine, err)
	}
	t.dirty = false
	log.Printf("stats: saved %s (%d plays, %d wins)", t.machine, t.stats.Plays, t.stats.Wins)
	return nil
}

// Stats returns a copy of the current record.
func (t *Tracker) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	out := t.stats
	if t.stats.ByKind != nil {
		out.ByKind = make(map[string]int, len(t.stats.ByKind))
		for k, v := range t.stats.ByKind {
			out.ByKind[k] = v
		}
	}
	return out
}

func (t *Tracker) Machine() string {
	if t == nil {
		return ""
	}
	return t.machine
}

// Switch returns the tracker for machine, saving t first when the machine
// changes. It returns t itself when t already tracks machine.
func (t *Tracker) Switch(machine string) *Tracker {
	if t == nil {
		return NewTracker(nil, machine)
	}
	if t.machine == machine {
		return t
	}
	if err := t.Save(); err != nil {
		log.Printf("stats: %v", err)
	}
	return NewTracker(t.manager, machine)
}

// RecordPlay starts a new drop cycle.
func (t *Tracker) RecordPlay() {
	if t == nil {
		return
	}
	t.stats.Plays++
	t.playWon = false
	t.dirty = true
}

// RecordPrize counts a prize delivered to the bin. The first prize of a play
// makes the play a win.
func (t *Tracker) RecordPrize(kind string) {
	if t == nil {
		return
	}
	t.stats.Prizes++
	if t.stats.ByKind == nil {
		t.stats.ByKind = make(map[string]int)
	}
	t.stats.ByKind[kind]++
	if !t.playWon {
		t.playWon = true
		t.stats.Wins++
		t.stats.Streak++
		if t.stats.Streak > t.stats.BestStreak {
			t.stats.BestStreak = t.stats.Streak
		}
	}
	t.dirty = true
}

// RecordLoss ends a play that reached the bin empty-handed.
func (t *Tracker) RecordLoss() {
	if t == nil {
		return
	}
	t.stats.Losses++
	t.stats.Streak = 0
	t.dirty = true
}

// RecordAbort ends a play cut short by a reset. It counts as a loss unless
// a prize already reached the bin.
func (t *Tracker) RecordAbort() {
	if t == nil || t.playWon {
		return
	}
	t.RecordLoss()
}

// RecordDrop counts a prize that slipped from the claw in transit.
func (t *Tracker) RecordDrop() {
	if t == nil {
		return
	}
	t.stats.Drops++
	t.dirty = true
}
