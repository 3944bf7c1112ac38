package stats

import "testing"

func openTemp(t *testing.T, app string) *Tracker {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	manager, err := Open(app)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return NewTracker(manager, "classic")
}

func TestTrackerCountsPlays(t *testing.T) {
	tr := NewTracker(nil, "classic")

	tr.RecordPlay()
	tr.RecordPrize("bear")
	tr.RecordPrize("duck")

	tr.RecordPlay()
	tr.RecordPrize("bear")

	tr.RecordPlay()
	tr.RecordDrop()
	tr.RecordLoss()

	tr.RecordPlay()
	tr.RecordPrize("ball")

	got := tr.Stats()
	want := Stats{Plays: 4, Wins: 3, Losses: 1, Drops: 1, Prizes: 4, Streak: 1, BestStreak: 2}
	if got.Plays != want.Plays || got.Wins != want.Wins || got.Losses != want.Losses ||
		got.Drops != want.Drops || got.Prizes != want.Prizes || got.Streak != want.Streak ||
		got.BestStreak != want.BestStreak {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}
	if got.ByKind["bear"] != 2 || got.ByKind["duck"] != 1 || got.ByKind["ball"] != 1 {
		t.Fatalf("unexpected per-kind counts %v", got.ByKind)
	}
	if got.WinRate() != 0.75 {
		t.Fatalf("WinRate() = %v, want 0.75", got.WinRate())
	}

	got.ByKind["bear"] = 100
	if tr.Stats().ByKind["bear"] != 2 {
		t.Fatalf("Stats() must return a copy")
	}
}

func TestMemoryOnlySaveIsNoop(t *testing.T) {
	tr := NewTracker(nil, "classic")
	tr.RecordPlay()
	if err := tr.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := tr.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if tr.Stats().Plays != 0 {
		t.Fatalf("memory-only load must start fresh")
	}
}

func TestTrackerPersists(t *testing.T) {
	tr := openTemp(t, "clawmachine_stats_test")
	if tr.Stats().Plays != 0 {
		t.Fatalf("expected empty stats in a fresh home")
	}

	tr.RecordPlay()
	tr.RecordPrize("bear")
	if err := tr.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	manager, err := Open("clawmachine_stats_test")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again := NewTracker(manager, "classic")
	got := again.Stats()
	if got.Plays != 1 || got.Wins != 1 || got.ByKind["bear"] != 1 {
		t.Fatalf("expected persisted stats, got %+v", got)
	}

	other := NewTracker(manager, "deluxe")
	if other.Stats().Plays != 0 {
		t.Fatalf("machines must not share stats")
	}
}

func TestCorruptRecordStartsFresh(t *testing.T) {
	tr := openTemp(t, "clawmachine_stats_corrupt")
	if err := tr.manager.SaveObjectProp(statsObject, "classic", []byte("plays: [")); err != nil {
		t.Fatalf("seed corrupt record: %v", err)
	}
	if err := tr.Load(); err == nil {
		t.Fatalf("expected an unmarshal error")
	}
	fresh := NewTracker(tr.manager, "classic")
	if fresh.Stats().Plays != 0 {
		t.Fatalf("expected fresh stats after a corrupt record")
	}
}

func TestRecordAbort(t *testing.T) {
	tests := []struct {
		name       string
		won        bool
		wantLosses int
		wantStreak int
	}{
		{"empty_handed", false, 1, 0},
		{"after_a_win", true, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(nil, "classic")
			tr.RecordPlay()
			tr.RecordPrize("duck")

			tr.RecordPlay()
			if tt.won {
				tr.RecordPrize("bear")
			}
			tr.RecordAbort()

			got := tr.Stats()
			if got.Plays != 2 || got.Losses != tt.wantLosses || got.Streak != tt.wantStreak {
				t.Fatalf("Stats() = %+v, want %d losses streak %d", got, tt.wantLosses, tt.wantStreak)
			}
		})
	}
}

func TestSwitchMachineSavesAndRebinds(t *testing.T) {
	tr := openTemp(t, "clawmachine_stats_switch")
	tr.RecordPlay()
	tr.RecordLoss()

	if same := tr.Switch("classic"); same != tr {
		t.Fatalf("switching to the same machine must keep the tracker")
	}

	next := tr.Switch("deluxe")
	if next == tr || next.Machine() != "deluxe" {
		t.Fatalf("expected a tracker for deluxe, got %q", next.Machine())
	}
	if next.Stats().Plays != 0 {
		t.Fatalf("deluxe must start with its own stats, got %+v", next.Stats())
	}
	next.RecordPlay()
	if err := next.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	classic := NewTracker(tr.manager, "classic")
	if got := classic.Stats(); got.Plays != 1 || got.Losses != 1 {
		t.Fatalf("expected classic saved on switch, got %+v", got)
	}
	deluxe := NewTracker(tr.manager, "deluxe")
	if got := deluxe.Stats(); got.Plays != 1 {
		t.Fatalf("expected deluxe stats under its own key, got %+v", got)
	}
}
