package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/clawmachine/claw"
)

func TestEmbeddedMachineMatchesDefaults(t *testing.T) {
	Dir = t.TempDir()

	spec, err := LoadMachineSpec("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("shipped machine invalid: %v", err)
	}
	if spec.Name != "classic" {
		t.Fatalf("expected the classic machine, got %q", spec.Name)
	}
	if got, want := spec.Config(), claw.DefaultConfig(); got != want {
		t.Fatalf("shipped machine drifted from defaults:\n got %+v\nwant %+v", got, want)
	}
	if len(spec.PrizeKinds()) != 4 || spec.Prizes.Count != 18 {
		t.Fatalf("unexpected prize table: %d kinds, %d prizes", len(spec.PrizeKinds()), spec.Prizes.Count)
	}
	if spec.Grab.Script != "" {
		t.Fatalf("the classic machine grabs at the fixed rate, got script %q", spec.Grab.Script)
	}
	if spec.SpaceConfig().TimeStep != 1.0/60 {
		t.Fatalf("expected a 60 Hz physics step, got %v", spec.SpaceConfig().TimeStep)
	}
}

func TestPayoutMachineUsesScript(t *testing.T) {
	Dir = t.TempDir()

	spec, err := LoadMachineSpec("machine_payout.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("payout machine invalid: %v", err)
	}
	if spec.Name != "classic_payout" || spec.Grab.Script != "payout.tengo" {
		t.Fatalf("expected the scripted machine, got %q script %q", spec.Name, spec.Grab.Script)
	}
	if got, want := spec.Config(), claw.DefaultConfig(); got != want {
		t.Fatalf("payout machine tuning drifted from defaults:\n got %+v\nwant %+v", got, want)
	}
	if _, err := LoadScript(spec.Grab.Script); err != nil {
		t.Fatalf("payout script missing: %v", err)
	}
}

func TestDiskPrefabOverridesEmbedded(t *testing.T) {
	Dir = t.TempDir()
	data := []byte("name: tight\ngrab:\n  success_rate: 0.2\n")
	if err := os.WriteFile(filepath.Join(Dir, "tight.yaml"), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	spec, err := LoadMachineSpec("prefabs/tight.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Name != "tight" || spec.Grab.SuccessRate != 0.2 {
		t.Fatalf("expected the disk override, got %q rate %v", spec.Name, spec.Grab.SuccessRate)
	}
	if spec.Grab.Radius != claw.DefaultConfig().GrabRadius {
		t.Fatalf("missing keys must keep defaults, got radius %v", spec.Grab.Radius)
	}
}

func TestLoadMachineSpecErrors(t *testing.T) {
	Dir = t.TempDir()
	if _, err := LoadMachineSpec("missing.yaml"); err == nil {
		t.Fatalf("expected an error for a missing prefab")
	}

	if err := os.WriteFile(filepath.Join(Dir, "broken.yaml"), []byte("grab: [1, 2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadMachineSpec("broken.yaml"); err == nil {
		t.Fatalf("expected an error for malformed yaml")
	}
}

func TestMachineSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MachineSpec)
	}{
		{name: "bad config", mutate: func(m *MachineSpec) { m.Grab.Radius = -1 }},
		{name: "bad kind", mutate: func(m *MachineSpec) { m.Prizes.Kinds = []PrizeKindSpec{{Name: "x", Radius: 0}} }},
		{name: "prizes without kinds", mutate: func(m *MachineSpec) { m.Prizes.Count = 3 }},
		{name: "negative count", mutate: func(m *MachineSpec) { m.Prizes.Count = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMachineSpec()
			tt.mutate(&m)
			if err := m.Validate(); !errors.Is(err, claw.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadScript(t *testing.T) {
	Dir = t.TempDir()
	for _, name := range []string{"payout.tengo", "scripts/payout.tengo", "prefabs/scripts/payout.tengo"} {
		data, err := LoadScript(name)
		if err != nil || len(data) == 0 {
			t.Fatalf("LoadScript(%q): %v", name, err)
		}
	}

	if err := os.MkdirAll(ScriptDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ScriptDir(), "payout.tengo"), []byte("rate = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := LoadScript("payout.tengo")
	if err != nil || string(data) != "rate = 1" {
		t.Fatalf("expected the disk script, got %q, %v", data, err)
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "payout.tengo"), []byte("rate = 0.5"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case change := <-w.Events:
		if change.Kind != ChangeScript || filepath.Base(change.Path) != "payout.tengo" {
			t.Fatalf("unexpected change %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]ChangeKind{
		"machine.yaml":    ChangeMachine,
		"MACHINE.YML":     ChangeMachine,
		"payout.tengo":    ChangeScript,
		"readme.md":       0,
		"scripts/old.lua": 0,
	}
	for path, want := range tests {
		if got := classify(path); got != want {
			t.Fatalf("classify(%q) = %v, want %v", path, got, want)
		}
	}
}
