package ecs

import (
	"fmt"
	"testing"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.CreateEntity())
			}
			if w.EntityCount() != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, w.EntityCount())
			}
			if c.destroyIndex >= 0 {
				if !w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if w.IsAlive(ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false for a stale handle")
				}
			}
		})
	}
}

func TestEntityReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	w.DestroyEntity(e1)
	e2 := w.CreateEntity()
	if e1.Index() != e2.Index() {
		t.Fatalf("expected slot reuse: %d vs %d", e1.Index(), e2.Index())
	}
	if e1 == e2 {
		t.Fatalf("expected a new generation for the reused slot")
	}
	if w.IsAlive(e1) {
		t.Fatalf("stale handle reported alive")
	}
	if !w.IsAlive(e2) {
		t.Fatalf("fresh handle reported dead")
	}
	if e1.Generation() != 0 || e2.Generation() != 1 {
		t.Fatalf("expected generations 0 then 1, got %d and %d", e1.Generation(), e2.Generation())
	}
	if got := e2.String(); got != fmt.Sprintf("%d:1", e2.Index()) {
		t.Fatalf("String() = %q", got)
	}
	if Nil.Valid() || w.IsAlive(Nil) {
		t.Fatalf("the nil handle must never be live")
	}
}

func TestSparseSet(t *testing.T) {
	var store EntityStore
	e1 := store.Create()
	e2 := store.Create()
	e3 := store.Create()

	var s SparseSet[string]
	s.Set(e1, "a")
	s.Set(e2, "b")
	s.Set(e3, "c")
	s.Set(e2, "B")

	if v, ok := s.Get(e2); !ok || v != "B" {
		t.Fatalf("expected B, got %q ok=%v", v, ok)
	}
	if !s.Remove(e1) {
		t.Fatalf("remove e1 failed")
	}
	if s.Has(e1) || s.Len() != 2 {
		t.Fatalf("expected e1 gone, len 2; len=%d", s.Len())
	}
	if v, ok := s.Get(e3); !ok || v != "c" {
		t.Fatalf("swap-remove lost e3: %q ok=%v", v, ok)
	}

	store.Destroy(e3)
	e4 := store.Create()
	if s.Has(e4) {
		t.Fatalf("stale slot leaked into a new generation")
	}

	var seen []Entity
	s.Each(func(e Entity, _ string) { seen = append(seen, e) })
	if len(seen) != 2 {
		t.Fatalf("expected 2 entries, got %v", seen)
	}
}

type recordSystem struct {
	name string
	log  *[]string
}

func (r recordSystem) Update(w *World) {
	*r.log = append(*r.log, r.name)
	w.Publish("ran", r.name)
}

func TestWorldRunsSystemsInOrder(t *testing.T) {
	var log []string
	w := NewWorld(recordSystem{"a", &log}, recordSystem{"b", &log})
	w.AddSystem(SystemFunc(func(w *World) { log = append(log, "c") }))
	w.AddSystem(nil)

	w.Update()
	w.Update()

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(log) != len(want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("got %v, want %v", log, want)
		}
	}
	if w.Tick() != 2 {
		t.Fatalf("tick = %d, want 2", w.Tick())
	}

	events := w.Events().Drain()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[0].Tick != 1 || events[3].Tick != 2 {
		t.Fatalf("events not stamped with tick: %+v", events)
	}
	if w.Events().Len() != 0 {
		t.Fatalf("drain should empty the queue")
	}
}
