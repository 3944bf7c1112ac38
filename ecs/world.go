package ecs

// World owns entities, the tick counter, the system order and the event
// queue systems publish to.
type World struct {
	entities  EntityStore
	scheduler *Scheduler
	events    EventQueue
	tick      uint64
}

// NewWorld creates an empty world that will run systems in the given order.
func NewWorld(systems ...System) *World {
	return &World{scheduler: NewScheduler(systems...)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	if w == nil {
		return Nil
	}
	return w.entities.Create()
}

// DestroyEntity frees an entity handle.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.Destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.IsAlive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	if w == nil {
		return 0
	}
	return w.entities.Len()
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	if w.scheduler == nil {
		w.scheduler = NewScheduler()
	}
	w.scheduler.Add(s)
}

// Update advances the tick and runs all systems once. Events published
// during the tick stay queued until the owner drains them.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.tick++
	w.scheduler.Update(w)
}

// Tick returns the number of completed Update calls.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Publish queues an event stamped with the current tick.
func (w *World) Publish(t EventType, data any) {
	if w == nil {
		return
	}
	w.events.Push(Event{Type: t, Tick: w.tick, Data: data})
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// ClearEvents drops every queued event.
func (w *World) ClearEvents() {
	if w == nil {
		return
	}
	w.events.flush()
}
