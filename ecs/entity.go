package ecs

import "fmt"

// Entity names a prize, a rigid body or anything else handed out by an
// EntityStore. The low half is a 1-based slot and the high half counts how
// often that slot was freed before, so a handle kept past Destroy never
// matches the slot's next owner.
type Entity uint64

// Nil is never returned by Create.
const Nil Entity = 0

type entityID uint32
type generation uint32

const slotBits = 32

func newEntity(slot entityID, gen generation) Entity {
	return Entity(uint64(gen)<<slotBits | uint64(slot))
}

func (e Entity) id() entityID           { return entityID(e & (1<<slotBits - 1)) }
func (e Entity) generation() generation { return generation(e >> slotBits) }

// Index is the slot, stable while the handle is alive.
func (e Entity) Index() int { return int(e.id()) }

// Generation is the number of times the slot was freed before this handle
// was issued.
func (e Entity) Generation() int { return int(e.generation()) }

func (e Entity) Valid() bool { return e.id() != 0 }

// String formats the handle as slot:generation.
func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.id(), e.generation())
}
