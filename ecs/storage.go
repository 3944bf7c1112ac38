package ecs

// EntityStore tracks entity generations and free ids. Slot ids start at 1
// so that a zero Entity is always invalid.
type EntityStore struct {
	gen   []generation
	alive []bool
	free  []entityID
	count int
}

// Create allocates a handle, reusing a freed slot with a bumped generation.
func (s *EntityStore) Create() Entity {
	if s == nil {
		return Nil
	}
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
		id = entityID(len(s.gen))
	}
	s.alive[id-1] = true
	s.count++
	return newEntity(id, s.gen[id-1])
}

// Destroy frees a live handle. It reports false for stale or unknown handles.
func (s *EntityStore) Destroy(e Entity) bool {
	if !s.IsAlive(e) {
		return false
	}
	idx := e.id() - 1
	s.gen[idx]++
	s.alive[idx] = false
	s.free = append(s.free, e.id())
	s.count--
	return true
}

func (s *EntityStore) IsAlive(e Entity) bool {
	if s == nil || !e.Valid() {
		return false
	}
	id := e.id()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.alive[id-1] && s.gen[id-1] == e.generation()
}

// Len returns the number of live handles.
func (s *EntityStore) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}
