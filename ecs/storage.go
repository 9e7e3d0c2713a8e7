package ecs

// entityStore tracks slot generations and free ids. Ids start at 1 so the
// zero Entity is never handed out.
type entityStore struct {
	gen  []generation
	free []entityID
}

func (s *entityStore) create() Entity {
	if s == nil {
		return 0
	}
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		id = entityID(len(s.gen))
	}
	return makeEntity(id, s.gen[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gen[id-1]++
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil {
		return false
	}
	id := e.id()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == e.generation()
}

func (s *entityStore) reset() {
	if s == nil {
		return
	}
	// Bump every generation so handles issued before the reset stay dead.
	s.free = s.free[:0]
	for i := len(s.gen) - 1; i >= 0; i-- {
		s.gen[i]++
		s.free = append(s.free, entityID(i+1))
	}
}
