package ecs

// Arena owns a set of values addressed by generational Entity handles. Values
// are packed densely so iteration is cache friendly; removal swaps the last
// element into the hole.
type Arena[T any] struct {
	store  entityStore
	dense  []Entity
	values []T
	sparse []int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Entity {
	if a == nil {
		return 0
	}
	e := a.store.create()
	idx := int(e.id()) - 1
	for len(a.sparse) <= idx {
		a.sparse = append(a.sparse, -1)
	}
	a.dense = append(a.dense, e)
	a.values = append(a.values, v)
	a.sparse[idx] = len(a.dense) - 1
	return e
}

// Has reports whether e refers to a live value.
func (a *Arena[T]) Has(e Entity) bool {
	if a == nil || !a.store.isAlive(e) {
		return false
	}
	idx := int(e.id()) - 1
	if idx >= len(a.sparse) {
		return false
	}
	pos := a.sparse[idx]
	return pos >= 0 && pos < len(a.dense) && a.dense[pos] == e
}

// Get returns the value for e.
func (a *Arena[T]) Get(e Entity) (T, bool) {
	var zero T
	if !a.Has(e) {
		return zero, false
	}
	return a.values[a.sparse[int(e.id())-1]], true
}

// Remove deletes the value for e and invalidates the handle. It returns false
// when e was already removed.
func (a *Arena[T]) Remove(e Entity) bool {
	if !a.Has(e) {
		return false
	}
	idx := int(e.id()) - 1
	pos := a.sparse[idx]
	last := len(a.dense) - 1
	moved := a.dense[last]

	a.dense[pos] = moved
	a.values[pos] = a.values[last]
	a.sparse[int(moved.id())-1] = pos

	var zero T
	a.values[last] = zero
	a.dense = a.dense[:last]
	a.values = a.values[:last]
	a.sparse[idx] = -1
	a.store.destroy(e)
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	if a == nil {
		return 0
	}
	return len(a.dense)
}

// Entities returns a snapshot of the live handles. The snapshot stays valid
// if the arena is mutated while the caller iterates it.
func (a *Arena[T]) Entities() []Entity {
	if a == nil || len(a.dense) == 0 {
		return nil
	}
	out := make([]Entity, len(a.dense))
	copy(out, a.dense)
	return out
}

// Each calls fn for every live value in dense order. fn must not insert into
// or remove from the arena.
func (a *Arena[T]) Each(fn func(Entity, T)) {
	if a == nil || fn == nil {
		return
	}
	for i, e := range a.dense {
		fn(e, a.values[i])
	}
}

// Clear removes every value. Handles issued before the call stay invalid.
func (a *Arena[T]) Clear() {
	if a == nil {
		return
	}
	a.store.reset()
	a.dense = a.dense[:0]
	var zero T
	for i := range a.values {
		a.values[i] = zero
	}
	a.values = a.values[:0]
	for i := range a.sparse {
		a.sparse[i] = -1
	}
}
