package ecs

// RemovalQueue collects entities marked for teardown during a tick. Pushing a
// handle that is already queued is a no-op, so an entity hit twice in one
// physics step is still torn down once.
type RemovalQueue struct {
	items  []Entity
	queued map[Entity]struct{}
}

// Push queues e and reports whether it was newly added.
func (q *RemovalQueue) Push(e Entity) bool {
	if q == nil || !e.Valid() {
		return false
	}
	if q.queued == nil {
		q.queued = make(map[Entity]struct{})
	}
	if _, ok := q.queued[e]; ok {
		return false
	}
	q.queued[e] = struct{}{}
	q.items = append(q.items, e)
	return true
}

// Contains reports whether e is waiting in the queue.
func (q *RemovalQueue) Contains(e Entity) bool {
	if q == nil || q.queued == nil {
		return false
	}
	_, ok := q.queued[e]
	return ok
}

// Len returns the number of queued entities.
func (q *RemovalQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns the queued entities in push order and empties the queue.
func (q *RemovalQueue) Drain() []Entity {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	clear(q.queued)
	return out
}

// EventQueue is a simple FIFO queue.
type EventQueue[T any] struct {
	items []T
}

// Push adds an event.
func (q *EventQueue[T]) Push(evt T) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue[T]) Drain() []T {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
