package cdp

import "sync"

// queue is a bounded FIFO. When full, Push overwrites the oldest item and
// reports the loss, so a producer never has to wait for the consumer.
type queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int // oldest item
	count int
}

func newQueue[T any](capacity int) *queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &queue[T]{items: make([]T, capacity)}
}

// Push appends item. It returns true if the oldest item was discarded to
// make room.
func (q *queue[T]) Push(item T) (dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	capacity := len(q.items)
	tail := (q.head + q.count) % capacity
	q.items[tail] = item

	if q.count == capacity {
		q.head = (q.head + 1) % capacity
		return true
	}
	q.count++
	return false
}

// Pop removes and returns the oldest item.
func (q *queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.count == 0 {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return item, true
}

// Len returns the number of queued items.
func (q *queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *queue[T]) Cap() int {
	return len(q.items)
}

// Clear drops every queued item.
func (q *queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.head = 0
	q.count = 0
}
