// Package queue provides the shared work queue that hands file paths from the
// enumerator to the search workers.
package queue

import (
	"errors"
	"sync"
)

// ErrEmpty is the panic value of Pop on an empty queue.
var ErrEmpty = errors.New("queue: pop from empty queue")

// ErrClosed is the panic value of Push on a closed queue.
var ErrClosed = errors.New("queue: push on closed queue")

// SharedQueue is a FIFO guarded by a single mutex. Every public method runs
// entirely under that lock, so no caller ever sees a half-updated queue.
//
// Producers call Push and finally Close. Consumers either poll with TryPop or
// block in Next, which reports false once the queue is closed and drained.
type SharedQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	head   int
	closed bool
}

// New creates an empty, open queue.
func New[T any]() *SharedQueue[T] {
	q := &SharedQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends item to the back of the queue.
// Pushing after Close is a programming error and panics with ErrClosed.
func (q *SharedQueue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		panic(ErrClosed)
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// TryPop removes and returns the front item. It never blocks: on an empty
// queue it returns the zero value and false.
func (q *SharedQueue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// Pop removes and returns the front item. The caller must know the queue is
// non-empty; popping an empty queue panics with ErrEmpty. Concurrent
// consumers should use TryPop or Next instead.
func (q *SharedQueue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == 0 {
		panic(ErrEmpty)
	}
	return q.popLocked()
}

// Next blocks until an item is available or the queue is closed. It returns
// false only when the queue is closed and every item has been handed out.
func (q *SharedQueue[T]) Next() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.lenLocked() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.lenLocked() == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// Close marks the producer side as done and wakes every blocked consumer.
// Items already queued are still delivered. Close is idempotent.
func (q *SharedQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *SharedQueue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// IsEmpty reports whether the queue currently holds no items.
func (q *SharedQueue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked() == 0
}

// Len returns the number of queued items.
func (q *SharedQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *SharedQueue[T]) lenLocked() int {
	return len(q.items) - q.head
}

// popLocked takes the front item and releases the slot so large payloads are
// not kept alive by the backing array.
func (q *SharedQueue[T]) popLocked() T {
	var zero T
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Compact once the consumed prefix dominates the backing array.
	if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item
}
