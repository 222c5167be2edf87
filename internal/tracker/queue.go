// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tracker holds the request queue shared between producers and the
// streaming worker, and the completion counter producers wait on.
package tracker

import "sync"

// Queue is a FIFO of pending requests. Push may be called from any
// goroutine; Front, PopFront and Wait are meant for the single consumer.
//
// Every pushed item gets an id from a monotonically increasing counter
// starting at 1.
type Queue[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []T
	head      int
	submitted uint64
	stopped   bool
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends the item built by mk for the next id and returns that id.
// The id is assigned under the queue lock, so ids and queue order agree.
// Push reports false if the queue was stopped.
func (q *Queue[T]) Push(mk func(id uint64) T) (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return 0, false
	}
	q.submitted++
	q.items = append(q.items, mk(q.submitted))
	q.cond.Signal()
	return q.submitted, true
}

// Submitted returns the id of the last pushed item.
func (q *Queue[T]) Submitted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitted
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Front returns the oldest item without removing it.
func (q *Queue[T]) Front() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.items) {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// PopFront removes the oldest item.
func (q *Queue[T]) PopFront() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.items) {
		return
	}
	var zero T
	q.items[q.head] = zero
	q.head++
	// Compact once the dead prefix dominates.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}

// Wait blocks until the queue is non-empty or stopped. It reports false
// once the queue is stopped.
func (q *Queue[T]) Wait() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.stopped && q.head == len(q.items) {
		q.cond.Wait()
	}
	return !q.stopped
}

// Stopped reports whether Stop was called.
func (q *Queue[T]) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// Stop rejects further pushes and wakes the consumer. Queued items stay
// in place.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
