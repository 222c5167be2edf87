// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Wait when the tracker is closed before the
// awaited id completes.
var ErrClosed = errors.New("tracker: closed")

// Completion is a monotonic "completed up to id" counter with blocking
// waits. Only the worker publishes; any goroutine may wait.
type Completion struct {
	completed atomic.Uint64

	mu     sync.Mutex
	ch     chan struct{} // closed and replaced on every publish
	closed bool
}

// NewCompletion creates a tracker with nothing completed.
func NewCompletion() *Completion {
	return &Completion{ch: make(chan struct{})}
}

// Completed returns the highest completed id.
func (c *Completion) Completed() uint64 {
	return c.completed.Load()
}

// Done reports whether id has completed.
func (c *Completion) Done(id uint64) bool {
	return c.completed.Load() >= id
}

// Publish marks every id up to and including id as completed and wakes
// waiters. Smaller values than the current one are ignored.
func (c *Completion) Publish(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id <= c.completed.Load() {
		return
	}
	c.completed.Store(id)
	close(c.ch)
	c.ch = make(chan struct{})
}

// Wait blocks until id has completed, ctx is done or the tracker is
// closed.
func (c *Completion) Wait(ctx context.Context, id uint64) error {
	for {
		if c.Done(id) {
			return nil
		}
		c.mu.Lock()
		if c.completed.Load() >= id {
			c.mu.Unlock()
			return nil
		}
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		ch := c.ch
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close releases all current and future waiters whose id has not
// completed.
func (c *Completion) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
	c.ch = make(chan struct{})
}
