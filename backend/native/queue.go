// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/streamer/gpucore"
)

// fenceTimeout bounds a single hal wait; Fence.Wait retries until the
// submission completes or the device reports an error.
const fenceTimeout = 5 * time.Second

// Queue submits command lists to the hal queue.
type Queue struct {
	dev *Device

	mu     sync.Mutex
	fences map[*Fence]struct{}
}

// Type returns QueueTransfer. The hal queue accepts every command type.
func (q *Queue) Type() gpucore.QueueType {
	return gpucore.QueueTransfer
}

// Granularity returns 1x1x1: WebGPU places no granularity limit on copies.
func (q *Queue) Granularity() gpucore.Extent3D {
	return gpucore.Extent3D{Width: 1, Height: 1, Depth: 1}
}

// Submit flushes the staging ranges cl reads, submits its command buffer
// and arms f with the next fence value.
func (q *Queue) Submit(cl gpucore.CommandList, f gpucore.Fence) error {
	c, ok := cl.(*CommandList)
	if !ok || c.dev != q.dev {
		return ErrForeignObject
	}
	fence, ok := f.(*Fence)
	if !ok || fence.dev != q.dev {
		return ErrForeignObject
	}
	if c.recording || c.cmdBuf == nil {
		return ErrNotRecording
	}
	if err := q.dev.check(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for s, r := range c.reads {
		s.flush(r.lo, r.hi)
	}
	v := fence.submitted.Load() + 1
	if err := q.dev.raw.Submit([]hal.CommandBuffer{c.cmdBuf}, fence.raw, v); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	fence.submitted.Store(v)
	q.fences[fence] = struct{}{}
	return nil
}

// WaitIdle waits for the last submission of every fence used with q.
func (q *Queue) WaitIdle() error {
	q.mu.Lock()
	fences := make([]*Fence, 0, len(q.fences))
	for f := range q.fences {
		fences = append(fences, f)
	}
	q.mu.Unlock()

	for _, f := range fences {
		if err := f.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) forget(f *Fence) {
	q.mu.Lock()
	delete(q.fences, f)
	q.mu.Unlock()
}

// Fence is a hal timeline fence. Each submission signals the next value.
type Fence struct {
	dev       *Device
	raw       hal.Fence
	submitted atomic.Uint64
	gone      bool
}

// Wait blocks until the most recent submission signaling f has completed.
func (f *Fence) Wait() error {
	v := f.submitted.Load()
	if v == 0 {
		return nil
	}
	for {
		ok, err := f.dev.device.Wait(f.raw, v, fenceTimeout)
		if err != nil {
			return fmt.Errorf("native: wait fence %d: %w", v, err)
		}
		if ok {
			return nil
		}
	}
}

// Destroy releases the fence.
func (f *Fence) Destroy() {
	if f.gone {
		return
	}
	f.gone = true
	f.dev.queue.forget(f)
	f.dev.device.DestroyFence(f.raw)
}
