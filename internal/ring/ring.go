// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ring implements the fixed ring of resource sets the streaming
// worker records into. Each set bundles a fence, a command list and a
// staging buffer and is reused once its fence has been waited on.
package ring

import (
	"fmt"

	"github.com/gogpu/streamer/gpucore"
	"github.com/gogpu/streamer/internal/plan"
)

// Set is one ring slot.
type Set struct {
	Index   int
	Fence   gpucore.Fence
	Cmd     gpucore.CommandList
	Staging gpucore.StagingBuffer

	// LastRetired is the id of the last request completed by the most
	// recent submission of this set, or 0 if none.
	LastRetired uint64

	used int64
}

// Reset empties the staging allocator.
func (s *Set) Reset() {
	s.used = 0
}

// Used returns the staging bytes reserved since the last Reset.
func (s *Set) Used() int64 {
	return s.used
}

// Remaining returns the bytes still available for an allocation aligned
// to align, rounded down to align.
func (s *Set) Remaining(align int64) int64 {
	off := plan.AlignUp(s.used, align)
	if off >= s.Staging.Size() {
		return 0
	}
	return plan.AlignDown(s.Staging.Size()-off, align)
}

// Reserve allocates size bytes at an offset aligned to align. It reports
// false when the staging buffer cannot hold them.
func (s *Set) Reserve(size, align int64) (int64, bool) {
	off := plan.AlignUp(s.used, align)
	if size <= 0 || off+size > s.Staging.Size() {
		return 0, false
	}
	s.used = off + size
	return off, true
}

// Bytes returns the mapped staging memory for a reservation.
func (s *Set) Bytes(off, size int64) []byte {
	return s.Staging.Bytes()[off : off+size]
}

// Ring is a fixed array of sets plus a rotating index.
type Ring struct {
	sets []Set
	cur  int
}

// New creates n sets with stagingSize bytes of staging each, recording for
// queue q. Partially created sets are destroyed on error.
func New(dev gpucore.Device, q gpucore.Queue, n int, stagingSize int64) (*Ring, error) {
	r := &Ring{sets: make([]Set, n), cur: n - 1}
	for i := range r.sets {
		s := &r.sets[i]
		s.Index = i

		var err error
		if s.Fence, err = dev.NewFence(); err != nil {
			r.Destroy()
			return nil, fmt.Errorf("ring: set %d fence: %w", i, err)
		}
		if s.Cmd, err = dev.NewCommandList(q); err != nil {
			r.Destroy()
			return nil, fmt.Errorf("ring: set %d command list: %w", i, err)
		}
		if s.Staging, err = dev.NewStagingBuffer(stagingSize); err != nil {
			r.Destroy()
			return nil, fmt.Errorf("ring: set %d staging buffer: %w", i, err)
		}
	}
	return r, nil
}

// Len returns the number of sets.
func (r *Ring) Len() int {
	return len(r.sets)
}

// Next advances to the following set and returns it. The first call
// returns set 0.
func (r *Ring) Next() *Set {
	r.cur = (r.cur + 1) % len(r.sets)
	return &r.sets[r.cur]
}

// Current returns the set returned by the last Next.
func (r *Ring) Current() *Set {
	return &r.sets[r.cur]
}

// Others returns every set except the current one, oldest submission
// first.
func (r *Ring) Others() []*Set {
	out := make([]*Set, 0, len(r.sets)-1)
	for i := 1; i < len(r.sets); i++ {
		out = append(out, &r.sets[(r.cur+i)%len(r.sets)])
	}
	return out
}

// Destroy releases every backend object. The caller must make sure the
// GPU no longer uses them.
func (r *Ring) Destroy() {
	for i := range r.sets {
		s := &r.sets[i]
		if s.Staging != nil {
			s.Staging.Destroy()
			s.Staging = nil
		}
		if s.Cmd != nil {
			s.Cmd.Destroy()
			s.Cmd = nil
		}
		if s.Fence != nil {
			s.Fence.Destroy()
			s.Fence = nil
		}
	}
}
