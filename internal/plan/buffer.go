// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package plan splits buffer and texture uploads into chunks that fit the
// staging space left in the current resource set.
//
// Everything here is pure: planners take a cursor and a capacity and return
// the next chunk, and the stage functions only move bytes between slices.
package plan

// AlignUp rounds v up to a multiple of a (a power of two).
func AlignUp(v, a int64) int64 {
	return (v + a - 1) &^ (a - 1)
}

// AlignDown rounds v down to a multiple of a (a power of two).
func AlignDown(v, a int64) int64 {
	return v &^ (a - 1)
}

// BufferChunk returns how many of the remaining bytes of a buffer request
// fit in capacity staging bytes. Capacity must already be rounded down to
// the copy alignment. Zero means no progress is possible now.
func BufferChunk(remaining, capacity int64) int64 {
	if remaining <= 0 || capacity <= 0 {
		return 0
	}
	return min(remaining, capacity)
}

// StageBuffer fills dst with the len(dst) bytes of src starting at off.
// A nil src zero-fills.
func StageBuffer(dst, src []byte, off int64) {
	if src == nil {
		clear(dst)
		return
	}
	copy(dst, src[off:off+int64(len(dst))])
}
