// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plan

import "math/bits"

// Interleave returns the Morton (Z-order) code of (x, y): bit i of x lands
// at bit 2i and bit i of y at bit 2i+1.
func Interleave(x, y uint32) uint64 {
	return spread(x) | spread(y)<<1
}

// Deinterleave is the inverse of Interleave.
func Deinterleave(m uint64) (x, y uint32) {
	return compact(m), compact(m >> 1)
}

func spread(v uint32) uint64 {
	x := uint64(v)
	x = (x | x<<16) & 0x0000FFFF0000FFFF
	x = (x | x<<8) & 0x00FF00FF00FF00FF
	x = (x | x<<4) & 0x0F0F0F0F0F0F0F0F
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

func compact(m uint64) uint32 {
	x := m & 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0F0F0F0F0F0F0F0F
	x = (x | x>>4) & 0x00FF00FF00FF00FF
	x = (x | x>>8) & 0x0000FFFF0000FFFF
	x = (x | x>>16) & 0x00000000FFFFFFFF
	return uint32(x)
}

// Twiddle returns the position of block (x, y) in a w×h grid stored in
// twiddled order. w and h must be powers of two. The low log2(min(w, h))
// bits of both coordinates are interleaved; the remaining high bits of the
// longer axis select consecutive square tiles.
func Twiddle(x, y, w, h uint32) uint64 {
	side := min(w, h)
	k := bits.TrailingZeros32(side)
	mask := side - 1
	low := Interleave(x&mask, y&mask)
	var high uint64
	if w > h {
		high = uint64(x >> k)
	} else {
		high = uint64(y >> k)
	}
	return high<<(2*k) | low
}

// Untwiddle is the inverse of Twiddle: it returns the block stored at
// position i of a twiddled w×h grid.
func Untwiddle(i uint64, w, h uint32) (x, y uint32) {
	side := min(w, h)
	k := bits.TrailingZeros32(side)
	x, y = Deinterleave(i & (uint64(1)<<(2*k) - 1))
	high := uint32(i >> (2 * k))
	if w > h {
		x |= high << k
	} else {
		y |= high << k
	}
	return x, y
}

// IsPow2 reports whether v is a power of two.
func IsPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
