// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plan

import "testing"

func TestInterleave(t *testing.T) {
	tests := []struct {
		x, y uint32
		want uint64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{2, 0, 4},
		{3, 3, 15},
		{0xFFFF, 0, 0x55555555},
		{0, 0xFFFF, 0xAAAAAAAA},
		{0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFFFFFFFFFF},
	}
	for _, tt := range tests {
		if got := Interleave(tt.x, tt.y); got != tt.want {
			t.Errorf("Interleave(%d, %d) = %#x, want %#x", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDeinterleaveRoundTrip(t *testing.T) {
	for _, v := range [][2]uint32{{0, 0}, {7, 9}, {1023, 1}, {0x12345678, 0x9ABCDEF0}, {0xFFFFFFFF, 0}} {
		x, y := Deinterleave(Interleave(v[0], v[1]))
		if x != v[0] || y != v[1] {
			t.Errorf("Deinterleave(Interleave(%d, %d)) = (%d, %d)", v[0], v[1], x, y)
		}
	}
}

func TestTwiddleSquare(t *testing.T) {
	// 4x4 grid: the classic Z curve.
	want := [4][4]uint64{
		{0, 1, 4, 5},
		{2, 3, 6, 7},
		{8, 9, 12, 13},
		{10, 11, 14, 15},
	}
	for y := range uint32(4) {
		for x := range uint32(4) {
			if got := Twiddle(x, y, 4, 4); got != want[y][x] {
				t.Errorf("Twiddle(%d, %d, 4, 4) = %d, want %d", x, y, got, want[y][x])
			}
		}
	}
}

func TestTwiddleIsPermutation(t *testing.T) {
	for _, dim := range [][2]uint32{{1, 1}, {1, 8}, {8, 1}, {2, 8}, {16, 4}, {32, 32}, {64, 2}} {
		w, h := dim[0], dim[1]
		seen := make([]bool, w*h)
		for y := range h {
			for x := range w {
				i := Twiddle(x, y, w, h)
				if i >= uint64(w*h) {
					t.Fatalf("Twiddle(%d, %d, %d, %d) = %d out of range", x, y, w, h, i)
				}
				if seen[i] {
					t.Fatalf("%dx%d: index %d visited twice", w, h, i)
				}
				seen[i] = true
			}
		}
	}
}

func TestTwiddleRectangleTiles(t *testing.T) {
	// A 8x2 grid is four 2x2 Z tiles laid out along x.
	if got := Twiddle(2, 0, 8, 2); got != 4 {
		t.Errorf("Twiddle(2, 0, 8, 2) = %d, want 4", got)
	}
	if got := Twiddle(7, 1, 8, 2); got != 15 {
		t.Errorf("Twiddle(7, 1, 8, 2) = %d, want 15", got)
	}
	// And a 2x8 grid stacks them along y.
	if got := Twiddle(1, 2, 2, 8); got != 5 {
		t.Errorf("Twiddle(1, 2, 2, 8) = %d, want 5", got)
	}
}

func TestUntwiddle(t *testing.T) {
	for _, dim := range [][2]uint32{{1, 1}, {8, 8}, {16, 4}, {2, 32}, {64, 2}} {
		w, h := dim[0], dim[1]
		for y := range h {
			for x := range w {
				gx, gy := Untwiddle(Twiddle(x, y, w, h), w, h)
				if gx != x || gy != y {
					t.Fatalf("%dx%d: Untwiddle(Twiddle(%d, %d)) = (%d, %d)", w, h, x, y, gx, gy)
				}
			}
		}
	}
}

func TestIsPow2(t *testing.T) {
	for v, want := range map[uint32]bool{0: false, 1: true, 2: true, 3: false, 64: true, 96: false, 1 << 31: true} {
		if got := IsPow2(v); got != want {
			t.Errorf("IsPow2(%d) = %v, want %v", v, got, want)
		}
	}
}
