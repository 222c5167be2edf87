// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plan

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"testing"
)

// cover drives l from the origin to completion with the given capacities
// (cycled) and returns the chunks in order.
func cover(t *testing.T, l *TextureLayout, caps []int64) []TextureChunk {
	t.Helper()
	var chunks []TextureChunk
	var c Cursor
	for i := 0; ; i++ {
		capacity := caps[i%len(caps)]
		ch, ok := l.Next(c, capacity)
		if !ok {
			t.Fatalf("no progress at %+v with capacity %d", c, capacity)
		}
		if ch.Bytes > capacity {
			t.Fatalf("chunk %+v uses %d bytes, capacity %d", ch, ch.Bytes, capacity)
		}
		if ch.Origin != c {
			t.Fatalf("chunk origin %+v, cursor %+v", ch.Origin, c)
		}
		chunks = append(chunks, ch)
		var done bool
		c, done = l.Advance(c, ch)
		if done {
			return chunks
		}
		if i > 1<<20 {
			t.Fatal("planner does not terminate")
		}
	}
}

func checkTiling(t *testing.T, l *TextureLayout, chunks []TextureChunk) {
	t.Helper()
	e := l.Extent
	seen := make([]int, e.W*e.H*e.D)
	for _, ch := range chunks {
		for z := range ch.Size.D {
			for y := range ch.Size.H {
				for x := range ch.Size.W {
					bx, by, bz := ch.Origin.X+x, ch.Origin.Y+y, ch.Origin.Z+z
					if bx >= e.W || by >= e.H || bz >= e.D {
						t.Fatalf("chunk %+v leaves the region", ch)
					}
					seen[(bz*e.H+by)*e.W+bx]++
				}
			}
		}
	}
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("block %d visited %d times", i, n)
		}
	}
}

func TestTextureWholeRows(t *testing.T) {
	// 256x256 RGBA8: 1 KiB rows, a 64 KiB budget takes 64 rows at a time.
	l := &TextureLayout{BlockBytes: 4, Extent: Box{256, 256, 1}, RowPitchAlignment: 256}
	chunks := cover(t, l, []int64{64 << 10})
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, ch := range chunks {
		want := TextureChunk{
			Origin:     Cursor{0, uint32(i) * 64, 0},
			Size:       Box{256, 64, 1},
			RowPitch:   1024,
			SlicePitch: 64 << 10,
			Bytes:      64 << 10,
		}
		if ch != want {
			t.Errorf("chunk %d = %+v, want %+v", i, ch, want)
		}
	}
}

func TestTextureWholeSlices(t *testing.T) {
	l := &TextureLayout{BlockBytes: 4, Extent: Box{64, 64, 8}, RowPitchAlignment: 256}
	ch, ok := l.Next(Cursor{}, 40<<10)
	if !ok {
		t.Fatal("no progress")
	}
	// 16 KiB slices: two fit in 40 KiB.
	if ch.Size != (Box{64, 64, 2}) || ch.SlicePitch != 16<<10 {
		t.Errorf("chunk = %+v, want two whole slices", ch)
	}
	checkTiling(t, l, cover(t, l, []int64{40 << 10}))
}

func TestTexturePartialRow(t *testing.T) {
	l := &TextureLayout{BlockBytes: 4, Extent: Box{1000, 2, 1}, RowPitchAlignment: 256}
	ch, ok := l.Next(Cursor{}, 3000)
	if !ok {
		t.Fatal("no progress")
	}
	want := TextureChunk{Size: Box{750, 1, 1}, RowPitch: 3072, SlicePitch: 3072, Bytes: 3000}
	if ch != want {
		t.Errorf("chunk = %+v, want %+v", ch, want)
	}
	c, done := l.Advance(Cursor{}, ch)
	if done || c != (Cursor{750, 0, 0}) {
		t.Errorf("Advance = %+v, %v", c, done)
	}
	ch, _ = l.Next(c, 3000)
	if ch.Size.W != 250 {
		t.Errorf("second chunk width = %d, want 250", ch.Size.W)
	}
	if c, done = l.Advance(c, ch); done || c != (Cursor{0, 1, 0}) {
		t.Errorf("Advance = %+v, %v, want next row", c, done)
	}
}

func TestTextureNoProgress(t *testing.T) {
	l := &TextureLayout{BlockBytes: 16, Extent: Box{16, 16, 1}, RowPitchAlignment: 256}
	if _, ok := l.Next(Cursor{}, 15); ok {
		t.Error("Next with less than one block of space made progress")
	}
	if _, ok := l.Next(Cursor{}, 16); !ok {
		t.Error("Next with one block of space made no progress")
	}
}

func TestTextureCompressedRows(t *testing.T) {
	// BC1 64x64 texels: 16x16 blocks of 8 bytes, 128-byte rows pitched to 256.
	l := &TextureLayout{BlockBytes: 8, Extent: Box{16, 16, 1}, RowPitchAlignment: 256}
	ch, _ := l.Next(Cursor{}, 1024)
	if ch.Size != (Box{16, 4, 1}) || ch.Bytes != 896 {
		t.Errorf("chunk = %+v, want 4 block rows in 896 bytes", ch)
	}
}

func TestTextureGranularity(t *testing.T) {
	l := &TextureLayout{
		BlockBytes:        4,
		Extent:            Box{50, 37, 5},
		Granularity:       Box{8, 4, 2},
		RowPitchAlignment: 256,
	}
	if got := l.MinChunkBytes(); got != 256*7+32 {
		t.Fatalf("MinChunkBytes = %d, want %d", got, 256*7+32)
	}
	for _, capacity := range []int64{l.MinChunkBytes(), 3000, 5000, 9000, 20000, 1 << 20} {
		t.Run(fmt.Sprint(capacity), func(t *testing.T) {
			chunks := cover(t, l, []int64{capacity})
			checkTiling(t, l, chunks)
			for _, ch := range chunks {
				o, s := ch.Origin, ch.Size
				if o.X%8 != 0 || o.Y%4 != 0 || o.Z%2 != 0 {
					t.Fatalf("chunk %+v starts off the granularity grid", ch)
				}
				if (o.X+s.W < 50 && s.W%8 != 0) || (o.Y+s.H < 37 && s.H%4 != 0) || (o.Z+s.D < 5 && s.D%2 != 0) {
					t.Fatalf("chunk %+v is not a granularity multiple", ch)
				}
			}
		})
	}
}

func TestTextureTilingRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := range 200 {
		l := &TextureLayout{
			BlockBytes:        []int64{1, 4, 8, 16}[r.IntN(4)],
			Extent:            Box{uint32(1 + r.IntN(70)), uint32(1 + r.IntN(40)), uint32(1 + r.IntN(4))},
			Granularity:       Box{uint32(1 + r.IntN(4)), uint32(1 + r.IntN(4)), uint32(1 + r.IntN(2))},
			RowPitchAlignment: []int64{1, 4, 256}[r.IntN(3)],
		}
		lo := l.MinChunkBytes()
		caps := make([]int64, 5)
		for j := range caps {
			caps[j] = lo + r.Int64N(4*l.SourceSize()+1)
		}
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			checkTiling(t, l, cover(t, l, caps))
		})
	}
}

// unstage copies the rows of a staged chunk back into a tightly packed
// linear image.
func unstage(img, staged []byte, l *TextureLayout, ch TextureChunk) {
	bb := l.BlockBytes
	row := int64(ch.Size.W) * bb
	for z := range ch.Size.D {
		for y := range ch.Size.H {
			s := int64(z)*ch.SlicePitch + int64(y)*ch.RowPitch
			d := ((int64(ch.Origin.Z+z)*int64(l.Extent.H)+int64(ch.Origin.Y+y))*int64(l.Extent.W) + int64(ch.Origin.X)) * bb
			copy(img[d:d+row], staged[s:s+row])
		}
	}
}

func TestStageTextureLinear(t *testing.T) {
	l := &TextureLayout{BlockBytes: 8, Extent: Box{33, 9, 3}, RowPitchAlignment: 64}
	src := make([]byte, l.SourceSize())
	for i := range src {
		src[i] = byte(i * 7)
	}
	img := make([]byte, len(src))
	for _, ch := range cover(t, l, []int64{500, 2000, 137 * 8}) {
		staged := make([]byte, ch.Bytes)
		StageTexture(staged, src, l, ch)
		unstage(img, staged, l, ch)
	}
	if !bytes.Equal(img, src) {
		t.Error("reassembled image differs from source")
	}
}

func TestStageTextureZOrder(t *testing.T) {
	for _, e := range []Box{{8, 8, 1}, {16, 4, 2}, {2, 32, 1}, {32, 32, 1}} {
		t.Run(fmt.Sprintf("%dx%dx%d", e.W, e.H, e.D), func(t *testing.T) {
			l := &TextureLayout{BlockBytes: 8, Extent: e, RowPitchAlignment: 32, ZOrder: true}
			src := make([]byte, l.SourceSize())
			for i := range src {
				src[i] = byte(i*13 + i>>8)
			}
			// Every raster source block belongs at its twiddled index.
			want := make([]byte, len(src))
			slice := int64(e.W) * int64(e.H)
			for z := range e.D {
				for y := range e.H {
					for x := range e.W {
						li := int64(z)*slice + int64(y)*int64(e.W) + int64(x)
						ti := int64(z)*slice + int64(Twiddle(x, y, e.W, e.H))
						copy(want[ti*8:ti*8+8], src[li*8:li*8+8])
					}
				}
			}
			img := make([]byte, len(src))
			for _, ch := range cover(t, l, []int64{100, 300}) {
				staged := make([]byte, ch.Bytes)
				StageTexture(staged, src, l, ch)
				unstage(img, staged, l, ch)
			}
			if !bytes.Equal(img, want) {
				t.Error("staged level is not in twiddled order")
			}
		})
	}
}

func TestStageTextureZOrderMorton(t *testing.T) {
	// Square level in one chunk: block (x, y) lands at Interleave(x, y).
	l := &TextureLayout{BlockBytes: 1, Extent: Box{8, 8, 1}, RowPitchAlignment: 1, ZOrder: true}
	src := make([]byte, 64)
	for i := range src {
		src[i] = byte(i)
	}
	ch, ok := l.Next(Cursor{}, 64)
	if !ok || ch.Bytes != 64 {
		t.Fatalf("Next = %+v, %v; want one 64 byte chunk", ch, ok)
	}
	dst := make([]byte, 64)
	StageTexture(dst, src, l, ch)
	for y := range uint32(8) {
		for x := range uint32(8) {
			if got, want := dst[Interleave(x, y)], src[y*8+x]; got != want {
				t.Errorf("dst[Interleave(%d, %d)] = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestStageTextureZeroFill(t *testing.T) {
	l := &TextureLayout{BlockBytes: 4, Extent: Box{4, 4, 1}, RowPitchAlignment: 4}
	ch, _ := l.Next(Cursor{}, 1<<10)
	staged := bytes.Repeat([]byte{0xAA}, int(ch.Bytes))
	StageTexture(staged, nil, l, ch)
	if !bytes.Equal(staged, make([]byte, ch.Bytes)) {
		t.Error("nil source did not zero-fill the chunk")
	}
}
