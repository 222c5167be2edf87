// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package plan

// Cursor is a block position inside the region of a texture request.
type Cursor struct {
	X, Y, Z uint32
}

// Box is an extent in blocks.
type Box struct {
	W, H, D uint32
}

// TextureLayout describes the block grid of a texture request and the
// constraints the staging layout must honour.
type TextureLayout struct {
	// BlockBytes is the size of one block.
	BlockBytes int64

	// Extent is the request region in blocks.
	Extent Box

	// Granularity is the queue's image transfer granularity in blocks.
	// Zero components are treated as 1.
	Granularity Box

	// RowPitchAlignment is the required alignment of staging row pitches.
	RowPitchAlignment int64

	// ZOrder selects twiddled destination addressing: the block at raster
	// position (x, y) of the source lands at Twiddle(x, y) of the level.
	// Extent.W and Extent.H must then be powers of two.
	ZOrder bool
}

// TextureChunk is one buffer-to-image copy.
type TextureChunk struct {
	// Origin is the first block, relative to the request region.
	Origin Cursor

	// Size is the copied box in blocks.
	Size Box

	// RowPitch and SlicePitch are the staging distances between block
	// rows and depth slices.
	RowPitch   int64
	SlicePitch int64

	// Bytes is the staging space the chunk occupies. The last row is not
	// padded to RowPitch.
	Bytes int64
}

func (l *TextureLayout) granularity() (gx, gy, gz uint32) {
	return max(1, l.Granularity.W), max(1, l.Granularity.H), max(1, l.Granularity.D)
}

// SourceSize returns the size of the tightly packed source data.
func (l *TextureLayout) SourceSize() int64 {
	return int64(l.Extent.W) * int64(l.Extent.H) * int64(l.Extent.D) * l.BlockBytes
}

// MinChunkBytes returns the staging capacity that guarantees Next makes
// progress from any cursor.
func (l *TextureLayout) MinChunkBytes() int64 {
	gx, gy, gz := l.granularity()
	u := int64(min(gx, l.Extent.W)) * l.BlockBytes
	rows := int64(min(gy, l.Extent.H)) * int64(min(gz, l.Extent.D))
	return AlignUp(u, l.RowPitchAlignment)*(rows-1) + u
}

// Next returns the largest chunk starting at c that fits in capacity
// staging bytes. Whole depth slices are preferred when c sits on a slice
// boundary, then whole rows when c sits on a row boundary, then a partial
// row. It reports false when not even one transfer unit fits.
func (l *TextureLayout) Next(c Cursor, capacity int64) (TextureChunk, bool) {
	w, h, d := l.Extent.W, l.Extent.H, l.Extent.D
	gx, gy, gz := l.granularity()
	bb := l.BlockBytes
	rowBytes := int64(w) * bb
	rowPitch := AlignUp(rowBytes, l.RowPitchAlignment)
	slicePitch := rowPitch * int64(h)

	if c.X == 0 && c.Y == 0 {
		tail := rowPitch*int64(h-1) + rowBytes
		if capacity >= tail {
			n := uint32(min((capacity-tail)/slicePitch+1, int64(d-c.Z)))
			if c.Z+n < d {
				n -= n % gz
			}
			if n > 0 {
				return l.chunk(c, Box{w, h, n}, rowPitch, slicePitch), true
			}
		}
	}

	// Rows and partial rows span a slab of gz slices (fewer at the end).
	t := min(gz, d-c.Z)
	if c.X == 0 {
		if n := capacity + rowPitch - rowBytes; n > 0 {
			rows := uint32(min(n/(rowPitch*int64(t)), int64(h-c.Y)))
			if c.Y+rows < h {
				rows -= rows % gy
			}
			if rows > 0 {
				return l.chunk(c, Box{w, rows, t}, rowPitch, rowPitch*int64(rows)), true
			}
		}
	}

	band := min(gy, h-c.Y)
	n := l.maxRowBytes(capacity, int64(band)*int64(t))
	blocks := uint32(min(n/bb, int64(w-c.X)))
	if c.X+blocks < w {
		blocks -= blocks % gx
	}
	if blocks == 0 {
		return TextureChunk{}, false
	}
	pitch := AlignUp(int64(blocks)*bb, l.RowPitchAlignment)
	return l.chunk(c, Box{blocks, band, t}, pitch, pitch*int64(band)), true
}

// maxRowBytes returns the widest row n such that rows rows of pitch
// AlignUp(n) fit in capacity, with the last row unpadded.
func (l *TextureLayout) maxRowBytes(capacity, rows int64) int64 {
	if rows <= 1 {
		return capacity
	}
	// min(p, capacity-p*(rows-1)) peaks at p = capacity/rows.
	p := AlignDown(capacity/rows, l.RowPitchAlignment)
	best := int64(0)
	for _, q := range [2]int64{p, p + l.RowPitchAlignment} {
		if v := min(q, capacity-q*(rows-1)); v > best {
			best = v
		}
	}
	return best
}

func (l *TextureLayout) chunk(c Cursor, size Box, rowPitch, slicePitch int64) TextureChunk {
	return TextureChunk{
		Origin:     c,
		Size:       size,
		RowPitch:   rowPitch,
		SlicePitch: slicePitch,
		Bytes:      slicePitch*int64(size.D-1) + rowPitch*int64(size.H-1) + int64(size.W)*l.BlockBytes,
	}
}

// Advance moves c past ch in raster (z, y, x) order. It reports true when
// the cursor wraps back to the origin, i.e. the whole region was covered.
func (l *TextureLayout) Advance(c Cursor, ch TextureChunk) (Cursor, bool) {
	c.X += ch.Size.W
	if c.X >= l.Extent.W {
		c.X = 0
		c.Y += ch.Size.H
	}
	if c.Y >= l.Extent.H {
		c.Y = 0
		c.Z += ch.Size.D
	}
	if c.Z >= l.Extent.D {
		return Cursor{}, true
	}
	return c, false
}

// StageTexture writes the blocks of ch from src into dst using the chunk's
// row and slice pitches. src is the tightly packed source of the whole
// region in raster block order; nil zero-fills. For ZOrder layouts each
// destination cell k of a slice receives the source block whose twiddled
// index is k.
func StageTexture(dst, src []byte, l *TextureLayout, ch TextureChunk) {
	bb := l.BlockBytes
	rowBytes := int64(ch.Size.W) * bb
	srcRow := int64(l.Extent.W) * bb
	srcSlice := srcRow * int64(l.Extent.H)

	for z := range ch.Size.D {
		sz := int64(ch.Origin.Z+z) * srcSlice
		for y := range ch.Size.H {
			row := dst[int64(z)*ch.SlicePitch+int64(y)*ch.RowPitch:][:rowBytes]
			switch {
			case src == nil:
				clear(row)
			case l.ZOrder:
				for x := range ch.Size.W {
					k := uint64(ch.Origin.Y+y)*uint64(l.Extent.W) + uint64(ch.Origin.X+x)
					sx, sy := Untwiddle(k, l.Extent.W, l.Extent.H)
					i := int64(sy)*int64(l.Extent.W) + int64(sx)
					copy(row[int64(x)*bb:][:bb], src[sz+i*bb:][:bb])
				}
			default:
				s := sz + int64(ch.Origin.Y+y)*srcRow + int64(ch.Origin.X)*bb
				copy(row, src[s:s+rowBytes])
			}
		}
	}
}
