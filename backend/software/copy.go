package software

import (
	"fmt"

	"github.com/gogpu/streamer/gpucore"
)

func (d *Device) copyBuffer(q *Queue, seq uint64, c *gpucore.BufferCopy) error {
	src, ok := c.Src.(*StagingBuffer)
	if !ok || src.dev != d {
		return ErrForeignObject
	}
	dst, ok := c.Dst.(*Buffer)
	if !ok || dst.dev != d {
		return ErrForeignObject
	}

	a := d.caps.CopyAlignment
	switch {
	case c.Size <= 0:
		return fmt.Errorf("%w: empty buffer copy", ErrInvalidCopy)
	case c.SrcOffset%a != 0 || c.DstOffset%a != 0:
		return fmt.Errorf("%w: buffer copy offsets %d->%d not aligned to %d", ErrInvalidCopy, c.SrcOffset, c.DstOffset, a)
	case c.SrcOffset < 0 || c.SrcOffset+c.Size > src.Size():
		return fmt.Errorf("%w: staging range [%d, %d) exceeds %d", ErrInvalidCopy, c.SrcOffset, c.SrcOffset+c.Size, src.Size())
	case c.DstOffset < 0 || c.DstOffset+c.Size > dst.Size():
		return fmt.Errorf("%w: buffer range [%d, %d) exceeds %d", ErrInvalidCopy, c.DstOffset, c.DstOffset+c.Size, dst.Size())
	}

	dst.mu.Lock()
	copy(dst.data[c.DstOffset:c.DstOffset+c.Size], src.data[c.SrcOffset:])
	dst.mu.Unlock()

	d.record(Event{
		Kind:       EventCopyBuffer,
		Submission: seq,
		Queue:      q.typ,
		Buffer:     dst,
		Offset:     c.DstOffset,
		Size:       c.Size,
	})
	return nil
}

func (d *Device) copyTexture(q *Queue, seq uint64, c *gpucore.BufferTextureCopy) error {
	src, ok := c.Src.(*StagingBuffer)
	if !ok || src.dev != d {
		return ErrForeignObject
	}
	tex, ok := c.Dst.(*Texture)
	if !ok || tex.dev != d {
		return ErrForeignObject
	}
	desc := tex.desc
	f := desc.Format

	if c.MipLevel >= desc.MipLevels || c.ArrayLayer >= desc.ArrayLayers {
		return fmt.Errorf("%w: subresource %d/%d out of range", ErrInvalidCopy, c.MipLevel, c.ArrayLayer)
	}
	if c.SrcOffset%d.caps.OffsetAlignment != 0 {
		return fmt.Errorf("%w: texture copy offset %d not aligned to %d", ErrInvalidCopy, c.SrcOffset, d.caps.OffsetAlignment)
	}
	if c.RowPitch%d.caps.RowPitchAlignment != 0 {
		return fmt.Errorf("%w: row pitch %d not aligned to %d", ErrInvalidCopy, c.RowPitch, d.caps.RowPitchAlignment)
	}

	lvl := desc.LevelExtent(c.MipLevel)
	o, s := c.Origin, c.Size
	if s.Width == 0 || s.Height == 0 || s.Depth == 0 {
		return fmt.Errorf("%w: empty texture copy", ErrInvalidCopy)
	}
	if o.X+s.Width > lvl.Width || o.Y+s.Height > lvl.Height || o.Z+s.Depth > lvl.Depth {
		return fmt.Errorf("%w: box %+v+%+v exceeds level %+v", ErrInvalidCopy, o, s, lvl)
	}

	// Block alignment, then granularity, both in blocks.
	block := gpucore.Extent3D{Width: f.BlockWidth, Height: f.BlockHeight, Depth: f.BlockDepth}
	lb := f.Blocks(lvl)
	sb := f.Blocks(s)
	ob := gpucore.Extent3D{Width: o.X / block.Width, Height: o.Y / block.Height, Depth: o.Z / block.Depth}
	g := q.granularity
	for _, ax := range []struct {
		name                       string
		origin, size, level, block uint32
		originB, sizeB, levelB, g  uint32
	}{
		{"x", o.X, s.Width, lvl.Width, block.Width, ob.Width, sb.Width, lb.Width, g.Width},
		{"y", o.Y, s.Height, lvl.Height, block.Height, ob.Height, sb.Height, lb.Height, g.Height},
		{"z", o.Z, s.Depth, lvl.Depth, block.Depth, ob.Depth, sb.Depth, lb.Depth, g.Depth},
	} {
		if ax.origin%ax.block != 0 || (ax.origin+ax.size != ax.level && ax.size%ax.block != 0) {
			return fmt.Errorf("%w: %s range [%d, %d) not block aligned", ErrInvalidCopy, ax.name, ax.origin, ax.origin+ax.size)
		}
		gran := max(1, ax.g)
		if ax.originB%gran != 0 || (ax.originB+ax.sizeB != ax.levelB && ax.sizeB%gran != 0) {
			return fmt.Errorf("%w: %s blocks [%d, %d) violate granularity %d", ErrInvalidCopy, ax.name, ax.originB, ax.originB+ax.sizeB, gran)
		}
	}

	bb := int64(f.BlockBytes)
	rowBytes := int64(sb.Width) * bb
	if c.RowPitch < rowBytes || (sb.Depth > 1 && c.SlicePitch < c.RowPitch*int64(sb.Height)) {
		return fmt.Errorf("%w: pitches %d/%d too small for %+v blocks", ErrInvalidCopy, c.RowPitch, c.SlicePitch, sb)
	}
	end := c.SrcOffset + int64(sb.Depth-1)*c.SlicePitch + int64(sb.Height-1)*c.RowPitch + rowBytes
	if c.SrcOffset < 0 || end > src.Size() {
		return fmt.Errorf("%w: staging range [%d, %d) exceeds %d", ErrInvalidCopy, c.SrcOffset, end, src.Size())
	}

	tex.mu.Lock()
	level := tex.levels[tex.index(c.MipLevel, c.ArrayLayer)]
	for z := range sb.Depth {
		for y := range sb.Height {
			so := c.SrcOffset + int64(z)*c.SlicePitch + int64(y)*c.RowPitch
			do := ((int64(ob.Depth+z)*int64(lb.Height)+int64(ob.Height+y))*int64(lb.Width) + int64(ob.Width)) * bb
			copy(level[do:do+rowBytes], src.data[so:so+rowBytes])
		}
	}
	tex.mu.Unlock()

	d.record(Event{
		Kind:       EventCopyTexture,
		Submission: seq,
		Queue:      q.typ,
		Texture:    tex,
		MipLevel:   c.MipLevel,
		ArrayLayer: c.ArrayLayer,
		Origin:     o,
		Extent:     s,
	})
	return nil
}
