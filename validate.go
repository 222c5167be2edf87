package streamer

import (
	"fmt"
	"reflect"

	"github.com/gogpu/streamer/gpucore"
	"github.com/gogpu/streamer/internal/plan"
)

// texturePlan is the derived, immutable part of a texture request.
type texturePlan struct {
	format gpucore.Format
	base   gpucore.Origin3D // texels
	extent gpucore.Extent3D // texels
	layout plan.TextureLayout
}

// texels converts a chunk back to a texel box of the subresource, clipping
// partial edge blocks to the region.
func (t *texturePlan) texels(ch plan.TextureChunk) (gpucore.Origin3D, gpucore.Extent3D) {
	f := t.format
	o := gpucore.Origin3D{
		X: t.base.X + ch.Origin.X*f.BlockWidth,
		Y: t.base.Y + ch.Origin.Y*f.BlockHeight,
		Z: t.base.Z + ch.Origin.Z*f.BlockDepth,
	}
	return o, gpucore.Extent3D{
		Width:  min(ch.Size.W*f.BlockWidth, t.base.X+t.extent.Width-o.X),
		Height: min(ch.Size.H*f.BlockHeight, t.base.Y+t.extent.Height-o.Y),
		Depth:  min(ch.Size.D*f.BlockDepth, t.base.Z+t.extent.Depth-o.Z),
	}
}

// contract panics with a wrapped sentinel when a caller contract is
// violated.
func contract(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{err}, args...)...))
}

// isNil reports whether a resource handle is nil, including typed nil
// pointers stored in the interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// checkBuffer normalizes u and panics if it cannot be streamed.
func (l *Loader) checkBuffer(u *BufferUpdate) {
	if isNil(u.Buffer) {
		contract(ErrNilResource, "buffer update")
	}
	if u.Size == 0 {
		u.Size = int64(len(u.Data))
	}
	if u.Size <= 0 {
		contract(ErrEmptyUpdate, "buffer update of %d bytes", u.Size)
	}
	if u.Offset < 0 || u.Offset%l.caps.CopyAlignment != 0 {
		contract(ErrMisaligned, "buffer offset %d, copy alignment %d", u.Offset, l.caps.CopyAlignment)
	}
	if u.Offset+u.Size > u.Buffer.Size() {
		contract(ErrOutOfRange, "bytes [%d, %d) of a %d byte buffer", u.Offset, u.Offset+u.Size, u.Buffer.Size())
	}
	if u.Data != nil && int64(len(u.Data)) < u.Size {
		contract(ErrShortData, "%d bytes for a %d byte update", len(u.Data), u.Size)
	}
	u.State = endState(u.State)
}

// checkTexture normalizes u, panics if it cannot be streamed and returns
// its plan.
func (l *Loader) checkTexture(u *TextureUpdate) *texturePlan {
	if isNil(u.Texture) {
		contract(ErrNilResource, "texture update")
	}
	desc := u.Texture.Desc()
	f := desc.Format
	if !u.Format.IsZero() {
		if u.Format.BlockWidth != f.BlockWidth || u.Format.BlockHeight != f.BlockHeight ||
			u.Format.BlockDepth != f.BlockDepth || u.Format.BlockBytes != f.BlockBytes {
			contract(ErrMisaligned, "format %s does not share the block layout of %s", u.Format, f)
		}
		f = u.Format
	}
	if f.BlockWidth == 0 || f.BlockHeight == 0 || f.BlockDepth == 0 || f.BlockBytes == 0 {
		contract(ErrMisaligned, "format %s has an empty block", f)
	}
	if u.MipLevel >= max(1, desc.MipLevels) || u.ArrayLayer >= max(1, desc.ArrayLayers) {
		contract(ErrOutOfRange, "subresource mip %d layer %d", u.MipLevel, u.ArrayLayer)
	}

	lvl := desc.LevelExtent(u.MipLevel)
	if u.X >= lvl.Width || u.Y >= lvl.Height || u.Z >= lvl.Depth {
		contract(ErrOutOfRange, "origin (%d, %d, %d) outside level %dx%dx%d", u.X, u.Y, u.Z, lvl.Width, lvl.Height, lvl.Depth)
	}
	if u.Width == 0 {
		u.Width = lvl.Width - u.X
	}
	if u.Height == 0 {
		u.Height = lvl.Height - u.Y
	}
	if u.Depth == 0 {
		u.Depth = lvl.Depth - u.Z
	}
	if u.X+u.Width > lvl.Width || u.Y+u.Height > lvl.Height || u.Z+u.Depth > lvl.Depth {
		contract(ErrOutOfRange, "box %dx%dx%d at (%d, %d, %d) outside level %dx%dx%d",
			u.Width, u.Height, u.Depth, u.X, u.Y, u.Z, lvl.Width, lvl.Height, lvl.Depth)
	}

	g := l.queue.Granularity()
	for _, ax := range []struct {
		name                string
		origin, size, level uint32
		block, granularity  uint32
	}{
		{"x", u.X, u.Width, lvl.Width, f.BlockWidth, g.Width},
		{"y", u.Y, u.Height, lvl.Height, f.BlockHeight, g.Height},
		{"z", u.Z, u.Depth, lvl.Depth, f.BlockDepth, g.Depth},
	} {
		edge := ax.origin+ax.size == ax.level
		if ax.origin%ax.block != 0 || (!edge && ax.size%ax.block != 0) {
			contract(ErrMisaligned, "%s range [%d, %d) not aligned to %s blocks", ax.name, ax.origin, ax.origin+ax.size, f)
		}
		gran := max(1, ax.granularity)
		ob, sb := ax.origin/ax.block, (ax.size+ax.block-1)/ax.block
		if ob%gran != 0 || (!edge && sb%gran != 0) {
			contract(ErrMisaligned, "%s blocks [%d, %d) not aligned to transfer granularity %d", ax.name, ob, ob+sb, gran)
		}
	}

	extent := gpucore.Extent3D{Width: u.Width, Height: u.Height, Depth: u.Depth}
	blocks := f.Blocks(extent)
	t := &texturePlan{
		format: f,
		base:   gpucore.Origin3D{X: u.X, Y: u.Y, Z: u.Z},
		extent: extent,
		layout: plan.TextureLayout{
			BlockBytes:        int64(f.BlockBytes),
			Extent:            plan.Box{W: blocks.Width, H: blocks.Height, D: blocks.Depth},
			Granularity:       plan.Box{W: g.Width, H: g.Height, D: g.Depth},
			RowPitchAlignment: l.caps.RowPitchAlignment,
			ZOrder:            f.ZOrder,
		},
	}

	if f.ZOrder {
		if extent != lvl || u.X != 0 || u.Y != 0 || u.Z != 0 {
			contract(ErrOutOfRange, "%s updates must cover the whole level", f)
		}
		if !plan.IsPow2(blocks.Width) || !plan.IsPow2(blocks.Height) {
			contract(ErrMisaligned, "%s level of %dx%d blocks is not a power of two", f, blocks.Width, blocks.Height)
		}
	}
	if u.Data != nil && int64(len(u.Data)) < t.layout.SourceSize() {
		contract(ErrShortData, "%d bytes for a %d byte update", len(u.Data), t.layout.SourceSize())
	}
	if need := t.layout.MinChunkBytes(); plan.AlignDown(l.opts.stagingSize, l.textureAlign()) < need {
		contract(ErrStagingTooSmall, "texture chunks need %d bytes, staging holds %d", need, l.opts.stagingSize)
	}
	u.Format = f
	u.State = endState(u.State)
	return t
}

// textureAlign is the staging offset alignment of texture chunks.
func (l *Loader) textureAlign() int64 {
	return max(l.caps.OffsetAlignment, l.caps.RowPitchAlignment)
}
