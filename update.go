package streamer

import "github.com/gogpu/streamer/gpucore"

// Token identifies an enqueued update. Tokens of one loader start at 1
// and increase by one per update.
type Token uint64

// Update is an upload request: a [BufferUpdate] or a [TextureUpdate].
// Updates are copied on enqueue; the Data slice is read by the worker
// and must not be modified until the update's token completes.
type Update interface {
	isUpdate()
}

// BufferUpdate uploads bytes into a range of a buffer.
type BufferUpdate struct {
	// Buffer is the destination.
	Buffer gpucore.Buffer

	// Offset is the first destination byte. It must be a multiple of the
	// device copy alignment.
	Offset int64

	// Size is the number of bytes to write. Zero means len(Data).
	Size int64

	// Data is the source. Nil zero-fills the range.
	Data []byte

	// State is the state the buffer is left in. StateUndefined means
	// StateCommon.
	State gpucore.ResourceState
}

// TextureUpdate uploads texel blocks into a box of one texture
// subresource.
type TextureUpdate struct {
	// Texture is the destination.
	Texture gpucore.Texture

	// MipLevel and ArrayLayer select the subresource.
	MipLevel   uint32
	ArrayLayer uint32

	// X, Y, Z is the box origin in texels. It must sit on a block boundary
	// and on the queue's transfer granularity.
	X, Y, Z uint32

	// Width, Height, Depth is the box size in texels. Zero extends the box
	// to the edge of the level.
	Width, Height, Depth uint32

	// Format interprets Data. The zero Format means the texture's format;
	// otherwise its block footprint must match the texture's.
	Format gpucore.Format

	// Data holds the tightly packed blocks of the box in raster order.
	// Z-order formats are swizzled into twiddled order on upload. Nil
	// zero-fills the box.
	Data []byte

	// State is the state the subresource is left in. StateUndefined means
	// StateCommon.
	State gpucore.ResourceState
}

func (BufferUpdate) isUpdate()  {}
func (TextureUpdate) isUpdate() {}

func endState(s gpucore.ResourceState) gpucore.ResourceState {
	if s == gpucore.StateUndefined {
		return gpucore.StateCommon
	}
	return s
}
