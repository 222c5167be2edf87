package gpucore

import "fmt"

// QueueType selects the submission queue that copy work is recorded for.
type QueueType uint32

// Queue types.
const (
	// QueueGraphics is the general purpose queue.
	QueueGraphics QueueType = iota

	// QueueCompute is the asynchronous compute queue.
	QueueCompute

	// QueueTransfer is the dedicated copy queue. Its image transfer
	// granularity may be coarser than one texel.
	QueueTransfer
)

// String returns the configuration name of the queue type.
func (q QueueType) String() string {
	switch q {
	case QueueGraphics:
		return "graphics"
	case QueueCompute:
		return "compute"
	case QueueTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("QueueType(%d)", uint32(q))
	}
}

// ParseQueueType parses a queue name as produced by [QueueType.String].
func ParseQueueType(s string) (QueueType, error) {
	switch s {
	case "graphics":
		return QueueGraphics, nil
	case "compute":
		return QueueCompute, nil
	case "transfer", "copy":
		return QueueTransfer, nil
	}
	return 0, fmt.Errorf("gpucore: unknown queue type %q", s)
}

// ResourceState is the usage state a buffer or texture subresource is in.
// Barriers move resources between states.
type ResourceState uint32

// Resource states.
const (
	// StateUndefined means the previous contents may be discarded.
	StateUndefined ResourceState = iota

	// StateCommon is the generic state usable by any queue.
	StateCommon

	// StateVertexAndUniform is the state for vertex and uniform reads.
	StateVertexAndUniform

	// StateIndexBuffer is the state for index reads.
	StateIndexBuffer

	// StateIndirectArgument is the state for indirect draw/dispatch arguments.
	StateIndirectArgument

	// StateShaderResource is the state for sampled/read-only shader access.
	StateShaderResource

	// StateUnorderedAccess is the state for storage (read-write) shader access.
	StateUnorderedAccess

	// StateRenderTarget is the state for color attachments.
	StateRenderTarget

	// StateCopySource is the state for copy reads.
	StateCopySource

	// StateCopyDest is the state for copy writes.
	StateCopyDest
)

var stateNames = [...]string{
	StateUndefined:        "undefined",
	StateCommon:           "common",
	StateVertexAndUniform: "vertex_and_uniform",
	StateIndexBuffer:      "index_buffer",
	StateIndirectArgument: "indirect_argument",
	StateShaderResource:   "shader_resource",
	StateUnorderedAccess:  "unordered_access",
	StateRenderTarget:     "render_target",
	StateCopySource:       "copy_source",
	StateCopyDest:         "copy_dest",
}

func (s ResourceState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("ResourceState(%d)", uint32(s))
}

// Origin3D is a position inside a texture level, in texels.
type Origin3D struct {
	X, Y, Z uint32
}

// Extent3D is the size of a texture region, in texels unless stated otherwise.
type Extent3D struct {
	Width, Height, Depth uint32
}

// Caps holds the device limits that shape staging layouts.
// All alignments are in bytes and must be powers of two.
type Caps struct {
	// CopyAlignment is the required alignment of buffer-to-buffer copy
	// offsets.
	CopyAlignment int64

	// RowPitchAlignment is the required alignment of the row pitch
	// (bytes per block row) of buffer-to-texture copies.
	RowPitchAlignment int64

	// OffsetAlignment is the required alignment of the source offset of
	// buffer-to-texture copies.
	OffsetAlignment int64
}

// DefaultCaps returns the limits shared by D3D12, Vulkan and WebGPU
// implementations: 4-byte buffer copies, 256-byte rows and 512-byte
// texture placement.
func DefaultCaps() Caps {
	return Caps{
		CopyAlignment:     4,
		RowPitchAlignment: 256,
		OffsetAlignment:   512,
	}
}

// Validate reports whether all alignments are positive powers of two.
func (c Caps) Validate() error {
	for _, a := range []struct {
		name string
		v    int64
	}{
		{"copy alignment", c.CopyAlignment},
		{"row pitch alignment", c.RowPitchAlignment},
		{"offset alignment", c.OffsetAlignment},
	} {
		if a.v <= 0 || a.v&(a.v-1) != 0 {
			return fmt.Errorf("gpucore: %s %d is not a power of two", a.name, a.v)
		}
	}
	return nil
}

// TextureDesc describes a texture's shape.
type TextureDesc struct {
	Width, Height, Depth uint32
	MipLevels            uint32
	ArrayLayers          uint32
	Format               Format
}

// LevelExtent returns the texel extent of mip level level.
func (d TextureDesc) LevelExtent(level uint32) Extent3D {
	return Extent3D{
		Width:  max(1, d.Width>>level),
		Height: max(1, d.Height>>level),
		Depth:  max(1, d.Depth>>level),
	}
}

// BufferBarrier transitions a whole buffer between states.
type BufferBarrier struct {
	Buffer Buffer
	Before ResourceState
	After  ResourceState
}

// TextureBarrier transitions one subresource of a texture between states.
type TextureBarrier struct {
	Texture    Texture
	MipLevel   uint32
	ArrayLayer uint32
	Before     ResourceState
	After      ResourceState
}

// BufferCopy copies Size bytes from a staging buffer into a buffer.
type BufferCopy struct {
	Src       StagingBuffer
	SrcOffset int64
	Dst       Buffer
	DstOffset int64
	Size      int64
}

// BufferTextureCopy copies a box of texel blocks from a staging buffer into
// one subresource of a texture.
//
// RowPitch is the distance in bytes between consecutive block rows in the
// staging buffer and SlicePitch the distance between consecutive depth
// slices. Origin and Size are in texels; Size may end mid-block only at the
// edge of the mip level.
type BufferTextureCopy struct {
	Src        StagingBuffer
	SrcOffset  int64
	RowPitch   int64
	SlicePitch int64

	Dst        Texture
	MipLevel   uint32
	ArrayLayer uint32
	Origin     Origin3D
	Size       Extent3D
}
