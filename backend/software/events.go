package software

import "github.com/gogpu/streamer/gpucore"

// EventKind identifies an executed command.
type EventKind uint8

// Event kinds.
const (
	EventSubmit EventKind = iota
	EventBufferBarrier
	EventTextureBarrier
	EventCopyBuffer
	EventCopyTexture
)

var eventNames = [...]string{
	EventSubmit:         "submit",
	EventBufferBarrier:  "buffer_barrier",
	EventTextureBarrier: "texture_barrier",
	EventCopyBuffer:     "copy_buffer",
	EventCopyTexture:    "copy_texture",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one entry of the device execution log.
type Event struct {
	Kind EventKind

	// Submission is the 1-based sequence number of the submission that
	// executed the command.
	Submission uint64
	Queue      gpucore.QueueType

	// Barrier and copy destination.
	Buffer     *Buffer
	Texture    *Texture
	MipLevel   uint32
	ArrayLayer uint32

	// Barrier states.
	Before gpucore.ResourceState
	After  gpucore.ResourceState

	// Buffer copy range.
	Offset int64
	Size   int64

	// Texture copy box in texels.
	Origin gpucore.Origin3D
	Extent gpucore.Extent3D
}
