package gpucore

// Device is the graphics backend consumed by the streamer. Implementations
// live in backend/software and backend/native.
//
// Objects created by a Device are used by at most one goroutine at a time,
// except Queue.Submit and Queue.WaitIdle, which must be safe for concurrent
// use.
type Device interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Caps returns the alignment limits. They are immutable for the
	// lifetime of the device.
	Caps() Caps

	// Queue returns the submission queue of the given type. Backends
	// without a dedicated queue may return a shared one.
	Queue(t QueueType) (Queue, error)

	// NewCommandList creates a command-recording context for q.
	NewCommandList(q Queue) (CommandList, error)

	// NewFence creates a fence in the signaled state.
	NewFence() (Fence, error)

	// NewStagingBuffer creates a CPU-writable, GPU-readable buffer of
	// size bytes that stays mapped for its whole lifetime.
	NewStagingBuffer(size int64) (StagingBuffer, error)
}

// Queue submits recorded command lists.
type Queue interface {
	// Type returns the queue type.
	Type() QueueType

	// Granularity returns the minimum image transfer granularity in
	// blocks of the destination format. Copies into an image must start at
	// multiples of it and extend by multiples of it unless they reach the
	// edge of the level. Zero components are treated as 1.
	Granularity() Extent3D

	// Submit submits an ended command list. The fence is signaled once the
	// commands finish executing. The command list and every staging range
	// it references must not be modified until then.
	Submit(cl CommandList, f Fence) error

	// WaitIdle blocks until all submitted work has finished.
	WaitIdle() error
}

// CommandList records copy and barrier commands.
//
// The usage is: Begin, any number of barrier/copy commands, End, then
// Queue.Submit. Begin may be called again once the fence of the previous
// submission has been waited on.
type CommandList interface {
	// Begin discards previously recorded commands and starts recording.
	Begin() error

	// BufferBarriers records buffer state transitions.
	BufferBarriers(b []BufferBarrier)

	// TextureBarriers records texture subresource state transitions.
	TextureBarriers(b []TextureBarrier)

	// CopyBuffer records a staging-to-buffer copy.
	CopyBuffer(c *BufferCopy)

	// CopyBufferToTexture records a staging-to-texture copy.
	CopyBufferToTexture(c *BufferTextureCopy)

	// End finishes recording.
	End() error

	// Destroy releases the command list.
	Destroy()
}

// Fence signals the host when a submission completes.
type Fence interface {
	// Wait blocks until the most recent submission that signals the
	// fence has completed. It returns immediately if there is none.
	Wait() error

	// Destroy releases the fence.
	Destroy()
}

// StagingBuffer is a persistently mapped upload buffer.
type StagingBuffer interface {
	// Bytes returns the mapped memory. The slice stays valid until
	// Destroy.
	Bytes() []byte

	// Size returns the capacity in bytes.
	Size() int64

	// Destroy releases the buffer.
	Destroy()
}

// Buffer is a copy destination buffer, typically not CPU-visible.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() int64
}

// Texture is a copy destination texture, typically not CPU-visible.
type Texture interface {
	// Desc returns the texture description.
	Desc() TextureDesc
}
