// Package streamer uploads CPU-resident data into GPU buffers and textures
// on a background goroutine.
//
// # Overview
//
// Producers enqueue update requests on a [Loader] and receive a [Token].
// A single worker goroutine drains the request queue, splits every request
// into chunks that fit a fixed-size staging buffer, records the staging
// copies into the next resource set of a small ring and submits it. The
// destination never needs to be CPU-visible, and arbitrarily large
// requests stream through a bounded amount of staging memory.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/streamer"
//		"github.com/gogpu/streamer/backend/software"
//	)
//
//	dev := software.New()
//	defer dev.Close()
//
//	l, err := streamer.New(dev, streamer.WithStagingSize(4<<20))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer l.Close()
//
//	buf := dev.NewBuffer(len(vertices))
//	tok := l.EnqueueBufferUpdate(streamer.BufferUpdate{
//		Buffer: buf,
//		Data:   vertices,
//		State:  gpucore.StateVertexAndUniform,
//	})
//	_ = l.WaitForToken(tok)
//
// # Resource Sets
//
// The loader owns a ring of resource sets, each holding a fence, a command
// list and a staging buffer. Before recording into a set the worker waits
// for the fence of that set's previous submission, so at most ring size
// minus one submissions are in flight. Tokens retired by a submission are
// published once its fence has been reached.
//
// # Ordering
//
// Requests retire in strict FIFO order. A large request at the head of the
// queue delays the requests behind it until it has fully streamed.
// Within a request, chunks are applied in raster (z, y, x) order. Every
// destination receives one transition to the copy destination state before
// its first chunk and one transition to its declared end state after the
// last chunk.
//
// # Textures
//
// Texture updates are planned in blocks of the destination format.
// The planner prefers whole depth slices, then whole block rows, then
// partial rows, and honours the row pitch alignment of the device and the
// image transfer granularity of the queue. Formats stored in twiddled
// (Z-order) block order take raster source blocks and stage each one at
// its Morton position in the level.
//
// # Errors
//
// Staging exhaustion is never an error; work simply continues on the next
// resource set. Caller contract violations (nil resources, empty or
// out-of-range regions) panic at enqueue time, and backend failures
// during streaming panic in the worker.
package streamer
