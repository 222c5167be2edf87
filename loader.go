// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package streamer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/gogpu/streamer/gpucore"
	"github.com/gogpu/streamer/internal/plan"
	"github.com/gogpu/streamer/internal/ring"
	"github.com/gogpu/streamer/internal/tracker"
)

// pending is a queued request. prog is created by the worker when it
// first touches the request and survives across iterations.
type pending struct {
	id     uint64
	update Update
	tex    *texturePlan
	prog   *progress
}

// progress is the resumable cursor of a request.
type progress struct {
	offset int64       // buffers: bytes copied
	cursor plan.Cursor // textures: next block
	chunks int
}

// Loader streams updates to one device on a background goroutine.
//
// All methods are safe for concurrent use.
type Loader struct {
	dev   gpucore.Device
	caps  gpucore.Caps
	queue gpucore.Queue
	opts  options

	ring       *ring.Ring // owned by the worker
	requests   *tracker.Queue[*pending]
	completion *tracker.Completion
	stats      counters

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

type counters struct {
	iterations  atomic.Uint64
	submissions atomic.Uint64
	chunks      atomic.Uint64
	bytes       atomic.Uint64
}

// Stats is a snapshot of loader activity.
type Stats struct {
	// Iterations counts worker iterations, including idle ones.
	Iterations uint64
	// Submissions counts submitted resource sets.
	Submissions uint64
	// Chunks counts recorded copy commands.
	Chunks uint64
	// BytesStaged counts bytes written to staging memory.
	BytesStaged uint64
	// Submitted is the last issued token.
	Submitted Token
	// Completed is the last completed token.
	Completed Token
}

// New creates a loader on dev and starts its worker.
func New(dev gpucore.Device, opts ...Option) (*Loader, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidConfig)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	caps := dev.Caps()
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if minimum := max(caps.OffsetAlignment, caps.RowPitchAlignment); o.stagingSize < minimum {
		return nil, fmt.Errorf("%w: staging size %d below alignment %d", ErrInvalidConfig, o.stagingSize, minimum)
	}

	q, err := dev.Queue(o.queue)
	if err != nil {
		return nil, fmt.Errorf("streamer: %s queue: %w", o.queue, err)
	}
	r, err := ring.New(dev, q, o.ringSize, o.stagingSize)
	if err != nil {
		return nil, fmt.Errorf("streamer: %w", err)
	}

	l := &Loader{
		dev:        dev,
		caps:       caps,
		queue:      q,
		opts:       o,
		ring:       r,
		requests:   tracker.NewQueue[*pending](),
		completion: tracker.NewCompletion(),
		done:       make(chan struct{}),
	}
	l.logger().Info("streamer: loader started",
		"backend", dev.Name(),
		"queue", o.queue.String(),
		"ring", o.ringSize,
		"staging", humanize.IBytes(uint64(o.stagingSize)))

	go l.run()
	return l, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.opts.logger != nil {
		return l.opts.logger
	}
	return Logger()
}

// Close stops the worker after its current iteration, waits for the queue
// to go idle and releases the resource sets. Requests that were not
// fully submitted are abandoned; their waiters return ErrClosed.
func (l *Loader) Close() error {
	l.closeOnce.Do(func() {
		l.requests.Stop()
		<-l.done
		if err := l.queue.WaitIdle(); err != nil {
			l.closeErr = fmt.Errorf("streamer: wait idle: %w", err)
			l.logger().Warn("streamer: queue did not go idle", "err", err)
		}
		l.ring.Destroy()
		l.completion.Close()

		s := l.Stats()
		l.logger().Info("streamer: loader stopped",
			"submitted", s.Submitted,
			"completed", s.Completed,
			"abandoned", l.requests.Len(),
			"staged", humanize.IBytes(s.BytesStaged))
	})
	return l.closeErr
}

// Enqueue queues u and returns its token. It panics if u violates the
// update contract or the loader is closed.
func (l *Loader) Enqueue(u Update) Token {
	p := &pending{}
	switch u := u.(type) {
	case BufferUpdate:
		l.checkBuffer(&u)
		p.update = u
	case TextureUpdate:
		p.tex = l.checkTexture(&u)
		p.update = u
	default:
		panic(fmt.Sprintf("streamer: unknown update type %T", u))
	}

	id, ok := l.requests.Push(func(id uint64) *pending {
		p.id = id
		return p
	})
	if !ok {
		panic(ErrClosed)
	}
	return Token(id)
}

// EnqueueBufferUpdate queues a buffer update.
func (l *Loader) EnqueueBufferUpdate(u BufferUpdate) Token {
	return l.Enqueue(u)
}

// EnqueueTextureUpdate queues a texture update.
func (l *Loader) EnqueueTextureUpdate(u TextureUpdate) Token {
	return l.Enqueue(u)
}

// EnqueueTextureLevels queues one whole-level update per element of
// levels, starting at mip 0 of the given array layer. The returned token
// completes once every level has been uploaded.
func (l *Loader) EnqueueTextureLevels(tex gpucore.Texture, layer uint32, levels [][]byte, state gpucore.ResourceState) Token {
	if len(levels) == 0 {
		contract(ErrEmptyUpdate, "no texture levels")
	}
	var t Token
	for mip, data := range levels {
		t = l.Enqueue(TextureUpdate{
			Texture:    tex,
			MipLevel:   uint32(mip),
			ArrayLayer: layer,
			Data:       data,
			State:      state,
		})
	}
	return t
}

// IsTokenCompleted reports whether the update of t and every update
// enqueued before it have completed.
func (l *Loader) IsTokenCompleted(t Token) bool {
	return l.completion.Done(uint64(t))
}

// WaitForToken blocks until t has completed. It returns ErrClosed if the
// loader is closed first.
func (l *Loader) WaitForToken(t Token) error {
	return l.WaitForTokenContext(context.Background(), t)
}

// WaitForTokenContext is like WaitForToken but returns ctx.Err() when ctx
// is done first.
func (l *Loader) WaitForTokenContext(ctx context.Context, t Token) error {
	return waitErr(l.completion.Wait(ctx, uint64(t)))
}

// IsBatchCompleted reports whether every update enqueued before the call
// has completed.
func (l *Loader) IsBatchCompleted() bool {
	return l.completion.Done(l.requests.Submitted())
}

// WaitForBatch blocks until every update enqueued before the call has
// completed. Updates enqueued concurrently with the wait are not awaited.
func (l *Loader) WaitForBatch() error {
	return l.WaitForBatchContext(context.Background())
}

// WaitForBatchContext is like WaitForBatch but returns ctx.Err() when ctx
// is done first.
func (l *Loader) WaitForBatchContext(ctx context.Context) error {
	return waitErr(l.completion.Wait(ctx, l.requests.Submitted()))
}

// Stats returns a snapshot of the loader counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Iterations:  l.stats.iterations.Load(),
		Submissions: l.stats.submissions.Load(),
		Chunks:      l.stats.chunks.Load(),
		BytesStaged: l.stats.bytes.Load(),
		Submitted:   Token(l.requests.Submitted()),
		Completed:   Token(l.completion.Completed()),
	}
}
