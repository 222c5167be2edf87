package software

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/streamer/gpucore"
)

// Option configures a Device.
type Option func(*Device)

// WithCaps overrides the alignment limits. The default is
// gpucore.DefaultCaps.
func WithCaps(c gpucore.Caps) Option {
	return func(d *Device) {
		d.caps = c
	}
}

// WithGranularity sets the image transfer granularity of the transfer
// queue, in blocks. Graphics and compute queues always use 1x1x1.
func WithGranularity(g gpucore.Extent3D) Option {
	return func(d *Device) {
		d.granularity = g
	}
}

// WithLatency delays the execution of every submission, which keeps
// submissions in flight long enough for clients to overlap with them.
func WithLatency(l time.Duration) Option {
	return func(d *Device) {
		d.latency = l
	}
}

// Device is a CPU emulation of a GPU device.
//
// Device is safe for concurrent use.
type Device struct {
	caps        gpucore.Caps
	granularity gpucore.Extent3D
	latency     time.Duration

	mu          sync.Mutex
	queues      map[gpucore.QueueType]*Queue
	events      []Event
	errs        []error
	submissions uint64
	live        int
	closed      bool
}

// New creates a software device.
func New(opts ...Option) *Device {
	d := &Device{
		caps:        gpucore.DefaultCaps(),
		granularity: gpucore.Extent3D{Width: 1, Height: 1, Depth: 1},
		queues:      make(map[gpucore.QueueType]*Queue),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the backend identifier.
func (d *Device) Name() string {
	return "software"
}

// Caps returns the alignment limits.
func (d *Device) Caps() gpucore.Caps {
	return d.caps
}

// Queue returns the queue of type t, starting its timeline goroutine on
// first use.
func (d *Device) Queue(t gpucore.QueueType) (gpucore.Queue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if q, ok := d.queues[t]; ok {
		return q, nil
	}
	g := gpucore.Extent3D{Width: 1, Height: 1, Depth: 1}
	if t == gpucore.QueueTransfer {
		g = d.granularity
	}
	q := newQueue(d, t, g)
	d.queues[t] = q
	return q, nil
}

// NewCommandList creates a command list for q.
func (d *Device) NewCommandList(q gpucore.Queue) (gpucore.CommandList, error) {
	sq, ok := q.(*Queue)
	if !ok || sq.dev != d {
		return nil, ErrForeignObject
	}
	if err := d.acquire(); err != nil {
		return nil, err
	}
	return &CommandList{dev: d, queue: sq}, nil
}

// NewFence creates a fence.
func (d *Device) NewFence() (gpucore.Fence, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	f := &Fence{dev: d}
	f.cond = sync.NewCond(&f.mu)
	return f, nil
}

// NewStagingBuffer creates a staging buffer of size bytes.
func (d *Device) NewStagingBuffer(size int64) (gpucore.StagingBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("software: invalid staging size %d", size)
	}
	if err := d.acquire(); err != nil {
		return nil, err
	}
	return &StagingBuffer{dev: d, data: make([]byte, size)}, nil
}

// NewBuffer creates a zero-filled destination buffer.
func (d *Device) NewBuffer(size int64) *Buffer {
	return &Buffer{dev: d, data: make([]byte, size)}
}

// NewTexture creates a zero-filled destination texture. Zero mip level
// and array layer counts are treated as 1.
func (d *Device) NewTexture(desc gpucore.TextureDesc) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("software: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	if desc.Format.IsZero() {
		return nil, errors.New("software: texture format not set")
	}
	desc.Depth = max(1, desc.Depth)
	desc.MipLevels = max(1, desc.MipLevels)
	desc.ArrayLayers = max(1, desc.ArrayLayers)

	t := &Texture{dev: d, desc: desc, levels: make([][]byte, desc.MipLevels*desc.ArrayLayers)}
	for layer := range desc.ArrayLayers {
		for mip := range desc.MipLevels {
			t.levels[t.index(mip, layer)] = make([]byte, desc.Format.Size(desc.LevelExtent(mip)))
		}
	}
	return t, nil
}

// Events returns a copy of the execution log.
func (d *Device) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// Submissions returns the number of executed submissions.
func (d *Device) Submissions() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submissions
}

// Live returns the number of fences, command lists and staging buffers
// not yet destroyed.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Err returns every validation failure seen so far, or nil.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(d.errs...)
}

// Close drains and stops every queue. Further object creation fails with
// ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	queues := make([]*Queue, 0, len(d.queues))
	for _, q := range d.queues {
		queues = append(queues, q)
	}
	d.mu.Unlock()

	for _, q := range queues {
		q.stop()
	}
	return nil
}

func (d *Device) acquire() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.live++
	return nil
}

func (d *Device) release() {
	d.mu.Lock()
	d.live--
	d.mu.Unlock()
}

func (d *Device) fail(err error) {
	d.mu.Lock()
	d.errs = append(d.errs, err)
	d.mu.Unlock()
}

func (d *Device) record(e Event) {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
}

// execute runs one submission on the queue goroutine.
func (d *Device) execute(q *Queue, cmds []command) {
	d.mu.Lock()
	d.submissions++
	seq := d.submissions
	d.events = append(d.events, Event{Kind: EventSubmit, Submission: seq, Queue: q.typ})
	d.mu.Unlock()

	for _, cmd := range cmds {
		if err := cmd(q, seq); err != nil {
			d.fail(fmt.Errorf("submission %d: %w", seq, err))
		}
	}
}
