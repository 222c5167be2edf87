package software

import (
	"slices"
	"sync"
	"time"

	"github.com/gogpu/streamer/gpucore"
)

type submission struct {
	cmds  []command
	fence *Fence
	value uint64
}

// Queue executes submissions in order on its own goroutine.
type Queue struct {
	dev         *Device
	typ         gpucore.QueueType
	granularity gpucore.Extent3D

	mu      sync.Mutex
	cond    *sync.Cond
	pending []submission
	busy    bool
	stopped bool
	done    chan struct{}
}

func newQueue(d *Device, t gpucore.QueueType, g gpucore.Extent3D) *Queue {
	q := &Queue{dev: d, typ: t, granularity: g, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Type returns the queue type.
func (q *Queue) Type() gpucore.QueueType {
	return q.typ
}

// Granularity returns the image transfer granularity in blocks.
func (q *Queue) Granularity() gpucore.Extent3D {
	return q.granularity
}

// Submit queues the commands of cl for execution and arms f.
func (q *Queue) Submit(cl gpucore.CommandList, f gpucore.Fence) error {
	c, ok := cl.(*CommandList)
	if !ok || c.dev != q.dev || c.queue != q {
		return ErrForeignObject
	}
	fence, ok := f.(*Fence)
	if !ok || fence.dev != q.dev {
		return ErrForeignObject
	}
	if !c.ended {
		return ErrNotRecording
	}
	c.ended = false

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrClosed
	}
	q.pending = append(q.pending, submission{
		cmds:  slices.Clone(c.cmds),
		fence: fence,
		value: fence.arm(),
	})
	q.cond.Broadcast()
	return nil
}

// WaitIdle blocks until every submission has executed.
func (q *Queue) WaitIdle() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 || q.busy {
		q.cond.Wait()
	}
	return nil
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		s := q.pending[0]
		q.pending = q.pending[1:]
		q.busy = true
		q.mu.Unlock()

		if q.dev.latency > 0 {
			time.Sleep(q.dev.latency)
		}
		q.dev.execute(q, s.cmds)
		s.fence.signal(s.value)

		q.mu.Lock()
		q.busy = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}

// stop lets the goroutine drain pending work and exit.
func (q *Queue) stop() {
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

// Fence is signaled by the queue goroutine once a submission has executed.
type Fence struct {
	dev *Device

	mu       sync.Mutex
	cond     *sync.Cond
	armed    uint64
	signaled uint64
	gone     bool
}

// arm reserves the value the next submission signals.
func (f *Fence) arm() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed++
	return f.armed
}

func (f *Fence) signal(v uint64) {
	f.mu.Lock()
	f.signaled = max(f.signaled, v)
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Wait blocks until the last armed submission has executed.
func (f *Fence) Wait() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.armed
	for f.signaled < target {
		f.cond.Wait()
	}
	return nil
}

// Value returns the last signaled value.
func (f *Fence) Value() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// Destroy releases the fence.
func (f *Fence) Destroy() {
	f.mu.Lock()
	gone := f.gone
	f.gone = true
	f.mu.Unlock()
	if !gone {
		f.dev.release()
	}
}
