// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package streamer

import (
	"fmt"

	"github.com/gogpu/streamer/gpucore"
	"github.com/gogpu/streamer/internal/plan"
	"github.com/gogpu/streamer/internal/ring"
)

// run is the worker loop. Each iteration recycles the next resource set,
// fills it from the head of the queue and submits it.
func (l *Loader) run() {
	defer close(l.done)
	log := l.logger()

	for {
		set := l.ring.Next()
		l.retire(set)
		l.stats.iterations.Add(1)

		if l.requests.Stopped() {
			l.drain()
			return
		}
		if l.requests.Len() == 0 {
			// Nothing to record: let in-flight sets retire so waiters are
			// released, then park until work arrives.
			l.drain()
			if !l.requests.Wait() {
				return
			}
		}

		set.Reset()
		if err := set.Cmd.Begin(); err != nil {
			panic(fmt.Sprintf("streamer: begin recording on set %d: %v", set.Index, err))
		}
		l.fill(set)
		if err := set.Cmd.End(); err != nil {
			panic(fmt.Sprintf("streamer: end recording on set %d: %v", set.Index, err))
		}
		if err := l.queue.Submit(set.Cmd, set.Fence); err != nil {
			panic(fmt.Sprintf("streamer: submit set %d: %v", set.Index, err))
		}
		l.stats.submissions.Add(1)

		log.Debug("streamer: submitted",
			"set", set.Index,
			"staged", set.Used(),
			"retired", set.LastRetired)
	}
}

// retire waits for the previous submission of set and publishes the last
// request it completed.
func (l *Loader) retire(set *ring.Set) {
	if err := set.Fence.Wait(); err != nil {
		panic(fmt.Sprintf("streamer: wait for set %d: %v", set.Index, err))
	}
	if set.LastRetired != 0 {
		l.completion.Publish(set.LastRetired)
		set.LastRetired = 0
	}
}

// drain retires every other set, oldest submission first.
func (l *Loader) drain() {
	for _, s := range l.ring.Others() {
		l.retire(s)
	}
}

// fill records chunks of queued requests into set until the staging
// buffer is exhausted or the queue is empty.
func (l *Loader) fill(set *ring.Set) {
	for {
		p, ok := l.requests.Front()
		if !ok {
			return
		}
		if p.prog == nil {
			p.prog = &progress{}
		}

		var done bool
		switch u := p.update.(type) {
		case BufferUpdate:
			done = l.streamBuffer(set, p.prog, &u)
		case TextureUpdate:
			done = l.streamTexture(set, p.prog, &u, p.tex)
		}
		if !done {
			return
		}
		set.LastRetired = p.id
		l.requests.PopFront()
	}
}

// streamBuffer records as much of u as fits into set and reports whether
// the update is complete.
func (l *Loader) streamBuffer(set *ring.Set, pr *progress, u *BufferUpdate) bool {
	align := l.caps.CopyAlignment
	for pr.offset < u.Size {
		n := plan.BufferChunk(u.Size-pr.offset, set.Remaining(align))
		if n == 0 {
			return false
		}
		off, _ := set.Reserve(n, align)
		if pr.chunks == 0 {
			set.Cmd.BufferBarriers([]gpucore.BufferBarrier{{
				Buffer: u.Buffer,
				Before: gpucore.StateUndefined,
				After:  gpucore.StateCopyDest,
			}})
		}

		plan.StageBuffer(set.Bytes(off, n), u.Data, pr.offset)
		set.Cmd.CopyBuffer(&gpucore.BufferCopy{
			Src:       set.Staging,
			SrcOffset: off,
			Dst:       u.Buffer,
			DstOffset: u.Offset + pr.offset,
			Size:      n,
		})
		l.logger().Debug("streamer: buffer chunk",
			"set", set.Index,
			"offset", pr.offset,
			"size", n,
			"total", u.Size)

		pr.offset += n
		pr.chunks++
		l.stats.chunks.Add(1)
		l.stats.bytes.Add(uint64(n))
	}

	set.Cmd.BufferBarriers([]gpucore.BufferBarrier{{
		Buffer: u.Buffer,
		Before: gpucore.StateCopyDest,
		After:  u.State,
	}})
	return true
}

// streamTexture records as many chunks of u as fit into set and reports
// whether the update is complete.
func (l *Loader) streamTexture(set *ring.Set, pr *progress, u *TextureUpdate, t *texturePlan) bool {
	align := l.textureAlign()
	for {
		ch, ok := t.layout.Next(pr.cursor, set.Remaining(align))
		if !ok {
			return false
		}
		off, _ := set.Reserve(ch.Bytes, align)
		if pr.chunks == 0 {
			set.Cmd.TextureBarriers([]gpucore.TextureBarrier{{
				Texture:    u.Texture,
				MipLevel:   u.MipLevel,
				ArrayLayer: u.ArrayLayer,
				Before:     gpucore.StateUndefined,
				After:      gpucore.StateCopyDest,
			}})
		}

		plan.StageTexture(set.Bytes(off, ch.Bytes), u.Data, &t.layout, ch)
		origin, size := t.texels(ch)
		set.Cmd.CopyBufferToTexture(&gpucore.BufferTextureCopy{
			Src:        set.Staging,
			SrcOffset:  off,
			RowPitch:   ch.RowPitch,
			SlicePitch: ch.SlicePitch,
			Dst:        u.Texture,
			MipLevel:   u.MipLevel,
			ArrayLayer: u.ArrayLayer,
			Origin:     origin,
			Size:       size,
		})
		l.logger().Debug("streamer: texture chunk",
			"set", set.Index,
			"format", t.format.Name,
			"origin", origin,
			"size", size,
			"bytes", ch.Bytes)

		pr.chunks++
		l.stats.chunks.Add(1)
		l.stats.bytes.Add(uint64(ch.Bytes))

		var done bool
		if pr.cursor, done = t.layout.Advance(pr.cursor, ch); done {
			break
		}
	}

	set.Cmd.TextureBarriers([]gpucore.TextureBarrier{{
		Texture:    u.Texture,
		MipLevel:   u.MipLevel,
		ArrayLayer: u.ArrayLayer,
		Before:     gpucore.StateCopyDest,
		After:      u.State,
	}})
	return true
}
