package software

import (
	"fmt"

	"github.com/gogpu/streamer/gpucore"
)

// command runs on the queue goroutine.
type command func(q *Queue, seq uint64) error

// CommandList records commands as closures replayed by the queue.
type CommandList struct {
	dev   *Device
	queue *Queue
	cmds  []command

	recording bool
	ended     bool
	gone      bool
}

// Begin discards recorded commands and starts recording.
func (c *CommandList) Begin() error {
	if c.gone {
		return ErrClosed
	}
	c.cmds = c.cmds[:0]
	c.recording = true
	c.ended = false
	return nil
}

func (c *CommandList) add(cmd command) {
	if !c.recording {
		c.dev.fail(fmt.Errorf("%w: command recorded outside Begin/End", ErrNotRecording))
		return
	}
	c.cmds = append(c.cmds, cmd)
}

// BufferBarriers records buffer transitions.
func (c *CommandList) BufferBarriers(barriers []gpucore.BufferBarrier) {
	for _, b := range barriers {
		c.add(func(q *Queue, seq uint64) error {
			buf, ok := b.Buffer.(*Buffer)
			if !ok || buf.dev != c.dev {
				return ErrForeignObject
			}
			c.dev.record(Event{
				Kind:       EventBufferBarrier,
				Submission: seq,
				Queue:      q.typ,
				Buffer:     buf,
				Before:     b.Before,
				After:      b.After,
			})
			return nil
		})
	}
}

// TextureBarriers records texture subresource transitions.
func (c *CommandList) TextureBarriers(barriers []gpucore.TextureBarrier) {
	for _, b := range barriers {
		c.add(func(q *Queue, seq uint64) error {
			tex, ok := b.Texture.(*Texture)
			if !ok || tex.dev != c.dev {
				return ErrForeignObject
			}
			if b.MipLevel >= tex.desc.MipLevels || b.ArrayLayer >= tex.desc.ArrayLayers {
				return fmt.Errorf("%w: barrier on subresource %d/%d", ErrInvalidCopy, b.MipLevel, b.ArrayLayer)
			}
			c.dev.record(Event{
				Kind:       EventTextureBarrier,
				Submission: seq,
				Queue:      q.typ,
				Texture:    tex,
				MipLevel:   b.MipLevel,
				ArrayLayer: b.ArrayLayer,
				Before:     b.Before,
				After:      b.After,
			})
			return nil
		})
	}
}

// CopyBuffer records a staging-to-buffer copy.
func (c *CommandList) CopyBuffer(cp *gpucore.BufferCopy) {
	v := *cp
	c.add(func(q *Queue, seq uint64) error {
		return c.dev.copyBuffer(q, seq, &v)
	})
}

// CopyBufferToTexture records a staging-to-texture copy.
func (c *CommandList) CopyBufferToTexture(cp *gpucore.BufferTextureCopy) {
	v := *cp
	c.add(func(q *Queue, seq uint64) error {
		return c.dev.copyTexture(q, seq, &v)
	})
}

// End finishes recording.
func (c *CommandList) End() error {
	if !c.recording {
		return ErrNotRecording
	}
	c.recording = false
	c.ended = true
	return nil
}

// Destroy releases the command list.
func (c *CommandList) Destroy() {
	if c.gone {
		return
	}
	c.gone = true
	c.cmds = nil
	c.dev.release()
}
