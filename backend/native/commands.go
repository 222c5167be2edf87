// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/streamer/gpucore"
)

const encoderLabel = "streamer_upload"

// span is a byte range of a staging buffer read by a command list.
type span struct {
	lo, hi int64
}

// CommandList records into a hal command encoder. A new encoder is created
// by every Begin.
type CommandList struct {
	dev    *Device
	enc    hal.CommandEncoder
	cmdBuf hal.CommandBuffer
	reads  map[*StagingBuffer]span
	err    error

	recording bool
}

// Begin frees the previous command buffer and starts recording.
func (c *CommandList) Begin() error {
	if err := c.dev.check(); err != nil {
		return err
	}
	c.reset()
	enc, err := c.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: encoderLabel,
	})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(encoderLabel); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	c.enc = enc
	c.err = nil
	if c.reads == nil {
		c.reads = make(map[*StagingBuffer]span)
	}
	clear(c.reads)
	c.recording = true
	return nil
}

func (c *CommandList) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// read marks [off, off+n) of s as read by this command list.
func (c *CommandList) read(s *StagingBuffer, off, n int64) {
	r, ok := c.reads[s]
	if !ok {
		r = span{lo: off, hi: off + n}
	}
	r.lo = min(r.lo, off)
	r.hi = max(r.hi, off+n)
	c.reads[s] = r
}

func (c *CommandList) staging(b gpucore.StagingBuffer) (*StagingBuffer, bool) {
	s, ok := b.(*StagingBuffer)
	if !ok || s.dev != c.dev {
		c.fail(ErrForeignObject)
		return nil, false
	}
	return s, true
}

// BufferBarriers validates the buffers. WebGPU orders buffer copies and
// their later uses without explicit barriers.
func (c *CommandList) BufferBarriers(barriers []gpucore.BufferBarrier) {
	if !c.recording {
		c.fail(ErrNotRecording)
		return
	}
	for _, b := range barriers {
		if buf, ok := b.Buffer.(*Buffer); !ok || buf.dev != c.dev {
			c.fail(ErrForeignObject)
		}
	}
}

// TextureBarriers records texture usage transitions of single
// subresources. Volumes have one layer, so only the mip level selects
// their range.
func (c *CommandList) TextureBarriers(barriers []gpucore.TextureBarrier) {
	if !c.recording {
		c.fail(ErrNotRecording)
		return
	}
	out := make([]hal.TextureBarrier, 0, len(barriers))
	for _, b := range barriers {
		tex, ok := b.Texture.(*Texture)
		if !ok || tex.dev != c.dev {
			c.fail(ErrForeignObject)
			continue
		}
		out = append(out, hal.TextureBarrier{
			Texture: tex.raw,
			Range:   tex.subresource(b.MipLevel, b.ArrayLayer),
			Usage: hal.TextureUsageTransition{
				OldUsage: textureUsage(b.Before),
				NewUsage: textureUsage(b.After),
			},
		})
	}
	if len(out) > 0 {
		c.enc.TransitionTextures(out)
	}
}

// CopyBuffer records a staging-to-buffer copy.
func (c *CommandList) CopyBuffer(cp *gpucore.BufferCopy) {
	if !c.recording {
		c.fail(ErrNotRecording)
		return
	}
	src, ok := c.staging(cp.Src)
	if !ok {
		return
	}
	dst, ok := cp.Dst.(*Buffer)
	if !ok || dst.dev != c.dev {
		c.fail(ErrForeignObject)
		return
	}
	c.enc.CopyBufferToBuffer(src.raw, dst.raw, []hal.BufferCopy{{
		SrcOffset: uint64(cp.SrcOffset),
		DstOffset: uint64(cp.DstOffset),
		Size:      uint64(cp.Size),
	}})
	c.read(src, cp.SrcOffset, cp.Size)
}

// CopyBufferToTexture records a staging-to-texture copy. The array layer
// of 2D textures and the depth of volumes both map to the z origin.
func (c *CommandList) CopyBufferToTexture(cp *gpucore.BufferTextureCopy) {
	if !c.recording {
		c.fail(ErrNotRecording)
		return
	}
	src, ok := c.staging(cp.Src)
	if !ok {
		return
	}
	dst, ok := cp.Dst.(*Texture)
	if !ok || dst.dev != c.dev {
		c.fail(ErrForeignObject)
		return
	}

	blocks := dst.desc.Format.Blocks(cp.Size)
	rowBytes := int64(blocks.Width) * int64(dst.desc.Format.BlockBytes)
	rowsPerImage := blocks.Height
	if cp.RowPitch > 0 && cp.SlicePitch > 0 {
		rowsPerImage = uint32(cp.SlicePitch / cp.RowPitch)
	}
	c.enc.CopyBufferToTexture(src.raw, dst.raw, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       uint64(cp.SrcOffset),
			BytesPerRow:  uint32(cp.RowPitch),
			RowsPerImage: rowsPerImage,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  dst.raw,
			MipLevel: cp.MipLevel,
			Origin:   hal.Origin3D{X: cp.Origin.X, Y: cp.Origin.Y, Z: cp.Origin.Z + cp.ArrayLayer},
		},
		Size: hal.Extent3D{
			Width:              cp.Size.Width,
			Height:             cp.Size.Height,
			DepthOrArrayLayers: max(1, cp.Size.Depth),
		},
	}})

	n := cp.SlicePitch*int64(max(1, blocks.Depth)-1) + cp.RowPitch*int64(max(1, blocks.Height)-1) + rowBytes
	c.read(src, cp.SrcOffset, n)
}

// End finishes recording. It reports the first invalid command recorded
// since Begin.
func (c *CommandList) End() error {
	if !c.recording {
		return ErrNotRecording
	}
	c.recording = false
	if c.err != nil {
		c.enc.DiscardEncoding()
		return c.err
	}
	cmdBuf, err := c.enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	c.cmdBuf = cmdBuf
	return nil
}

// Destroy releases the command list.
func (c *CommandList) Destroy() {
	c.reset()
	c.reads = nil
}

func (c *CommandList) reset() {
	if c.recording {
		c.enc.DiscardEncoding()
		c.recording = false
	}
	if c.cmdBuf != nil {
		c.dev.device.FreeCommandBuffer(c.cmdBuf)
		c.cmdBuf = nil
	}
}

// textureUsage maps a resource state to the WebGPU usage hal derives the
// image layout from.
func textureUsage(s gpucore.ResourceState) gputypes.TextureUsage {
	switch s {
	case gpucore.StateCopyDest:
		return gputypes.TextureUsageCopyDst
	case gpucore.StateCopySource:
		return gputypes.TextureUsageCopySrc
	case gpucore.StateShaderResource:
		return gputypes.TextureUsageTextureBinding
	case gpucore.StateUnorderedAccess:
		return gputypes.TextureUsageStorageBinding
	case gpucore.StateRenderTarget:
		return gputypes.TextureUsageRenderAttachment
	}
	return 0
}
