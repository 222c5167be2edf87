// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/streamer/gpucore"
)

// StagingBuffer is a copy source buffer written through a host shadow.
type StagingBuffer struct {
	dev    *Device
	raw    hal.Buffer
	shadow []byte
	size   int64
	gone   bool
}

// Bytes returns the host shadow. Submit uploads the parts a command list
// reads.
func (s *StagingBuffer) Bytes() []byte { return s.shadow[:s.size] }

// Size returns the capacity in bytes.
func (s *StagingBuffer) Size() int64 { return s.size }

// Destroy releases the buffer.
func (s *StagingBuffer) Destroy() {
	if s.gone {
		return
	}
	s.gone = true
	s.dev.device.DestroyBuffer(s.raw)
}

// flush uploads shadow[lo:hi], widened to whole 4-byte words.
func (s *StagingBuffer) flush(lo, hi int64) {
	lo &^= 3
	hi = min(alignUp(hi, 4), int64(len(s.shadow)))
	s.dev.raw.WriteBuffer(s.raw, uint64(lo), s.shadow[lo:hi])
}

// Buffer is a device buffer copy destination.
type Buffer struct {
	dev   *Device
	raw   hal.Buffer
	size  int64
	owned bool
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int64 { return b.size }

// Raw returns the hal buffer.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Destroy releases the buffer if the device created it.
func (b *Buffer) Destroy() {
	if b.owned && b.raw != nil {
		b.dev.device.DestroyBuffer(b.raw)
	}
	b.raw = nil
}

// Texture is a device texture copy destination.
type Texture struct {
	dev   *Device
	raw   hal.Texture
	desc  gpucore.TextureDesc
	owned bool
}

// Desc returns the texture description.
func (t *Texture) Desc() gpucore.TextureDesc { return t.desc }

// Raw returns the hal texture.
func (t *Texture) Raw() hal.Texture { return t.raw }

// Destroy releases the texture if the device created it.
func (t *Texture) Destroy() {
	if t.owned && t.raw != nil {
		t.dev.device.DestroyTexture(t.raw)
	}
	t.raw = nil
}

// subresource returns the hal range of one mip level and array layer.
func (t *Texture) subresource(mip, layer uint32) hal.TextureRange {
	if t.desc.Depth > 1 {
		layer = 0
	}
	return hal.TextureRange{
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    mip,
		MipLevelCount:   1,
		BaseArrayLayer:  layer,
		ArrayLayerCount: 1,
	}
}
