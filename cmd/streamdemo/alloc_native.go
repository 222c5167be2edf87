//go:build !nogpu

package main

import (
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/streamer/backend"
	"github.com/gogpu/streamer/backend/native"
	"github.com/gogpu/streamer/gpucore"
)

func init() {
	allocators = append(allocators, func(b backend.Backend) (allocator, bool) {
		d, ok := b.(*native.Device)
		return &nativeAlloc{dev: d}, ok
	})
}

// nativeAlloc destroys what it created on release.
type nativeAlloc struct {
	dev *native.Device

	mu       sync.Mutex
	buffers  []*native.Buffer
	textures []*native.Texture
}

func (a *nativeAlloc) newBuffer(size int64) (gpucore.Buffer, error) {
	buf, err := a.dev.NewBuffer(size, gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.buffers = append(a.buffers, buf)
	a.mu.Unlock()
	return buf, nil
}

func (a *nativeAlloc) newTexture(desc gpucore.TextureDesc) (gpucore.Texture, error) {
	tex, err := a.dev.NewTexture(desc, gputypes.TextureUsageTextureBinding)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.textures = append(a.textures, tex)
	a.mu.Unlock()
	return tex, nil
}

func (a *nativeAlloc) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.buffers {
		b.Destroy()
	}
	for _, t := range a.textures {
		t.Destroy()
	}
	a.buffers, a.textures = nil, nil
}
