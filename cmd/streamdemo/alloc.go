package main

import (
	"fmt"

	"github.com/gogpu/streamer/backend"
	"github.com/gogpu/streamer/backend/software"
	"github.com/gogpu/streamer/gpucore"
)

// allocator creates copy destinations on a backend. Creation is backend
// specific, so the demo keeps one implementation per backend.
type allocator interface {
	newBuffer(size int64) (gpucore.Buffer, error)
	newTexture(desc gpucore.TextureDesc) (gpucore.Texture, error)
	release()
}

// allocators are tried in order by allocatorFor.
var allocators = []func(backend.Backend) (allocator, bool){
	func(b backend.Backend) (allocator, bool) {
		d, ok := b.(*software.Device)
		return softwareAlloc{d}, ok
	},
}

func allocatorFor(b backend.Backend) (allocator, error) {
	for _, f := range allocators {
		if a, ok := f(b); ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no allocator for backend %q", b.Name())
}

type softwareAlloc struct {
	dev *software.Device
}

func (a softwareAlloc) newBuffer(size int64) (gpucore.Buffer, error) {
	return a.dev.NewBuffer(size), nil
}

func (a softwareAlloc) newTexture(desc gpucore.TextureDesc) (gpucore.Texture, error) {
	return a.dev.NewTexture(desc)
}

func (softwareAlloc) release() {}
