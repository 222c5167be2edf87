// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/streamer/gpucore"
)

// Device adapts a hal.Device and its queue to gpucore.Device.
//
// Device is safe for concurrent use.
type Device struct {
	device hal.Device
	raw    hal.Queue
	caps   gpucore.Caps
	queue  *Queue

	// release destroys what Open created. Nil for shared devices.
	release func()

	mu     sync.Mutex
	closed bool
}

// New wraps a hal device owned by the caller. Close does not destroy it.
func New(device hal.Device, queue hal.Queue) *Device {
	d := &Device{
		device: device,
		raw:    queue,
		caps:   gpucore.DefaultCaps(),
	}
	d.queue = &Queue{dev: d, fences: make(map[*Fence]struct{})}
	return d
}

// NewFromProvider shares the device of a host application. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue")
	}
	return New(device, queue), nil
}

// Name returns the backend identifier.
func (d *Device) Name() string {
	return "native"
}

// Caps returns the WebGPU copy limits.
func (d *Device) Caps() gpucore.Caps {
	return d.caps
}

// Queue returns the device queue. WebGPU has a single queue, so every
// type maps to it.
func (d *Device) Queue(gpucore.QueueType) (gpucore.Queue, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.queue, nil
}

// NewCommandList creates a command list for q.
func (d *Device) NewCommandList(q gpucore.Queue) (gpucore.CommandList, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if q != gpucore.Queue(d.queue) {
		return nil, ErrForeignObject
	}
	return &CommandList{dev: d}, nil
}

// NewFence creates a fence with no pending submission.
func (d *Device) NewFence() (gpucore.Fence, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	raw, err := d.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("native: create fence: %w", err)
	}
	return &Fence{dev: d, raw: raw}, nil
}

// NewStagingBuffer creates a copy source buffer and its host shadow.
func (d *Device) NewStagingBuffer(size int64) (gpucore.StagingBuffer, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("native: staging size %d", size)
	}
	// WriteBuffer moves multiples of 4 bytes.
	padded := alignUp(size, 4)
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "streamer_staging",
		Size:  uint64(padded),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	return &StagingBuffer{dev: d, raw: raw, shadow: make([]byte, padded), size: size}, nil
}

// NewBuffer creates a device buffer usable as a copy destination in
// addition to usage.
func (d *Device) NewBuffer(size int64, usage gputypes.BufferUsage) (*Buffer, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "streamer_buffer",
		Size:  uint64(alignUp(size, 4)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer: %w", err)
	}
	return &Buffer{dev: d, raw: raw, size: size, owned: true}, nil
}

// WrapBuffer returns a copy destination for a buffer owned by the caller.
// The buffer must have been created with BufferUsageCopyDst.
func (d *Device) WrapBuffer(raw hal.Buffer, size int64) *Buffer {
	return &Buffer{dev: d, raw: raw, size: size}
}

// NewTexture creates a device texture usable as a copy destination in
// addition to usage. The format must have a WebGPU counterpart.
func (d *Device) NewTexture(desc gpucore.TextureDesc, usage gputypes.TextureUsage) (*Texture, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	var undefined gputypes.TextureFormat
	if desc.Format.GPUFormat() == undefined {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, desc.Format)
	}
	desc = normalize(desc)

	dim := gputypes.TextureDimension2D
	layers := desc.ArrayLayers
	if desc.Depth > 1 {
		dim = gputypes.TextureDimension3D
		layers = desc.Depth
	}
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: "streamer_texture",
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: desc.MipLevels,
		SampleCount:   1,
		Dimension:     dim,
		Format:        desc.Format.GPUFormat(),
		Usage:         usage | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture: %w", err)
	}
	return &Texture{dev: d, raw: raw, desc: desc, owned: true}, nil
}

// WrapTexture returns a copy destination for a texture owned by the
// caller. desc must match the texture.
func (d *Device) WrapTexture(raw hal.Texture, desc gpucore.TextureDesc) *Texture {
	return &Texture{dev: d, raw: raw, desc: normalize(desc)}
}

// Close waits for submitted work and releases the device if Open created
// it. Resources created from the device must be destroyed first.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.queue.WaitIdle()
	if d.release != nil {
		d.release()
	}
	return err
}

func (d *Device) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return nil
}

func normalize(desc gpucore.TextureDesc) gpucore.TextureDesc {
	desc.Depth = max(1, desc.Depth)
	desc.MipLevels = max(1, desc.MipLevels)
	desc.ArrayLayers = max(1, desc.ArrayLayers)
	return desc
}

func alignUp(v, a int64) int64 {
	return (v + a - 1) &^ (a - 1)
}
