// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/streamer/gpucore"
)

// openNoop opens a noop hal device and queue.
func openNoop(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// wrap adapts a hal device for testing and closes it at cleanup.
func wrap(t *testing.T, device hal.Device, queue hal.Queue) *Device {
	t.Helper()
	d := New(device, queue)
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return d
}

// createNoopDevice wraps a noop hal device for testing.
func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	dev, q := openNoop(t)
	return wrap(t, dev, q)
}

// barrierDevice records the texture barriers of every encoder it creates.
type barrierDevice struct {
	hal.Device
	barriers []hal.TextureBarrier
}

func (d *barrierDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &barrierEncoder{CommandEncoder: enc, dev: d}, nil
}

type barrierEncoder struct {
	hal.CommandEncoder
	dev *barrierDevice
}

func (e *barrierEncoder) TransitionTextures(b []hal.TextureBarrier) {
	e.dev.barriers = append(e.dev.barriers, b...)
	e.CommandEncoder.TransitionTextures(b)
}

func TestDeviceQueues(t *testing.T) {
	d := createNoopDevice(t)

	if d.Name() != "native" {
		t.Errorf("Name() = %q", d.Name())
	}
	if d.Caps() != gpucore.DefaultCaps() {
		t.Errorf("Caps() = %+v", d.Caps())
	}
	tq, err := d.Queue(gpucore.QueueTransfer)
	if err != nil {
		t.Fatalf("Queue() error = %v", err)
	}
	gq, _ := d.Queue(gpucore.QueueGraphics)
	if tq != gq {
		t.Error("queue types map to different queues")
	}
	if g := tq.Granularity(); g != (gpucore.Extent3D{Width: 1, Height: 1, Depth: 1}) {
		t.Errorf("Granularity() = %+v", g)
	}
}

func TestSubmitSignalsFence(t *testing.T) {
	d := createNoopDevice(t)
	q, _ := d.Queue(gpucore.QueueTransfer)

	cl, err := d.NewCommandList(q)
	if err != nil {
		t.Fatalf("NewCommandList() error = %v", err)
	}
	defer cl.Destroy()
	f, err := d.NewFence()
	if err != nil {
		t.Fatalf("NewFence() error = %v", err)
	}
	defer f.Destroy()
	if err := f.Wait(); err != nil {
		t.Fatalf("Wait() on new fence error = %v", err)
	}

	staging, err := d.NewStagingBuffer(1 << 10)
	if err != nil {
		t.Fatalf("NewStagingBuffer() error = %v", err)
	}
	defer staging.Destroy()
	buf, err := d.NewBuffer(256, gputypes.BufferUsageStorage)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	defer buf.Destroy()
	tex, err := d.NewTexture(gpucore.TextureDesc{Width: 16, Height: 16, Format: gpucore.FormatRGBA8}, gputypes.TextureUsageTextureBinding)
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}
	defer tex.Destroy()

	for round := range 3 {
		if err := cl.Begin(); err != nil {
			t.Fatalf("round %d: Begin() error = %v", round, err)
		}
		cl.BufferBarriers([]gpucore.BufferBarrier{{Buffer: buf, Before: gpucore.StateUndefined, After: gpucore.StateCopyDest}})
		cl.CopyBuffer(&gpucore.BufferCopy{Src: staging, Dst: buf, Size: 256})
		cl.TextureBarriers([]gpucore.TextureBarrier{{Texture: tex, Before: gpucore.StateUndefined, After: gpucore.StateCopyDest}})
		cl.CopyBufferToTexture(&gpucore.BufferTextureCopy{
			Src: staging, SrcOffset: 512, RowPitch: 256, SlicePitch: 256,
			Dst: tex, Size: gpucore.Extent3D{Width: 16, Height: 1, Depth: 1},
		})
		if err := cl.End(); err != nil {
			t.Fatalf("round %d: End() error = %v", round, err)
		}
		if err := q.Submit(cl, f); err != nil {
			t.Fatalf("round %d: Submit() error = %v", round, err)
		}
		if err := f.Wait(); err != nil {
			t.Fatalf("round %d: Wait() error = %v", round, err)
		}
	}
	if got := f.(*Fence).submitted.Load(); got != 3 {
		t.Errorf("fence value = %d, want 3", got)
	}
	if err := q.WaitIdle(); err != nil {
		t.Errorf("WaitIdle() error = %v", err)
	}
}

func TestCommandListMisuse(t *testing.T) {
	d := createNoopDevice(t)
	q, _ := d.Queue(gpucore.QueueTransfer)
	cl, _ := d.NewCommandList(q)
	defer cl.Destroy()
	f, _ := d.NewFence()
	defer f.Destroy()

	if err := cl.End(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("End() before Begin error = %v, want ErrNotRecording", err)
	}
	if err := q.Submit(cl, f); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Submit() of unrecorded list error = %v, want ErrNotRecording", err)
	}

	other := createNoopDevice(t)
	foreign, _ := other.NewStagingBuffer(64)
	defer foreign.Destroy()
	buf, _ := d.NewBuffer(64, 0)
	defer buf.Destroy()

	if err := cl.Begin(); err != nil {
		t.Fatal(err)
	}
	cl.CopyBuffer(&gpucore.BufferCopy{Src: foreign, Dst: buf, Size: 64})
	if err := cl.End(); !errors.Is(err, ErrForeignObject) {
		t.Errorf("End() after foreign copy error = %v, want ErrForeignObject", err)
	}
}

func TestStagingReadRanges(t *testing.T) {
	d := createNoopDevice(t)
	q, _ := d.Queue(gpucore.QueueTransfer)
	cl, _ := d.NewCommandList(q)
	defer cl.Destroy()
	s, _ := d.NewStagingBuffer(4 << 10)
	defer s.Destroy()
	tex, err := d.NewTexture(gpucore.TextureDesc{Width: 8, Height: 8, Depth: 4, Format: gpucore.FormatR8}, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy()

	if err := cl.Begin(); err != nil {
		t.Fatal(err)
	}
	cl.CopyBufferToTexture(&gpucore.BufferTextureCopy{
		Src: s, SrcOffset: 1024, RowPitch: 256, SlicePitch: 2048,
		Dst: tex, Size: gpucore.Extent3D{Width: 8, Height: 8, Depth: 1},
	})
	buf, _ := d.NewBuffer(64, 0)
	defer buf.Destroy()
	cl.CopyBuffer(&gpucore.BufferCopy{Src: s, SrcOffset: 512, Dst: buf, Size: 64})

	// 7 padded rows plus one unpadded row after 1024, and 512+64.
	want := span{lo: 512, hi: 1024 + 7*256 + 8}
	if got := cl.(*CommandList).reads[s.(*StagingBuffer)]; got != want {
		t.Errorf("read span = %+v, want %+v", got, want)
	}
	if err := cl.End(); err != nil {
		t.Fatal(err)
	}
}

func TestNewTextureUnsupportedFormat(t *testing.T) {
	d := createNoopDevice(t)
	_, err := d.NewTexture(gpucore.TextureDesc{Width: 16, Height: 16, Format: gpucore.FormatBC1}, 0)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewTexture(bc1) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestClosedDevice(t *testing.T) {
	d := createNoopDevice(t)
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := d.NewFence(); !errors.Is(err, ErrClosed) {
		t.Errorf("NewFence() after Close error = %v, want ErrClosed", err)
	}
	if _, err := d.Queue(gpucore.QueueTransfer); !errors.Is(err, ErrClosed) {
		t.Errorf("Queue() after Close error = %v, want ErrClosed", err)
	}
}

func TestTextureBarrierRange(t *testing.T) {
	raw, queue := openNoop(t)
	rec := &barrierDevice{Device: raw}
	d := wrap(t, rec, queue)

	arr, err := d.NewTexture(gpucore.TextureDesc{Width: 16, Height: 16, MipLevels: 3, ArrayLayers: 4, Format: gpucore.FormatRGBA8}, 0)
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}
	vol, err := d.NewTexture(gpucore.TextureDesc{Width: 8, Height: 8, Depth: 8, MipLevels: 2, Format: gpucore.FormatR8}, 0)
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}
	q, _ := d.Queue(gpucore.QueueTransfer)
	cl, err := d.NewCommandList(q)
	if err != nil {
		t.Fatalf("NewCommandList() error = %v", err)
	}
	defer cl.Destroy()

	if err := cl.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	cl.TextureBarriers([]gpucore.TextureBarrier{
		{Texture: arr, MipLevel: 1, ArrayLayer: 3, Before: gpucore.StateUndefined, After: gpucore.StateCopyDest},
		{Texture: vol, MipLevel: 1, ArrayLayer: 5, Before: gpucore.StateCopyDest, After: gpucore.StateShaderResource},
	})
	if err := cl.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	want := []hal.TextureRange{
		{Aspect: gputypes.TextureAspectAll, BaseMipLevel: 1, MipLevelCount: 1, BaseArrayLayer: 3, ArrayLayerCount: 1},
		{Aspect: gputypes.TextureAspectAll, BaseMipLevel: 1, MipLevelCount: 1, BaseArrayLayer: 0, ArrayLayerCount: 1},
	}
	if len(rec.barriers) != len(want) {
		t.Fatalf("recorded %d barriers, want %d", len(rec.barriers), len(want))
	}
	for i, b := range rec.barriers {
		if b.Range != want[i] {
			t.Errorf("barrier %d range = %+v, want %+v", i, b.Range, want[i])
		}
	}
	if u := rec.barriers[0].Usage; u.OldUsage != 0 || u.NewUsage != gputypes.TextureUsageCopyDst {
		t.Errorf("barrier 0 usage = %+v", u)
	}
	if u := rec.barriers[1].Usage; u.OldUsage != gputypes.TextureUsageCopyDst || u.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("barrier 1 usage = %+v", u)
	}
}
