package gpucore

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatBlocks(t *testing.T) {
	tests := []struct {
		format Format
		extent Extent3D
		blocks Extent3D
		size   int64
	}{
		{FormatRGBA8, Extent3D{Width: 7, Height: 3, Depth: 2}, Extent3D{Width: 7, Height: 3, Depth: 2}, 7 * 3 * 2 * 4},
		{FormatBC1, Extent3D{Width: 10, Height: 6, Depth: 1}, Extent3D{Width: 3, Height: 2, Depth: 1}, 3 * 2 * 8},
		{FormatBC7, Extent3D{Width: 1, Height: 1, Depth: 1}, Extent3D{Width: 1, Height: 1, Depth: 1}, 16},
		{FormatASTC8x8, Extent3D{Width: 64, Height: 17, Depth: 1}, Extent3D{Width: 8, Height: 3, Depth: 1}, 8 * 3 * 16},
		{FormatPVRTC2, Extent3D{Width: 32, Height: 32, Depth: 1}, Extent3D{Width: 4, Height: 8, Depth: 1}, 4 * 8 * 8},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.Blocks(tt.extent); got != tt.blocks {
				t.Errorf("Blocks(%+v) = %+v, want %+v", tt.extent, got, tt.blocks)
			}
			if got := tt.format.Size(tt.extent); got != tt.size {
				t.Errorf("Size(%+v) = %d, want %d", tt.extent, got, tt.size)
			}
		})
	}
}

func TestFormatLookup(t *testing.T) {
	f, ok := FormatByName("bc3")
	if !ok || f != FormatBC3 || !f.IsCompressed() {
		t.Errorf("FormatByName(bc3) = %v, %v", f, ok)
	}
	if _, ok := FormatByName("bc9"); ok {
		t.Error("FormatByName(bc9) found a format")
	}
	if !FormatPVRTC4.ZOrder || FormatBC1.ZOrder {
		t.Error("ZOrder flags wrong")
	}

	g, ok := FormatFromGPUTypes(gputypes.TextureFormatBGRA8Unorm)
	if !ok || g != FormatBGRA8 {
		t.Errorf("FormatFromGPUTypes(BGRA8Unorm) = %v, %v", g, ok)
	}
	if FormatRGBA8.GPUFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Error("RGBA8 does not map to RGBA8Unorm")
	}
	if !(Format{}).IsZero() || FormatR8.IsZero() {
		t.Error("IsZero wrong")
	}
}

func TestLevelExtent(t *testing.T) {
	d := TextureDesc{Width: 64, Height: 16, Depth: 4, MipLevels: 7}
	tests := []struct {
		level uint32
		want  Extent3D
	}{
		{0, Extent3D{Width: 64, Height: 16, Depth: 4}},
		{2, Extent3D{Width: 16, Height: 4, Depth: 1}},
		{6, Extent3D{Width: 1, Height: 1, Depth: 1}},
	}
	for _, tt := range tests {
		if got := d.LevelExtent(tt.level); got != tt.want {
			t.Errorf("LevelExtent(%d) = %+v, want %+v", tt.level, got, tt.want)
		}
	}
}

func TestParseQueueType(t *testing.T) {
	for _, q := range []QueueType{QueueGraphics, QueueCompute, QueueTransfer} {
		got, err := ParseQueueType(q.String())
		if err != nil || got != q {
			t.Errorf("ParseQueueType(%q) = %v, %v", q.String(), got, err)
		}
	}
	if q, err := ParseQueueType("copy"); err != nil || q != QueueTransfer {
		t.Errorf("ParseQueueType(copy) = %v, %v", q, err)
	}
	if _, err := ParseQueueType("video"); err == nil {
		t.Error("ParseQueueType(video) error = nil")
	}
}

func TestCapsValidate(t *testing.T) {
	if err := DefaultCaps().Validate(); err != nil {
		t.Errorf("DefaultCaps().Validate() = %v", err)
	}
	bad := DefaultCaps()
	bad.RowPitchAlignment = 300
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted a 300-byte row pitch alignment")
	}
}
