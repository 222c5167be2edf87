package gpucore

import "github.com/gogpu/gputypes"

// Format describes the block footprint of a texture format. Uncompressed
// formats are 1x1x1 blocks.
//
// ZOrder marks formats whose texture memory is laid out in twiddled
// (Morton) block order instead of row-major order. Source data stays in
// row-major order and is swizzled on upload. Such formats require
// power-of-two level extents in blocks.
type Format struct {
	Name        string
	BlockWidth  uint32
	BlockHeight uint32
	BlockDepth  uint32
	BlockBytes  uint32
	ZOrder      bool

	gpu gputypes.TextureFormat
}

// Built-in formats.
var (
	FormatR8       = Format{Name: "r8", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 1, gpu: gputypes.TextureFormatR8Unorm}
	FormatRG8      = Format{Name: "rg8", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 2}
	FormatRGBA8    = Format{Name: "rgba8", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 4, gpu: gputypes.TextureFormatRGBA8Unorm}
	FormatBGRA8    = Format{Name: "bgra8", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 4, gpu: gputypes.TextureFormatBGRA8Unorm}
	FormatR32F     = Format{Name: "r32f", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 4}
	FormatRGBA16F  = Format{Name: "rgba16f", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 8}
	FormatRGBA32F  = Format{Name: "rgba32f", BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, BlockBytes: 16}
	FormatBC1      = Format{Name: "bc1", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 8}
	FormatBC2      = Format{Name: "bc2", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatBC3      = Format{Name: "bc3", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatBC4      = Format{Name: "bc4", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 8}
	FormatBC5      = Format{Name: "bc5", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatBC6H     = Format{Name: "bc6h", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatBC7      = Format{Name: "bc7", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatETC2RGB8 = Format{Name: "etc2_rgb8", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 8}
	FormatETC2RGBA = Format{Name: "etc2_rgba8", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatASTC4x4  = Format{Name: "astc_4x4", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 16}
	FormatASTC8x8  = Format{Name: "astc_8x8", BlockWidth: 8, BlockHeight: 8, BlockDepth: 1, BlockBytes: 16}
	FormatPVRTC4   = Format{Name: "pvrtc_4bpp", BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, BlockBytes: 8, ZOrder: true}
	FormatPVRTC2   = Format{Name: "pvrtc_2bpp", BlockWidth: 8, BlockHeight: 4, BlockDepth: 1, BlockBytes: 8, ZOrder: true}
)

var formatsByName = map[string]Format{}

func init() {
	for _, f := range []Format{
		FormatR8, FormatRG8, FormatRGBA8, FormatBGRA8, FormatR32F, FormatRGBA16F, FormatRGBA32F,
		FormatBC1, FormatBC2, FormatBC3, FormatBC4, FormatBC5, FormatBC6H, FormatBC7,
		FormatETC2RGB8, FormatETC2RGBA, FormatASTC4x4, FormatASTC8x8, FormatPVRTC4, FormatPVRTC2,
	} {
		formatsByName[f.Name] = f
	}
}

// FormatByName looks up a built-in format.
func FormatByName(name string) (Format, bool) {
	f, ok := formatsByName[name]
	return f, ok
}

// FormatFromGPUTypes returns the block layout of a WebGPU texture format.
// Only formats with a known gputypes counterpart are mapped.
func FormatFromGPUTypes(f gputypes.TextureFormat) (Format, bool) {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return FormatR8, true
	case gputypes.TextureFormatRGBA8Unorm:
		return FormatRGBA8, true
	case gputypes.TextureFormatBGRA8Unorm:
		return FormatBGRA8, true
	}
	return Format{}, false
}

// IsZero reports whether f is the zero Format.
func (f Format) IsZero() bool { return f.BlockBytes == 0 }

// IsCompressed reports whether a block covers more than one texel.
func (f Format) IsCompressed() bool {
	return f.BlockWidth*f.BlockHeight*f.BlockDepth > 1
}

// GPUFormat returns the WebGPU format. Formats without a gputypes
// counterpart return the zero value (TextureFormatUndefined).
func (f Format) GPUFormat() gputypes.TextureFormat {
	return f.gpu
}

// Blocks converts a texel extent into whole blocks, rounding partial
// edge blocks up.
func (f Format) Blocks(e Extent3D) Extent3D {
	return Extent3D{
		Width:  (e.Width + f.BlockWidth - 1) / f.BlockWidth,
		Height: (e.Height + f.BlockHeight - 1) / f.BlockHeight,
		Depth:  (e.Depth + f.BlockDepth - 1) / f.BlockDepth,
	}
}

// Size returns the number of bytes a tightly packed region of extent e
// occupies.
func (f Format) Size(e Extent3D) int64 {
	b := f.Blocks(e)
	return int64(b.Width) * int64(b.Height) * int64(b.Depth) * int64(f.BlockBytes)
}

func (f Format) String() string {
	if f.Name == "" {
		return "format(unnamed)"
	}
	return f.Name
}
