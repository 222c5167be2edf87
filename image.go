package streamer

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/streamer/gpucore"
)

// TextureUpdateFromImage returns an update that uploads img into mip level
// mip of tex. The texture must be RGBA8 or BGRA8; img is scaled with a
// Catmull-Rom filter when its size differs from the level.
func TextureUpdateFromImage(img image.Image, tex gpucore.Texture, mip uint32) TextureUpdate {
	if tex == nil {
		contract(ErrNilResource, "image update")
	}
	desc := tex.Desc()
	return TextureUpdate{
		Texture:  tex,
		MipLevel: mip,
		Format:   desc.Format,
		Data:     imagePixels(img, desc, mip),
		State:    gpucore.StateShaderResource,
	}
}

// ImageMipChain returns the pixels of every mip level of tex, each level
// scaled down from img, for use with Loader.EnqueueTextureLevels.
func ImageMipChain(img image.Image, tex gpucore.Texture) [][]byte {
	desc := tex.Desc()
	levels := make([][]byte, max(1, desc.MipLevels))
	for mip := range levels {
		levels[mip] = imagePixels(img, desc, uint32(mip))
	}
	return levels
}

func imagePixels(img image.Image, desc gpucore.TextureDesc, mip uint32) []byte {
	bgra := false
	switch desc.Format {
	case gpucore.FormatRGBA8:
	case gpucore.FormatBGRA8:
		bgra = true
	default:
		contract(ErrMisaligned, "image upload into %s texture", desc.Format)
	}

	lvl := desc.LevelExtent(mip)
	dst := image.NewRGBA(image.Rect(0, 0, int(lvl.Width), int(lvl.Height)))
	sb := img.Bounds()
	if sb.Dx() == dst.Rect.Dx() && sb.Dy() == dst.Rect.Dy() {
		xdraw.Draw(dst, dst.Bounds(), img, sb.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, sb, xdraw.Src, nil)
	}

	if bgra {
		for i := 0; i < len(dst.Pix); i += 4 {
			dst.Pix[i], dst.Pix[i+2] = dst.Pix[i+2], dst.Pix[i]
		}
	}
	return dst.Pix
}
