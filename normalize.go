package pbr

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"
)

// Normalize converts a decoded image into a 4-channel texture of exactly
// width x height pixels. Images without alpha get an opaque alpha channel,
// and images of a different size are resampled bilinearly without keeping
// the aspect ratio. Color and alpha are resampled as separate planes, so
// color under transparent pixels is kept.
func Normalize(img image.Image, width, height int) *Texture {
	nrgba := toNRGBA(img)

	if nrgba.Bounds().Dx() != width || nrgba.Bounds().Dy() != height {
		nrgba = resize(nrgba, width, height)
	}

	return textureFromNRGBA(nrgba)
}

// resize resamples the color of img with alpha forced opaque, and the alpha
// as its own gray plane. gift weights color by alpha, which would otherwise
// blank the color wherever alpha is 0.
func resize(img *image.NRGBA, width, height int) *image.NRGBA {
	b := img.Bounds()
	opaque := image.NewNRGBA(b)
	alpha := image.NewGray(b)
	copy(opaque.Pix, img.Pix)
	for i := 0; i < len(opaque.Pix); i += 4 {
		alpha.Pix[i/4] = opaque.Pix[i+3]
		opaque.Pix[i+3] = 0xff
	}

	filter := gift.Resize(width, height, gift.LinearResampling)
	options := &gift.Options{
		Parallelization: true,
	}

	resized := image.NewNRGBA(image.Rect(0, 0, width, height))
	filter.Draw(resized, opaque, options)

	resizedAlpha := image.NewGray(image.Rect(0, 0, width, height))
	filter.Draw(resizedAlpha, alpha, options)

	for i := 0; i < len(resized.Pix); i += 4 {
		resized.Pix[i+3] = resizedAlpha.Pix[i/4]
	}

	return resized
}

// toNRGBA expands img to 8-bit non-premultiplied RGBA. NRGBA sources are
// copied as is so that color values under transparent alpha are kept.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4],
				src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}

	return dst
}
