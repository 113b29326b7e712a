package pbr

import (
	"image"
)

// Channel indices of a Texture. The byte order matches the BGRA layout of
// 32-bit TGA and the in-memory layout of the legacy toolchain.
const (
	ChannelB = iota
	ChannelG
	ChannelR
	ChannelA

	NumChannels
)

// Texture is a 32-bit image with four interleaved 8-bit channels per pixel,
// stored row by row in B, G, R, A order. A Texture is not modified after
// it has been fully constructed.
type Texture struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewTexture allocates a zeroed texture of the given size.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*NumChannels),
	}
}

// PixOffset returns the index of the first channel of the pixel at (x, y).
func (t *Texture) PixOffset(x, y int) int {
	return (y*t.Width + x) * NumChannels
}

// PixelAt returns the four channel samples of the pixel at (x, y).
func (t *Texture) PixelAt(x, y int) [NumChannels]uint8 {
	i := t.PixOffset(x, y)
	var p [NumChannels]uint8
	copy(p[:], t.Pix[i:i+NumChannels])
	return p
}

// Size returns the dimensions of the texture.
func (t *Texture) Size() image.Point {
	return image.Pt(t.Width, t.Height)
}

// NRGBA converts the texture into a non-premultiplied Go image so that the
// channel values survive encoding unchanged.
func (t *Texture) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		src := t.Pix[y*t.Width*NumChannels : (y+1)*t.Width*NumChannels]
		dst := img.Pix[y*img.Stride : y*img.Stride+t.Width*4]
		for i := 0; i < len(src); i += NumChannels {
			dst[i+0] = src[i+ChannelR]
			dst[i+1] = src[i+ChannelG]
			dst[i+2] = src[i+ChannelB]
			dst[i+3] = src[i+ChannelA]
		}
	}
	return img
}

// textureFromNRGBA swizzles an NRGBA image into a texture.
func textureFromNRGBA(img *image.NRGBA) *Texture {
	b := img.Bounds()
	t := NewTexture(b.Dx(), b.Dy())
	for y := 0; y < t.Height; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := t.Pix[y*t.Width*NumChannels : (y+1)*t.Width*NumChannels]
		for i := 0; i < len(dst); i += NumChannels {
			dst[i+ChannelB] = src[i+2]
			dst[i+ChannelG] = src[i+1]
			dst[i+ChannelR] = src[i+0]
			dst[i+ChannelA] = src[i+3]
		}
	}
	return t
}
