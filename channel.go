package pbr

import (
	"strconv"
)

// Plane is a read-only view of a single channel of a texture.
type Plane struct {
	tex   *Texture
	index int
}

// Channel returns the plane of the channel with the given index. Index must
// be within [0, 3].
func (t *Texture) Channel(index int) Plane {
	if index < 0 || index >= NumChannels {
		panic("pbr: channel index out of range: " + strconv.Itoa(index))
	}

	return Plane{tex: t, index: index}
}

// At returns the sample of the plane at (x, y).
func (p Plane) At(x, y int) uint8 {
	return p.tex.Pix[p.tex.PixOffset(x, y)+p.index]
}

// Index returns the channel index the plane reads from.
func (p Plane) Index() int {
	return p.index
}

// row returns the interleaved row y of the underlying texture, offset so
// that row[i*NumChannels] is the plane's sample at x = i.
func (p Plane) row(y int) []uint8 {
	start := p.tex.PixOffset(0, y) + p.index
	end := p.tex.PixOffset(0, y+1)
	return p.tex.Pix[start:end]
}
