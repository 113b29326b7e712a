package pbr

import (
	"bufio"
	"image"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
)

var errCodecClosed = errors.New("codec is closed")

// Codec decodes and encodes the supported container formats. It holds the
// encoder buffers shared across a batch and must be closed when the batch
// is finished. A Codec is safe for concurrent use.
type Codec struct {
	mutex  sync.RWMutex
	closed bool
	pool   *bufferPool
	png    *png.Encoder
	tiff   *tiff.Options
}

// NewCodec returns a ready to use codec. Outputs are written without
// compression.
func NewCodec() *Codec {
	pool := new(bufferPool)
	return &Codec{
		pool: pool,
		png: &png.Encoder{
			CompressionLevel: png.NoCompression,
			BufferPool:       pool,
		},
		tiff: &tiff.Options{
			Compression: tiff.Uncompressed,
		},
	}
}

// Close releases the buffers held by the codec. Subsequent loads and saves
// fail.
func (c *Codec) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closed = true
	c.pool.drain()
	return nil
}

// Decode decodes an image of the given format from rd.
func (c *Codec) Decode(rd io.Reader, format Format) (image.Image, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		return nil, errCodecClosed
	}

	switch format {
	case FormatTGA:
		return tga.Decode(rd)
	case FormatTIFF:
		return tiff.Decode(rd)
	case FormatPNG:
		return png.Decode(rd)
	}

	return nil, errors.Errorf("unsupported format %v", format)
}

// Encode encodes img in the given format into wr.
func (c *Codec) Encode(wr io.Writer, img image.Image, format Format) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		return errCodecClosed
	}

	switch format {
	case FormatTGA:
		return tga.Encode(wr, img)
	case FormatTIFF:
		return tiff.Encode(wr, img, c.tiff)
	case FormatPNG:
		return c.png.Encode(wr, img)
	}

	return errors.Errorf("unsupported format %v", format)
}

// Load reads and decodes the image file at path, picking the decoder from
// the file extension.
func (c *Codec) Load(path string) (image.Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	input, err := os.Open(path)
	if err != nil {
		return nil, newError(KindImageLoad, path, err)
	}
	defer input.Close()

	img, err := c.Decode(bufio.NewReader(input), format)
	if err != nil {
		return nil, newError(KindImageLoad, path, errors.Wrap(err, "decode "+format.String()))
	}

	return img, nil
}

// LoadTexture loads the image file at path and normalizes it to
// width x height.
func (c *Codec) LoadTexture(path string, width, height int) (*Texture, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}

	return Normalize(img, width, height), nil
}

// Save encodes tex into a new file at path, picking the encoder from the
// file extension. A partially written file is removed on failure.
func (c *Codec) Save(path string, tex *Texture) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	output, err := os.Create(path)
	if err != nil {
		return newError(KindImageSave, path, err)
	}

	wr := bufio.NewWriter(output)
	err = c.Encode(wr, tex.NRGBA(), format)
	if err == nil {
		err = wr.Flush()
	}
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(path)
		return newError(KindImageSave, path, errors.Wrap(err, "encode "+format.String()))
	}

	return nil
}

type bufferPool struct {
	mutex   sync.Mutex
	buffers []*png.EncoderBuffer
}

func (p *bufferPool) Get() *png.EncoderBuffer {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.buffers) == 0 {
		return nil
	}

	buf := p.buffers[len(p.buffers)-1]
	p.buffers = p.buffers[:len(p.buffers)-1]
	return buf
}

func (p *bufferPool) Put(buf *png.EncoderBuffer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.buffers = append(p.buffers, buf)
}

func (p *bufferPool) drain() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.buffers = nil
}
