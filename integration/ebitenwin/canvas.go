package ebitenwin

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrCanvasClosed is returned when a closed canvas is used.
var ErrCanvasClosed = errors.New("ebitenwin: canvas is closed")

// Canvas carries rendered frames from the CPU pixel buffer to an ebiten
// image and onto the screen.
//
// The ebiten image is created lazily on the first upload and recreated when
// the frame size changes. Canvas is NOT safe for concurrent use.
type Canvas struct {
	img    *ebiten.Image
	width  int
	height int
	closed bool
}

// Upload copies src into the canvas image. src holds premultiplied RGBA, as
// ebiten expects.
func (c *Canvas) Upload(src *image.RGBA) error {
	if c.closed {
		return ErrCanvasClosed
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	if c.img == nil || w != c.width || h != c.height {
		if c.img != nil {
			c.img.Deallocate()
		}
		c.img = ebiten.NewImage(w, h)
		c.width, c.height = w, h
	}
	pix := src.Pix
	if src.Stride != 4*w {
		pix = make([]byte, 0, 4*w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[off:off+4*w]...)
		}
	}
	c.img.WritePixels(pix)
	return nil
}

// DrawTo draws the last uploaded frame scaled to fill screen. Before the
// first upload it draws nothing.
func (c *Canvas) DrawTo(screen *ebiten.Image) {
	if c.closed || c.img == nil {
		return
	}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(c.width), float64(sh)/float64(c.height))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(c.img, op)
}

// Size returns the size of the last uploaded frame.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Close releases the image. Close is idempotent.
func (c *Canvas) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.img != nil {
		c.img.Deallocate()
		c.img = nil
	}
}
