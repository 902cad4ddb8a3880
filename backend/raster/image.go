package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // texture formats accepted by CreateImageMem
	_ "image/jpeg"
	_ "image/png"

	"github.com/gogpu/gg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/zelixir/scenic-driver-gg/backend"
)

// CreateImageMem decodes a PNG, JPEG, GIF, WebP, BMP or TIFF texture.
func (b *Backend) CreateImageMem(data []byte) (backend.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", backend.ErrImageDecode, err)
	}
	buf := gg.ImageBufFromImage(img)
	if buf == nil {
		return 0, fmt.Errorf("%w: unsupported %s layout", backend.ErrImageDecode, format)
	}
	b.nextImg++
	id := backend.Image(b.nextImg)
	b.images[id] = buf
	return id, nil
}

func (b *Backend) DeleteImage(img backend.Image) {
	delete(b.images, img)
}

func (b *Backend) ImageSize(img backend.Image) (w, h int, ok bool) {
	buf, ok := b.images[img]
	if !ok {
		return 0, 0, false
	}
	w, h = buf.Bounds()
	return w, h, true
}
