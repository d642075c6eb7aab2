package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/oukeidos/percept/internal/apperrors"
	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one packed RGBA pixel in Buffer.Pix.
const BytesPerPixel = 4

// Buffer is a decoded raster image: packed 8-bit RGBA, row-major, no padding.
// The caller owns Pix; taggers read it during Tag and keep no reference.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// Validate reports an invalid-input error for zero dimensions or pixel data
// that does not match them.
func (b Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return apperrors.InvalidInput(
			"The image has no pixels.",
			fmt.Errorf("invalid image dimensions %dx%d", b.Width, b.Height),
		)
	}
	want := b.Width * b.Height * BytesPerPixel
	if want/BytesPerPixel/b.Width != b.Height {
		return apperrors.InvalidInput("The image is too large.", fmt.Errorf("image dimensions %dx%d overflow", b.Width, b.Height))
	}
	if len(b.Pix) != want {
		return apperrors.InvalidInput(
			"The image data is unreadable.",
			fmt.Errorf("pixel data is %d bytes, want %d for %dx%d", len(b.Pix), want, b.Width, b.Height),
		)
	}
	return nil
}

// FromImage copies img into a new Buffer.
func FromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return Buffer{Width: dst.Rect.Dx(), Height: dst.Rect.Dy(), Pix: dst.Pix}
}

// RGBA returns a copy of the buffer as an *image.RGBA. Callers must Validate first.
func (b Buffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// view wraps Pix without copying. The result must not outlive the call that made it.
func (b Buffer) view() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// EncodePNG validates the buffer and encodes a copy of it as PNG, for backends
// that take compressed images.
func (b Buffer) EncodePNG() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.RGBA()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
