// Package imagefile turns user-selected image files into vision buffers.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/vision"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrNoSelection means the user dismissed the picker. It is a state, not a failure.
var ErrNoSelection = errors.New("no image selected")

const (
	// MaxBytes caps the size of an image file.
	MaxBytes = 32 << 20
	// MaxPixels caps decoded dimensions.
	MaxPixels = 64 << 20
)

var maxBytes int64 = MaxBytes

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var codecs = map[string]codec{
	"image/jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"image/png":  {png.Decode, png.DecodeConfig},
	"image/gif":  {gif.Decode, gif.DecodeConfig},
	"image/bmp":  {bmp.Decode, bmp.DecodeConfig},
	"image/webp": {webp.Decode, webp.DecodeConfig},
}

// SupportedTypes returns the accepted MIME types, sorted.
func SupportedTypes() []string {
	types := make([]string, 0, len(codecs))
	for t := range codecs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Extensions returns file extensions for file pickers.
func Extensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
}

// Load reads and decodes the image at path. An empty path yields ErrNoSelection.
func Load(path string) (vision.Buffer, error) {
	if strings.TrimSpace(path) == "" {
		return vision.Buffer{}, ErrNoSelection
	}
	f, err := os.Open(path)
	if err != nil {
		return vision.Buffer{}, apperrors.InvalidInput("The image file could not be opened.", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return vision.Buffer{}, apperrors.InvalidInput("The selection is a folder, not an image.", fmt.Errorf("%s is a directory", path))
		}
		if info.Size() > maxBytes {
			return vision.Buffer{}, tooLarge(info.Size())
		}
	}
	return Decode(f)
}

// Decode sniffs the content type of r and decodes it into a Buffer.
func Decode(r io.Reader) (vision.Buffer, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return vision.Buffer{}, apperrors.InvalidInput("The image file could not be read.", err)
	}
	if int64(len(data)) > maxBytes {
		return vision.Buffer{}, tooLarge(int64(len(data)))
	}
	if len(data) == 0 {
		return vision.Buffer{}, apperrors.InvalidInput("The image file is empty.", errors.New("empty image data"))
	}

	mime := mimetype.Detect(data)
	c, ok := codecs[mime.String()]
	if !ok {
		return vision.Buffer{}, apperrors.InvalidInput(
			fmt.Sprintf("This image format is not supported. Accepted types: %s.", strings.Join(SupportedTypes(), ", ")),
			fmt.Errorf("unsupported content type %s", mime.String()),
		)
	}

	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return vision.Buffer{}, apperrors.InvalidInput("The image data is unreadable.", fmt.Errorf("decode %s header: %w", mime.String(), err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return vision.Buffer{}, apperrors.InvalidInput(
			"The image dimensions are not supported.",
			fmt.Errorf("image is %dx%d", cfg.Width, cfg.Height),
		)
	}

	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return vision.Buffer{}, apperrors.InvalidInput("The image data is unreadable.", fmt.Errorf("decode %s: %w", mime.String(), err))
	}
	return vision.FromImage(img), nil
}

func tooLarge(size int64) error {
	return apperrors.InvalidInput(
		fmt.Sprintf("The image file is too large (limit %d MiB).", maxBytes>>20),
		fmt.Errorf("image file is %d bytes", size),
	)
}
