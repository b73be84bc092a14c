package remote

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// DecodeImage decodes a captured frame. It returns the registered format name
// ("jpeg", "png", "gif", "bmp", "tiff", "webp"). Decoding is all-or-nothing.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: %w: empty payload", protocol.ErrDecode, ErrInvalidImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w: %w", protocol.ErrDecode, ErrInvalidImage, err)
	}
	return img, format, nil
}

// SaveImage writes img to path. The extension picks the format: .png, .gif,
// anything else is written as JPEG.
func SaveImage(img image.Image, path string) (err error) {
	if img == nil {
		return fmt.Errorf("remote: save image %s: %w", path, ErrNilImage)
	}
	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}
	log.Info().Str("path", path).Str("abs", abs).Msg("saving image to disk")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("remote: save image %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("remote: save image %s: %w", path, cerr)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return fmt.Errorf("remote: save image %s: %w", path, err)
	}
	return nil
}
