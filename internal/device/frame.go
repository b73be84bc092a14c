package device

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
)

const frameQuality = 85

// renderFrame draws a moving gradient so consecutive captures differ.
func renderFrame(width, height int, seq uint64) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	shift := int(seq % 256)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*255/width + shift) % 256),
				G: uint8(y * 255 / height),
				B: uint8(shift),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: frameQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
