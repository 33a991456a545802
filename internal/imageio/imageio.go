// Package imageio decodes inspection imagery and reports natural pixel
// dimensions. Supported formats: PNG, JPEG, radiometric TIFF exports, and
// WebP.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
)

// Frame is a decoded thermal image together with its native dimensions.
// All annotation geometry is expressed in these pixel units.
type Frame struct {
	Image  image.Image
	Width  int
	Height int
}

// Decode decodes raw image bytes fetched from the backend. Every
// coordinate transform is invalid until this has succeeded.
func Decode(data []byte) (*Frame, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("decode image: %s image has empty bounds", format)
	}
	return &Frame{
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// LoadFile decodes an image from disk, used for locally previewed uploads.
func LoadFile(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return Decode(data)
}

// CropRegion extracts a rectangular region, clamped to the image bounds.
// Used for the annotation detail preview.
func CropRegion(img image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(img, r)
}

// Thumbnail returns a copy scaled to fit within maxSide on its longer
// edge. Images already small enough are returned resized 1:1; nothing is
// ever upscaled.
func Thumbnail(img image.Image, maxSide int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxSide && bounds.Dy() <= maxSide {
		return imaging.Clone(img)
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Linear)
}
