package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), 0, uint8(y % 256), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeReportsNaturalDimensions(t *testing.T) {
	frame, err := Decode(encodePNG(t, 640, 480))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Width != 640 || frame.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", frame.Width, frame.Height)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("garbage bytes decoded without error")
	}
}

func TestThumbnailNeverUpscales(t *testing.T) {
	frame, err := Decode(encodePNG(t, 100, 60))
	if err != nil {
		t.Fatal(err)
	}
	thumb := Thumbnail(frame.Image, 256)
	if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 60 {
		t.Errorf("small image was rescaled to %v", thumb.Bounds())
	}
}

func TestThumbnailFitsLongEdge(t *testing.T) {
	frame, err := Decode(encodePNG(t, 800, 400))
	if err != nil {
		t.Fatal(err)
	}
	thumb := Thumbnail(frame.Image, 200)
	if thumb.Bounds().Dx() != 200 || thumb.Bounds().Dy() != 100 {
		t.Errorf("thumbnail = %v, want 200x100", thumb.Bounds())
	}
}
