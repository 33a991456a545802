package thermal

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// testFrame builds a dark frame with a bright square "hotspot".
func testFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/4 && x < w/2 && y >= h/4 && y < h/2 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{20, 20, 20, 255})
			}
		}
	}
	return img
}

func TestAnalyzeFindsHotRegion(t *testing.T) {
	img := testFrame(80, 80)
	a, mask, err := Analyze(img, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The hotspot covers 1/16 of the frame.
	if math.Abs(a.HotFraction-1.0/16.0) > 0.01 {
		t.Errorf("HotFraction = %v, want ~0.0625", a.HotFraction)
	}
	if a.Max < 0.99 {
		t.Errorf("Max = %v, want ~1", a.Max)
	}

	// Mask is hot inside the square, cold outside.
	if mask.GrayAt(25, 25).Y != 255 {
		t.Error("hotspot pixel not marked in mask")
	}
	if mask.GrayAt(5, 5).Y != 0 {
		t.Error("cold pixel marked hot in mask")
	}
}

func TestAnalyzeRejectsBadThreshold(t *testing.T) {
	if _, _, err := Analyze(testFrame(8, 8), 1.5); err == nil {
		t.Error("out-of-range threshold accepted")
	}
	if _, _, err := Analyze(nil, 0.5); err == nil {
		t.Error("nil image accepted")
	}
}

func TestSuggestThreshold(t *testing.T) {
	img := testFrame(80, 80)
	a, _, err := Analyze(img, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	s := SuggestThreshold(a)
	if s <= a.Mean || s > 1 {
		t.Errorf("SuggestThreshold = %v (mean %v)", s, a.Mean)
	}
}

func TestSuggestThresholdFlatFrame(t *testing.T) {
	flat := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			flat.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	a, _, err := Analyze(flat, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if got := SuggestThreshold(a); got != 1 {
		t.Errorf("flat frame suggestion = %v, want 1", got)
	}
}
