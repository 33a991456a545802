// Package thermal computes the local threshold re-analysis preview used
// by the comparison view. The authoritative anomaly detection runs on the
// backend; this is presentation-only feedback while the user tunes a
// threshold before requesting re-analysis.
package thermal

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/stat"
)

// Analysis summarizes pixel intensities of a thermal frame.
type Analysis struct {
	Mean        float64 // mean normalized intensity [0,1]
	StdDev      float64
	Max         float64
	HotFraction float64 // fraction of pixels at or above the threshold
	Threshold   float64 // threshold the analysis was computed against
}

// sampleStride keeps analysis cheap on large frames; one sample per
// stride^2 pixels is plenty for a preview statistic.
const sampleStride = 2

// Analyze computes intensity statistics for img against threshold, which
// must be in [0,1]. The returned mask is non-nil and marks hot pixels at
// full image resolution.
func Analyze(img image.Image, threshold float64) (Analysis, *image.Gray, error) {
	if img == nil {
		return Analysis{}, nil, fmt.Errorf("no image to analyze")
	}
	if threshold < 0 || threshold > 1 {
		return Analysis{}, nil, fmt.Errorf("threshold %v out of range [0,1]", threshold)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Analysis{}, nil, fmt.Errorf("image has empty bounds")
	}

	mask := image.NewGray(bounds)
	samples := make([]float64, 0, (bounds.Dx()/sampleStride+1)*(bounds.Dy()/sampleStride+1))

	var hot, total int
	maxIntensity := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := intensityAt(img, x, y)
			if v > maxIntensity {
				maxIntensity = v
			}
			total++
			if v >= threshold {
				hot++
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
			if (x-bounds.Min.X)%sampleStride == 0 && (y-bounds.Min.Y)%sampleStride == 0 {
				samples = append(samples, v)
			}
		}
	}

	mean := stat.Mean(samples, nil)
	sigma := stat.StdDev(samples, nil)

	return Analysis{
		Mean:        mean,
		StdDev:      sigma,
		Max:         maxIntensity,
		HotFraction: float64(hot) / float64(total),
		Threshold:   threshold,
	}, mask, nil
}

// SuggestThreshold proposes a starting threshold of mean + 2σ, clamped to
// [0,1]. Frames with no variance suggest the maximum instead, so the
// preview starts empty rather than fully lit.
func SuggestThreshold(a Analysis) float64 {
	if a.StdDev == 0 {
		return 1
	}
	t := a.Mean + 2*a.StdDev
	if t > 1 {
		t = 1
	}
	if t < 0 {
		t = 0
	}
	return t
}

// intensityAt maps a pixel to normalized luminance. Thermal palettes put
// hotter readings at brighter values, so luminance orders pixels by
// temperature well enough for a preview.
func intensityAt(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	// Rec. 601 luma on 16-bit channel values.
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
}
