// Package canvas provides the annotation canvas: an image view with pan,
// zoom, and bounding-box draw/edit interactions.
package canvas

import (
	"math"

	"thermo-inspect/pkg/geometry"
)

const (
	wheelZoomStep  = 1.1
	buttonZoomStep = 1.2

	defaultMinZoom = 0.5
	defaultMaxZoom = 10.0

	// The comparison view allows a tighter range.
	comparisonMinZoom = 1.0
	comparisonMaxZoom = 3.0
)

// Viewport converts between the three coordinate spaces of the canvas:
// image-native pixels (persisted units), rendered pixels (image scaled by
// fitScale*zoom), and container pixels (where pointer events arrive).
type Viewport struct {
	containerW float64
	containerH float64
	imageW     float64
	imageH     float64

	zoom    float64
	pan     geometry.Point2D
	minZoom float64
	maxZoom float64
}

// NewViewport creates a viewport with the standard wheel-zoom bounds.
func NewViewport() *Viewport {
	return &Viewport{
		zoom:    1.0,
		minZoom: defaultMinZoom,
		maxZoom: defaultMaxZoom,
	}
}

// NewComparisonViewport creates a viewport with the comparison-view zoom
// bounds of [1, 3].
func NewComparisonViewport() *Viewport {
	return &Viewport{
		zoom:    1.0,
		minZoom: comparisonMinZoom,
		maxZoom: comparisonMaxZoom,
	}
}

// SetContainerSize records the visible canvas area in screen pixels.
func (v *Viewport) SetContainerSize(w, h float64) {
	v.containerW = w
	v.containerH = h
}

// SetImageSize records the displayed image's native dimensions and resets
// the view. Until this is called with positive dimensions, no interaction
// is meaningful.
func (v *Viewport) SetImageSize(w, h float64) {
	v.imageW = w
	v.imageH = h
	v.Reset()
}

// HasImage reports whether a valid image size has been set.
func (v *Viewport) HasImage() bool {
	return v.imageW > 0 && v.imageH > 0
}

// FitScale returns the scale that fits the image inside the container
// without ever upscaling past native resolution.
func (v *Viewport) FitScale() float64 {
	if v.imageW <= 0 || v.imageH <= 0 || v.containerW <= 0 || v.containerH <= 0 {
		return 1
	}
	fit := math.Min(v.containerW/v.imageW, v.containerH/v.imageH)
	fit = math.Min(fit, 1)
	if fit <= 0 || math.IsNaN(fit) || math.IsInf(fit, 0) {
		return 1
	}
	return fit
}

// Scale returns the combined fitScale*zoom factor. A degenerate factor is
// treated as a configuration error with a safe fallback of 1; pointer
// math must never divide by zero.
func (v *Viewport) Scale() float64 {
	s := v.FitScale() * v.Zoom()
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	return s
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 {
	if v.zoom <= 0 || math.IsNaN(v.zoom) {
		return 1
	}
	return v.zoom
}

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() geometry.Point2D {
	return v.pan
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.pan.X += dx
	v.pan.Y += dy
}

// ScreenToImage converts a pointer position to image-native pixels. This
// is the single conversion used by draw, drag, and resize alike.
func (v *Viewport) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	s := v.Scale()
	return geometry.Point2D{
		X: (p.X - v.pan.X) / s,
		Y: (p.Y - v.pan.Y) / s,
	}
}

// ImageToScreen converts an image-space point to container pixels.
func (v *Viewport) ImageToScreen(p geometry.Point2D) geometry.Point2D {
	s := v.Scale()
	return geometry.Point2D{
		X: p.X*s + v.pan.X,
		Y: p.Y*s + v.pan.Y,
	}
}

// RectToScreen converts an image-space rectangle to container pixels.
func (v *Viewport) RectToScreen(r geometry.Rect) geometry.Rect {
	s := v.Scale()
	tl := v.ImageToScreen(r.TopLeft())
	return geometry.NewRect(tl.X, tl.Y, r.Width*s, r.Height*s)
}

// WheelZoom applies wheel notches at the given cursor position, zooming
// toward the pointer: the image point under the cursor stays under it.
func (v *Viewport) WheelZoom(cursor geometry.Point2D, notches int) {
	if notches == 0 {
		return
	}
	factor := math.Pow(wheelZoomStep, float64(notches))
	v.zoomAt(cursor, v.Zoom()*factor)
}

// ZoomIn steps zoom up around the container center.
func (v *Viewport) ZoomIn() {
	v.zoomAt(v.containerCenter(), v.Zoom()*buttonZoomStep)
}

// ZoomOut steps zoom down around the container center.
func (v *Viewport) ZoomOut() {
	v.zoomAt(v.containerCenter(), v.Zoom()/buttonZoomStep)
}

// Reset returns zoom to 1 and re-centers the image in the container.
func (v *Viewport) Reset() {
	v.zoom = 1.0
	v.center()
}

func (v *Viewport) containerCenter() geometry.Point2D {
	return geometry.Point2D{X: v.containerW / 2, Y: v.containerH / 2}
}

// zoomAt changes the zoom factor while keeping the image point under
// anchor fixed on screen: newPan = anchor - (anchor - oldPan)*(new/old).
func (v *Viewport) zoomAt(anchor geometry.Point2D, newZoom float64) {
	newZoom = v.clampZoom(newZoom)
	oldZoom := v.Zoom()
	if newZoom == oldZoom {
		return
	}
	ratio := newZoom / oldZoom
	v.pan = geometry.Point2D{
		X: anchor.X - (anchor.X-v.pan.X)*ratio,
		Y: anchor.Y - (anchor.Y-v.pan.Y)*ratio,
	}
	v.zoom = newZoom
}

func (v *Viewport) clampZoom(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return 1
	}
	if z < v.minZoom {
		return v.minZoom
	}
	if z > v.maxZoom {
		return v.maxZoom
	}
	return z
}

func (v *Viewport) center() {
	fit := v.FitScale()
	v.pan = geometry.Point2D{
		X: (v.containerW - v.imageW*fit) / 2,
		Y: (v.containerH - v.imageH*fit) / 2,
	}
}
