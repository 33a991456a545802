package panels

import (
	"fmt"
	"image"
	"image/color"

	"thermo-inspect/internal/imageio"
	"thermo-inspect/internal/thermal"
	"thermo-inspect/pkg/geometry"
	"thermo-inspect/ui/canvas"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ComparisonPanel shows the thermal frame next to its hot-region mask.
// Both sides share one viewport so pan and zoom stay in lockstep; the
// zoom range is tighter than the main canvas.
type ComparisonPanel struct {
	widget.BaseWidget

	frame     *imageio.Frame
	threshold float64
	analysis  thermal.Analysis
	mask      *image.Gray

	vp    *canvas.Viewport
	plain *compareSide
	hot   *compareSide

	slider *widget.Slider
	stats  *widget.Label
}

// NewComparisonPanel creates the panel with no frame loaded.
func NewComparisonPanel() *ComparisonPanel {
	p := &ComparisonPanel{
		threshold: 0.8,
		vp:        canvas.NewComparisonViewport(),
		stats:     widget.NewLabel("No frame loaded"),
	}
	p.plain = newCompareSide(p, false)
	p.hot = newCompareSide(p, true)

	p.slider = widget.NewSlider(0.5, 1.0)
	p.slider.Step = 0.01
	p.slider.Value = p.threshold
	p.slider.OnChanged = func(v float64) {
		p.threshold = v
		p.analyze()
	}

	p.ExtendBaseWidget(p)
	return p
}

// SetFrame installs a new frame and re-runs the hot-region analysis with
// a suggested starting threshold.
func (p *ComparisonPanel) SetFrame(frame *imageio.Frame) {
	p.frame = frame
	if frame != nil {
		p.vp.SetImageSize(float64(frame.Width), float64(frame.Height))
		if a, _, err := thermal.Analyze(frame.Image, p.threshold); err == nil {
			suggested := thermal.SuggestThreshold(a)
			p.threshold = suggested
			p.slider.SetValue(suggested)
		}
	}
	p.analyze()
}

func (p *ComparisonPanel) analyze() {
	if p.frame == nil || p.frame.Image == nil {
		p.mask = nil
		p.stats.SetText("No frame loaded")
		p.refreshSides()
		return
	}
	a, mask, err := thermal.Analyze(p.frame.Image, p.threshold)
	if err != nil {
		p.stats.SetText("Analysis failed: " + err.Error())
		p.refreshSides()
		return
	}
	p.analysis = a
	p.mask = mask
	p.stats.SetText(fmt.Sprintf(
		"mean %.2f  stddev %.2f  max %.2f  hot %.1f%%  threshold %.2f",
		a.Mean, a.StdDev, a.Max, a.HotFraction*100, p.threshold))
	p.refreshSides()
}

func (p *ComparisonPanel) refreshSides() {
	p.plain.raster.Refresh()
	p.hot.raster.Refresh()
}

func (p *ComparisonPanel) pan(dx, dy float64) {
	p.vp.PanBy(dx, dy)
	p.refreshSides()
}

func (p *ComparisonPanel) zoom(cursor geometry.Point2D, notches int) {
	p.vp.WheelZoom(cursor, notches)
	p.refreshSides()
}

// CreateRenderer implements fyne.Widget.
func (p *ComparisonPanel) CreateRenderer() fyne.WidgetRenderer {
	sides := container.NewGridWithColumns(2, p.plain, p.hot)
	bottom := container.NewBorder(nil, nil, widget.NewLabel("Hot threshold"), p.stats, p.slider)
	return widget.NewSimpleRenderer(container.NewBorder(nil, bottom, nil, nil, sides))
}

// compareSide renders one half of the comparison. The hot side blends
// the analysis mask over the frame in red.
type compareSide struct {
	widget.BaseWidget
	panel    *ComparisonPanel
	overlay  bool
	raster   *fynecanvas.Raster
	lastDrag geometry.Point2D
	dragging bool
}

func newCompareSide(p *ComparisonPanel, overlay bool) *compareSide {
	cs := &compareSide{panel: p, overlay: overlay}
	cs.raster = fynecanvas.NewRaster(cs.draw)
	cs.raster.ScaleMode = fynecanvas.ImageScalePixels
	cs.ExtendBaseWidget(cs)
	return cs
}

func (cs *compareSide) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(cs.raster)
}

func (cs *compareSide) Dragged(ev *fyne.DragEvent) {
	p := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	if cs.dragging {
		cs.panel.pan(p.X-cs.lastDrag.X, p.Y-cs.lastDrag.Y)
	}
	cs.lastDrag = p
	cs.dragging = true
}

func (cs *compareSide) DragEnd() {
	cs.dragging = false
}

func (cs *compareSide) Scrolled(ev *fyne.ScrollEvent) {
	notches := 0
	if ev.Scrolled.DY > 0 {
		notches = 1
	} else if ev.Scrolled.DY < 0 {
		notches = -1
	}
	cs.panel.zoom(geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}, notches)
}

func (cs *compareSide) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 0xFF
	}

	frame := cs.panel.frame
	if frame == nil || frame.Image == nil {
		return output
	}

	cs.panel.vp.SetContainerSize(float64(w), float64(h))
	src := frame.Image
	srcBounds := src.Bounds()
	mask := cs.panel.mask
	scale := cs.panel.vp.Scale()
	pan := cs.panel.vp.Pan()

	for y := 0; y < h; y++ {
		imgY := int((float64(y) - pan.Y) / scale)
		srcY := imgY + srcBounds.Min.Y
		if srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
			continue
		}
		for x := 0; x < w; x++ {
			imgX := int((float64(x) - pan.X) / scale)
			srcX := imgX + srcBounds.Min.X
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X {
				continue
			}
			c := src.At(srcX, srcY)
			if cs.overlay && mask != nil && mask.GrayAt(srcX, srcY).Y > 0 {
				r, g, b, _ := c.RGBA()
				output.Set(x, y, color.RGBA{
					R: uint8((r>>8)/2 + 127),
					G: uint8((g >> 8) / 2),
					B: uint8((b >> 8) / 2),
					A: 255,
				})
				continue
			}
			output.Set(x, y, c)
		}
	}
	return output
}
