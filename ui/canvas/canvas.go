package canvas

import (
	"image"
	"math"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/internal/imageio"
	"thermo-inspect/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// handleHitRadius is how close (screen px) a drag must start to a
// transform handle to grab it.
const handleHitRadius = 8.0

type gesture int

const (
	gestureNone gesture = iota
	gestureDraw
	gestureMove
	gestureResize
	gesturePan
	gestureIgnore
)

// AnnotationCanvas displays a thermal frame with its annotations and
// drives the view/draw/edit interaction model.
type AnnotationCanvas struct {
	widget.BaseWidget

	frame       *imageio.Frame
	annotations []annotation.Annotation

	vp      *Viewport
	session *Session

	raster  *fynecanvas.Raster
	content *mouseContent

	active   gesture
	lastDrag geometry.Point2D

	// Re-center on the next layout until the user interacts.
	autoCenter bool

	// Callbacks
	onSelect       func(id string)
	onStagedChange func()
	onZoomChange   func(zoom float64)
}

// NewAnnotationCanvas creates an empty canvas in view mode.
func NewAnnotationCanvas() *AnnotationCanvas {
	ac := &AnnotationCanvas{
		vp:      NewViewport(),
		session: NewSession(),
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.content = newMouseContent(ac)
	ac.ExtendBaseWidget(ac)
	return ac
}

// Session exposes the interaction state machine.
func (ac *AnnotationCanvas) Session() *Session { return ac.session }

// Viewport exposes the coordinate transform.
func (ac *AnnotationCanvas) Viewport() *Viewport { return ac.vp }

// SetFrame installs the decoded inspection image. Until a frame is set,
// every gesture is inert and the canvas renders an empty background.
func (ac *AnnotationCanvas) SetFrame(frame *imageio.Frame) {
	ac.frame = frame
	if frame != nil {
		ac.vp.SetImageSize(float64(frame.Width), float64(frame.Height))
	}
	ac.autoCenter = true
	ac.Refresh()
}

// Frame returns the currently displayed frame, if any.
func (ac *AnnotationCanvas) Frame() *imageio.Frame { return ac.frame }

// SetAnnotations replaces the render list. Callers pass active records
// only; soft-deleted annotations are filtered upstream.
func (ac *AnnotationCanvas) SetAnnotations(list []annotation.Annotation) {
	ac.annotations = list
	ac.session.Reconcile(list)
	ac.Refresh()
}

// SetMode switches the interaction mode.
func (ac *AnnotationCanvas) SetMode(m Mode) {
	ac.session.SetMode(m)
	ac.Refresh()
}

// OnSelect registers a callback fired when the selection changes by
// tapping; the id is "" when the selection is cleared.
func (ac *AnnotationCanvas) OnSelect(cb func(id string)) { ac.onSelect = cb }

// OnStagedChange registers a callback fired when a move or resize
// finishes and new geometry is staged.
func (ac *AnnotationCanvas) OnStagedChange(cb func()) { ac.onStagedChange = cb }

// OnZoomChange registers a callback for zoom factor changes.
func (ac *AnnotationCanvas) OnZoomChange(cb func(zoom float64)) { ac.onZoomChange = cb }

// ZoomIn steps the zoom via the discrete control.
func (ac *AnnotationCanvas) ZoomIn() {
	ac.autoCenter = false
	ac.vp.ZoomIn()
	ac.notifyZoom()
	ac.Refresh()
}

// ZoomOut steps the zoom via the discrete control.
func (ac *AnnotationCanvas) ZoomOut() {
	ac.autoCenter = false
	ac.vp.ZoomOut()
	ac.notifyZoom()
	ac.Refresh()
}

// ResetView returns to zoom 1 with the image centered.
func (ac *AnnotationCanvas) ResetView() {
	ac.vp.Reset()
	ac.autoCenter = true
	ac.notifyZoom()
	ac.Refresh()
}

func (ac *AnnotationCanvas) notifyZoom() {
	if ac.onZoomChange != nil {
		ac.onZoomChange(ac.vp.Zoom())
	}
}

// Refresh redraws the canvas.
func (ac *AnnotationCanvas) Refresh() {
	if ac.raster != nil {
		ac.raster.Refresh()
	}
	ac.BaseWidget.Refresh()
}

// annotationAt returns the topmost annotation whose staged geometry
// contains the image-space point, or nil.
func (ac *AnnotationCanvas) annotationAt(imgPt geometry.Point2D) *annotation.Annotation {
	for i := len(ac.annotations) - 1; i >= 0; i-- {
		a := ac.annotations[i]
		if ac.session.StagedRect(a.ID, a.Rect()).Contains(imgPt) {
			return &ac.annotations[i]
		}
	}
	return nil
}

func (ac *AnnotationCanvas) findByID(id string) *annotation.Annotation {
	for i := range ac.annotations {
		if ac.annotations[i].ID == id {
			return &ac.annotations[i]
		}
	}
	return nil
}

// --- pointer handling ---

func (ac *AnnotationCanvas) handleDrag(ev *fyne.DragEvent) {
	if ac.frame == nil {
		return
	}
	p := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	if ac.active == gestureNone {
		ac.beginGesture(p)
	}

	switch ac.active {
	case gestureDraw:
		ac.session.UpdateDraw(ac.vp.ScreenToImage(p))
	case gestureMove:
		ac.session.MoveTo(ac.vp.ScreenToImage(p))
	case gestureResize:
		ac.session.ResizeTo(ac.vp.ScreenToImage(p))
	case gesturePan:
		ac.vp.PanBy(p.X-ac.lastDrag.X, p.Y-ac.lastDrag.Y)
	}
	ac.lastDrag = p
	ac.Refresh()
}

func (ac *AnnotationCanvas) beginGesture(p geometry.Point2D) {
	ac.lastDrag = p
	imgPt := ac.vp.ScreenToImage(p)

	if ac.session.Mode() == ModeDraw {
		ac.active = gestureDraw
		ac.session.BeginDraw(imgPt)
		return
	}

	if ac.session.Mode() == ModeEdit && ac.session.SelectedID() != "" {
		selected := ac.findByID(ac.session.SelectedID())
		if selected != nil {
			if kind, ok := ac.handleAt(p); ok {
				ac.active = gestureResize
				ac.session.BeginResize(selected.Rect(), kind)
				return
			}
			staged := ac.session.StagedRect(selected.ID, selected.Rect())
			if staged.Contains(imgPt) {
				ac.active = gestureMove
				ac.session.BeginMove(selected.Rect(), imgPt)
				return
			}
		}
	}

	// Background pan is available outside draw mode when the drag does
	// not start on an annotation.
	if ac.annotationAt(imgPt) == nil {
		ac.active = gesturePan
		ac.autoCenter = false
		return
	}
	ac.active = gestureIgnore
}

// handleAt finds a transform handle of the selected annotation within
// grab distance of the screen point.
func (ac *AnnotationCanvas) handleAt(p geometry.Point2D) (HandleKind, bool) {
	for _, h := range ac.session.Handles(ac.session.SelectedID()) {
		screen := ac.vp.ImageToScreen(h.Pos)
		if screen.Distance(p) <= handleHitRadius {
			return h.Kind, true
		}
	}
	return 0, false
}

func (ac *AnnotationCanvas) handleDragEnd() {
	switch ac.active {
	case gestureDraw:
		ac.session.FinishDraw()
	case gestureMove:
		ac.session.EndMove()
		ac.notifyStaged()
	case gestureResize:
		ac.session.EndResize()
		ac.notifyStaged()
	}
	ac.active = gestureNone
	ac.Refresh()
}

func (ac *AnnotationCanvas) notifyStaged() {
	if ac.onStagedChange != nil {
		ac.onStagedChange()
	}
}

func (ac *AnnotationCanvas) handleTap(pos fyne.Position) {
	if ac.frame == nil || ac.session.Mode() == ModeDraw {
		return
	}
	imgPt := ac.vp.ScreenToImage(geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
	hit := ac.annotationAt(imgPt)
	if hit != nil {
		ac.session.Select(hit.ID, hit.Rect())
		if ac.onSelect != nil {
			ac.onSelect(hit.ID)
		}
	} else {
		ac.session.ClearSelection()
		if ac.onSelect != nil {
			ac.onSelect("")
		}
	}
	ac.Refresh()
}

func (ac *AnnotationCanvas) handleScroll(ev *fyne.ScrollEvent) {
	if ac.frame == nil {
		return
	}
	notches := 0
	if ev.Scrolled.DY > 0 {
		notches = 1
	} else if ev.Scrolled.DY < 0 {
		notches = -1
	}
	ac.autoCenter = false
	ac.vp.WheelZoom(geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}, notches)
	ac.notifyZoom()
	ac.Refresh()
}

// --- rendering ---

// draw is the raster drawing function.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Dark background (set alpha channel).
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 0x12
		output.Pix[i+1] = 0x12
		output.Pix[i+2] = 0x12
		output.Pix[i+3] = 0xFF
	}

	if ac.frame == nil || ac.frame.Image == nil {
		return output
	}

	ac.vp.SetContainerSize(float64(w), float64(h))
	if ac.autoCenter {
		ac.vp.Reset()
	}

	ac.drawFrame(output, w, h)
	ac.drawAnnotations(output)
	ac.drawDraft(output)
	ac.drawHandles(output)

	return output
}

// drawFrame samples the image through the inverse viewport transform.
func (ac *AnnotationCanvas) drawFrame(output *image.RGBA, w, h int) {
	src := ac.frame.Image
	srcBounds := src.Bounds()
	scale := ac.vp.Scale()
	pan := ac.vp.Pan()

	for y := 0; y < h; y++ {
		imgY := (float64(y) - pan.Y) / scale
		srcY := int(imgY) + srcBounds.Min.Y
		if srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
			continue
		}
		for x := 0; x < w; x++ {
			imgX := (float64(x) - pan.X) / scale
			srcX := int(imgX) + srcBounds.Min.X
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X {
				continue
			}
			output.Set(x, y, src.At(srcX, srcY))
		}
	}
}

func (ac *AnnotationCanvas) drawAnnotations(output *image.RGBA) {
	mode := ac.session.Mode()
	selected := ac.session.SelectedID()
	zoom := ac.vp.Zoom()
	scale := ac.vp.Scale()

	for _, a := range ac.annotations {
		staged := ac.session.StagedRect(a.ID, a.Rect())
		screen := ac.vp.RectToScreen(staged.Normalized())
		x1, y1 := int(screen.X), int(screen.Y)
		x2, y2 := int(screen.X+screen.Width), int(screen.Y+screen.Height)

		st := StyleFor(IntentFor(mode, selected, a))

		// Stroke and glow are computed in image units scaled back to
		// screen so visual weight is independent of zoom.
		thickness := int(math.Round(DisplayStrokeWidth(st.StrokeWidth, zoom) * scale))
		drawRectOutline(output, x1, y1, x2, y2, thickness, st.Stroke)
		if st.ShadowBlur > 0 {
			radius := int(math.Round(DisplayStrokeWidth(st.ShadowBlur, zoom) * scale))
			drawGlow(output, x1, y1, x2, y2, radius, st.Stroke)
		}

		label := LabelFor(a)
		labelScale := labelScaleForZoom(zoom)
		drawLabel(output, label, x1, y1-6*labelScale, labelScale, st.Stroke)
	}
}

func (ac *AnnotationCanvas) drawDraft(output *image.RGBA) {
	draft := ac.session.Draft()
	if draft == nil {
		return
	}
	screen := ac.vp.RectToScreen(draft.Rect().Normalized())
	drawDashedRect(output,
		int(screen.X), int(screen.Y),
		int(screen.X+screen.Width), int(screen.Y+screen.Height),
		draftStyle.Stroke)
}

func (ac *AnnotationCanvas) drawHandles(output *image.RGBA) {
	selected := ac.session.SelectedID()
	if selected == "" || ac.session.Mode() != ModeEdit {
		return
	}
	st := StyleFor(IntentEditing)
	for _, hnd := range ac.session.Handles(selected) {
		screen := ac.vp.ImageToScreen(hnd.Pos)
		drawHandleSquare(output, int(screen.X), int(screen.Y), 4, st.Stroke)
	}
}

func labelScaleForZoom(zoom float64) int {
	scale := int(zoom * 2)
	if scale < 1 {
		scale = 1
	}
	if scale > 3 {
		scale = 3
	}
	return scale
}

// --- widget plumbing ---

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &annotationCanvasRenderer{canvas: ac}
}

type annotationCanvasRenderer struct {
	canvas *AnnotationCanvas
}

func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.content.Resize(size)
	r.canvas.raster.Resize(size)
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (r *annotationCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.content}
}

func (r *annotationCanvasRenderer) Destroy() {}

// mouseContent wraps the raster to receive pointer events.
type mouseContent struct {
	widget.BaseWidget
	canvas *AnnotationCanvas
}

func newMouseContent(ac *AnnotationCanvas) *mouseContent {
	mc := &mouseContent{canvas: ac}
	mc.ExtendBaseWidget(mc)
	return mc
}

func (mc *mouseContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.canvas.raster)
}

func (mc *mouseContent) Dragged(ev *fyne.DragEvent) {
	mc.canvas.handleDrag(ev)
}

func (mc *mouseContent) DragEnd() {
	mc.canvas.handleDragEnd()
}

func (mc *mouseContent) Tapped(ev *fyne.PointEvent) {
	// Reject clicks outside widget bounds (stale events after layout).
	size := mc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	mc.canvas.handleTap(ev.Position)
}

func (mc *mouseContent) Scrolled(ev *fyne.ScrollEvent) {
	mc.canvas.handleScroll(ev)
}

// Cursor shows a crosshair while the draw tool is active.
func (mc *mouseContent) Cursor() desktop.Cursor {
	if mc.canvas.session.Mode() == ModeDraw {
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}
