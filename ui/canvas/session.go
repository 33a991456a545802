package canvas

import (
	"thermo-inspect/internal/annotation"
	"thermo-inspect/pkg/geometry"
)

// Mode selects which gestures are active on the canvas.
type Mode int

const (
	ModeView Mode = iota
	ModeDraw
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeDraw:
		return "draw"
	case ModeEdit:
		return "edit"
	default:
		return "view"
	}
}

const (
	// minDrawSize rejects accidental clicks and tiny drags: a freshly
	// drawn box must exceed this in both dimensions (image pixels).
	minDrawSize = 10.0

	// minResizeSize bounds resize: releasing a handle with either
	// dimension below this rolls the box back.
	minResizeSize = 20.0
)

// HandleKind identifies a corner transform handle.
type HandleKind int

const (
	HandleTopLeft HandleKind = iota
	HandleTopRight
	HandleBottomRight
	HandleBottomLeft
)

// Handle describes one transform handle of the selected annotation, in
// image coordinates. Handles are looked up by annotation id, never held
// as references into any particular rendering tree.
type Handle struct {
	Kind   HandleKind
	Anchor geometry.Point2D // opposite corner, fixed while dragging
	Pos    geometry.Point2D
}

// DraftBox is the in-progress rectangle while drawing. Width/Height may
// be negative while the pointer travels up or left.
type DraftBox struct {
	Origin geometry.Point2D
	Width  float64
	Height float64
}

// Rect returns the draft as a (possibly denormalized) rectangle.
func (d DraftBox) Rect() geometry.Rect {
	return geometry.NewRect(d.Origin.X, d.Origin.Y, d.Width, d.Height)
}

// PendingEdit is a locally staged copy of a selected annotation's
// geometry. It is rendered instead of the stored geometry until the user
// saves or the staged values are confirmed by a reload.
type PendingEdit struct {
	AnnotationID string
	Rect         geometry.Rect
}

// Session owns the ephemeral interaction state of one canvas: mode,
// selection, draft box, staged edit, and the transform-handle registry.
// It is deliberately free of any UI toolkit types so the state machine
// can be driven headless in tests.
type Session struct {
	mode       Mode
	selectedID string

	draft   *DraftBox
	drawing bool

	pending *PendingEdit

	// move state
	moving    bool
	moveStart geometry.Point2D
	moveBase  geometry.Rect

	// resize state
	resizing   bool
	resizeBase geometry.Rect // staged box before this resize, for rollback
	resizeKind HandleKind
	resizeRaw  geometry.Rect // unclamped result of the current drag

	handles map[string][]Handle

	// OnDraftComplete receives the normalized box of a finished draw
	// gesture that passed the minimum-size check. The two-step create
	// (classification confirmation, then the API call) happens upstream.
	OnDraftComplete func(geometry.Rect)
}

// NewSession creates a session in view mode.
func NewSession() *Session {
	return &Session{
		mode:    ModeView,
		handles: make(map[string][]Handle),
	}
}

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// SelectedID returns the selected annotation id, or "".
func (s *Session) SelectedID() string { return s.selectedID }

// SetMode switches modes. Switching away from draw discards any
// in-progress draft; switching away from edit clears the staged edit.
// Entering draw clears the selection.
func (s *Session) SetMode(m Mode) {
	if m == s.mode {
		return
	}
	if s.mode == ModeDraw {
		s.cancelDraw()
	}
	if s.mode == ModeEdit {
		s.clearPending()
	}
	s.mode = m
	if m == ModeDraw {
		s.clearSelection()
	}
}

// Select makes the given annotation the single selected one. Selecting a
// different annotation while an edit is staged discards the staged edit
// silently and moves the handle set to the new selection. Re-selecting
// the same annotation keeps its staged geometry.
func (s *Session) Select(id string, rect geometry.Rect) {
	if s.mode == ModeDraw {
		return
	}
	if s.selectedID != "" && s.selectedID != id {
		s.clearPending()
	}
	s.selectedID = id
	s.assignHandles(id, s.StagedRect(id, rect))
}

// ClearSelection drops selection, handles, and any staged edit.
func (s *Session) ClearSelection() {
	s.clearPending()
	s.clearSelection()
}

func (s *Session) clearSelection() {
	s.selectedID = ""
	s.handles = make(map[string][]Handle)
}

// Handles returns the transform handles for the given annotation id, or
// nil when it does not carry the active handle set.
func (s *Session) Handles(id string) []Handle {
	return s.handles[id]
}

// assignHandles gives the id the only handle set; any prior holder loses
// its handles.
func (s *Session) assignHandles(id string, rect geometry.Rect) {
	corners := rect.Normalized().Corners()
	s.handles = map[string][]Handle{
		id: {
			{Kind: HandleTopLeft, Pos: corners[0], Anchor: corners[2]},
			{Kind: HandleTopRight, Pos: corners[1], Anchor: corners[3]},
			{Kind: HandleBottomRight, Pos: corners[2], Anchor: corners[0]},
			{Kind: HandleBottomLeft, Pos: corners[3], Anchor: corners[1]},
		},
	}
}

// --- draw gesture ---

// Drawing reports whether a draw gesture is in progress.
func (s *Session) Drawing() bool { return s.drawing }

// Draft returns the in-progress draft box, or nil.
func (s *Session) Draft() *DraftBox { return s.draft }

// BeginDraw starts a draft at the given image-space point.
func (s *Session) BeginDraw(p geometry.Point2D) {
	if s.mode != ModeDraw {
		return
	}
	s.drawing = true
	s.draft = &DraftBox{Origin: p}
}

// UpdateDraw recomputes the draft extent from the current pointer point.
func (s *Session) UpdateDraw(p geometry.Point2D) {
	if !s.drawing || s.draft == nil {
		return
	}
	s.draft.Width = p.X - s.draft.Origin.X
	s.draft.Height = p.Y - s.draft.Origin.Y
}

// FinishDraw ends the gesture. A draft larger than the minimum in both
// dimensions is normalized and handed to OnDraftComplete; anything
// smaller is discarded silently.
func (s *Session) FinishDraw() {
	if !s.drawing || s.draft == nil {
		return
	}
	rect := s.draft.Rect()
	s.cancelDraw()

	n := rect.Normalized()
	if n.Width <= minDrawSize || n.Height <= minDrawSize {
		return
	}
	if s.OnDraftComplete != nil {
		s.OnDraftComplete(n)
	}
}

func (s *Session) cancelDraw() {
	s.drawing = false
	s.draft = nil
}

// --- move gesture ---

// Moving reports whether a move drag is in progress.
func (s *Session) Moving() bool { return s.moving }

// BeginMove starts translating the selected annotation. stored is the
// annotation's persisted geometry; an existing staged edit (e.g. from an
// earlier resize) takes precedence so its width/height are preserved.
func (s *Session) BeginMove(stored geometry.Rect, start geometry.Point2D) {
	if s.mode != ModeEdit || s.selectedID == "" {
		return
	}
	s.moving = true
	s.moveStart = start
	s.moveBase = s.StagedRect(s.selectedID, stored)
}

// MoveTo stages the translation for the current pointer point.
func (s *Session) MoveTo(p geometry.Point2D) {
	if !s.moving {
		return
	}
	staged := s.moveBase.Translated(p.Sub(s.moveStart))
	s.stage(staged)
}

// EndMove finishes the drag, leaving the result staged (not persisted).
func (s *Session) EndMove() {
	if !s.moving {
		return
	}
	s.moving = false
	s.refreshHandles()
}

// --- resize gesture ---

// Resizing reports whether a resize drag is in progress.
func (s *Session) Resizing() bool { return s.resizing }

// BeginResize starts dragging one of the selected annotation's handles.
func (s *Session) BeginResize(stored geometry.Rect, kind HandleKind) {
	if s.mode != ModeEdit || s.selectedID == "" {
		return
	}
	s.resizing = true
	s.resizeKind = kind
	s.resizeBase = s.StagedRect(s.selectedID, stored)
	s.resizeRaw = s.resizeBase
}

// ResizeTo recomputes the staged box with the dragged corner at p and the
// opposite corner fixed. The staged result is clamped to the minimum
// size; the raw extent is kept so release can decide to roll back.
func (s *Session) ResizeTo(p geometry.Point2D) {
	if !s.resizing {
		return
	}
	anchor := s.anchorCorner()
	raw := geometry.NewRect(anchor.X, anchor.Y, p.X-anchor.X, p.Y-anchor.Y).Normalized()
	s.resizeRaw = raw

	clamped := raw
	if clamped.Width < minResizeSize {
		clamped.Width = minResizeSize
	}
	if clamped.Height < minResizeSize {
		clamped.Height = minResizeSize
	}
	s.stage(clamped)
}

// EndResize finishes the drag. A release whose raw extent fell below the
// minimum in either dimension rolls the box back to its pre-resize
// geometry instead of committing a clamped sliver.
func (s *Session) EndResize() {
	if !s.resizing {
		return
	}
	s.resizing = false
	if s.resizeRaw.Width < minResizeSize || s.resizeRaw.Height < minResizeSize {
		s.stage(s.resizeBase)
	}
	s.refreshHandles()
}

func (s *Session) anchorCorner() geometry.Point2D {
	corners := s.resizeBase.Normalized().Corners()
	switch s.resizeKind {
	case HandleTopLeft:
		return corners[2]
	case HandleTopRight:
		return corners[3]
	case HandleBottomRight:
		return corners[0]
	default:
		return corners[1]
	}
}

// --- staged edits ---

// Pending returns the staged edit, or nil.
func (s *Session) Pending() *PendingEdit { return s.pending }

// HasUnsaved reports whether the given annotation carries a staged,
// unsaved geometry change.
func (s *Session) HasUnsaved(id string) bool {
	return s.pending != nil && s.pending.AnnotationID == id
}

// StagedRect returns the geometry the canvas (and any panel displaying
// live coordinates) should show for the annotation: the staged edit when
// one exists, the stored geometry otherwise.
func (s *Session) StagedRect(id string, stored geometry.Rect) geometry.Rect {
	if s.HasUnsaved(id) {
		return s.pending.Rect
	}
	return stored
}

func (s *Session) stage(r geometry.Rect) {
	if s.selectedID == "" {
		return
	}
	s.pending = &PendingEdit{AnnotationID: s.selectedID, Rect: r}
	s.refreshHandles()
}

func (s *Session) clearPending() {
	s.pending = nil
}

func (s *Session) refreshHandles() {
	if s.selectedID == "" || s.pending == nil {
		return
	}
	s.assignHandles(s.selectedID, s.pending.Rect)
}

// Reconcile folds a freshly reloaded annotation list into the session:
// a staged edit whose annotation now matches the persisted geometry is
// treated as "save completed" and cleared, and a selection whose
// annotation disappeared (deleted elsewhere) is silently dropped.
func (s *Session) Reconcile(annotations []annotation.Annotation) {
	byID := make(map[string]annotation.Annotation, len(annotations))
	for _, a := range annotations {
		byID[a.ID] = a
	}

	if s.pending != nil {
		if a, ok := byID[s.pending.AnnotationID]; ok {
			if a.Rect().ApproxEqual(s.pending.Rect.Rounded(), 0.5) {
				s.clearPending()
			}
		}
	}

	if s.selectedID != "" {
		if a, ok := byID[s.selectedID]; !ok || !a.IsActive {
			s.ClearSelection()
		}
	}
}
