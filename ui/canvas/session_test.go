package canvas

import (
	"testing"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func TestDrawGestureEmitsNormalizedBox(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeDraw)

	var got *geometry.Rect
	s.OnDraftComplete = func(r geometry.Rect) { got = &r }

	// Drag up and to the left.
	s.BeginDraw(pt(220, 120))
	s.UpdateDraw(pt(20, 20))
	s.FinishDraw()

	if got == nil {
		t.Fatal("draft above minimum size was discarded")
	}
	want := geometry.NewRect(20, 20, 200, 100)
	if *got != want {
		t.Errorf("draft = %+v, want %+v", *got, want)
	}
	if s.Draft() != nil || s.Drawing() {
		t.Error("draft state not cleared after finish")
	}
}

func TestTinyDrawDiscardedSilently(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeDraw)

	calls := 0
	s.OnDraftComplete = func(geometry.Rect) { calls++ }

	s.BeginDraw(pt(100, 100))
	s.UpdateDraw(pt(108, 109))
	s.FinishDraw()

	if calls != 0 {
		t.Errorf("tiny draft invoked create path %d times", calls)
	}
}

func TestDrawRequiresBothDimensionsAboveMinimum(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeDraw)

	calls := 0
	s.OnDraftComplete = func(geometry.Rect) { calls++ }

	// Wide but too short.
	s.BeginDraw(pt(0, 0))
	s.UpdateDraw(pt(200, 10))
	s.FinishDraw()

	if calls != 0 {
		t.Errorf("draft with height <= 10 accepted")
	}
}

func TestModeSwitchDiscardsDraftMidDrag(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeDraw)

	calls := 0
	s.OnDraftComplete = func(geometry.Rect) { calls++ }

	s.BeginDraw(pt(0, 0))
	s.UpdateDraw(pt(300, 300))
	s.SetMode(ModeView)

	if s.Draft() != nil {
		t.Error("draft survived mode switch")
	}
	// A stray pointer-up after the switch must not create anything.
	s.FinishDraw()
	if calls != 0 {
		t.Errorf("discarded draft still invoked create path")
	}
}

func TestEnteringDrawClearsSelection(t *testing.T) {
	s := NewSession()
	s.Select("a1", geometry.NewRect(0, 0, 50, 50))
	if s.SelectedID() != "a1" {
		t.Fatal("selection not set")
	}
	s.SetMode(ModeDraw)
	if s.SelectedID() != "" {
		t.Error("selection survived switch to draw mode")
	}
}

func TestMoveStagesWithoutCommitting(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)

	s.BeginMove(stored, pt(110, 110))
	s.MoveTo(pt(160, 130))
	s.EndMove()

	if !s.HasUnsaved("a7") {
		t.Fatal("move left nothing staged")
	}
	want := geometry.NewRect(150, 120, 40, 30)
	if got := s.StagedRect("a7", stored); got != want {
		t.Errorf("staged = %+v, want %+v", got, want)
	}
}

func TestMovePreservesStagedSizeFromEarlierResize(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)

	// Resize first: drag bottom-right corner out to 80x60.
	s.BeginResize(stored, HandleBottomRight)
	s.ResizeTo(pt(180, 160))
	s.EndResize()

	// Then move. The staged width/height must survive.
	s.BeginMove(stored, pt(110, 110))
	s.MoveTo(pt(120, 115))
	s.EndMove()

	got := s.StagedRect("a7", stored)
	if got.Width != 80 || got.Height != 60 {
		t.Errorf("staged size = (%v, %v), want (80, 60)", got.Width, got.Height)
	}
	if got.X != 110 || got.Y != 105 {
		t.Errorf("staged origin = (%v, %v), want (110, 105)", got.X, got.Y)
	}
}

func TestResizeBelowMinimumRollsBack(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)

	s.BeginResize(stored, HandleBottomRight)
	s.ResizeTo(pt(112, 108)) // 12x8, below the 20px minimum
	s.EndResize()

	if got := s.StagedRect("a7", stored); got != stored {
		t.Errorf("resize below minimum not rolled back: %+v", got)
	}
}

func TestResizeClampsDuringDrag(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)

	s.BeginResize(stored, HandleBottomRight)
	s.ResizeTo(pt(105, 103))

	got := s.StagedRect("a7", stored)
	if got.Width < minResizeSize || got.Height < minResizeSize {
		t.Errorf("staged box below clamp during drag: %+v", got)
	}
}

func TestReselectionDiscardsStagedEdit(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)
	s.BeginMove(stored, pt(0, 0))
	s.MoveTo(pt(50, 0))
	s.EndMove()

	s.Select("a9", geometry.NewRect(0, 0, 60, 60))

	if s.Pending() != nil {
		t.Error("staged edit survived reselection")
	}
	if s.Handles("a7") != nil {
		t.Error("previous selection kept its handles")
	}
	if s.Handles("a9") == nil {
		t.Error("new selection did not receive handles")
	}
}

func TestLeavingEditClearsPending(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)
	s.BeginMove(stored, pt(0, 0))
	s.MoveTo(pt(25, 25))
	s.EndMove()

	s.SetMode(ModeView)

	if s.Pending() != nil {
		t.Error("pending edit survived leaving edit mode")
	}
}

func TestReconcileClearsPendingOnMatchingReload(t *testing.T) {
	s := NewSession()
	s.SetMode(ModeEdit)
	stored := geometry.NewRect(100, 100, 40, 30)
	s.Select("a7", stored)
	s.BeginMove(stored, pt(100, 100))
	s.MoveTo(pt(150, 120))
	s.EndMove()

	// Reload still shows the old geometry: staged values stay, avoiding
	// a visible snap-back while the save is in flight.
	old := annotation.Annotation{ID: "a7", BboxX: 100, BboxY: 100, BboxWidth: 40, BboxHeight: 30, IsActive: true}
	s.Reconcile([]annotation.Annotation{old})
	if s.Pending() == nil {
		t.Fatal("pending cleared before reload confirmed the save")
	}

	// Reload now matches the staged geometry: treated as save completed.
	saved := annotation.Annotation{ID: "a7", BboxX: 150, BboxY: 120, BboxWidth: 40, BboxHeight: 30, IsActive: true}
	s.Reconcile([]annotation.Annotation{saved})
	if s.Pending() != nil {
		t.Error("pending not cleared after confirming reload")
	}
	if s.SelectedID() != "a7" {
		t.Error("selection lost during reconcile")
	}
}

func TestReconcileClearsStaleSelection(t *testing.T) {
	s := NewSession()
	s.Select("gone", geometry.NewRect(0, 0, 50, 50))

	s.Reconcile([]annotation.Annotation{
		{ID: "other", IsActive: true},
	})

	if s.SelectedID() != "" {
		t.Error("stale selection not cleared")
	}
}

func TestReconcileClearsSoftDeletedSelection(t *testing.T) {
	s := NewSession()
	s.Select("a1", geometry.NewRect(0, 0, 50, 50))

	s.Reconcile([]annotation.Annotation{
		{ID: "a1", IsActive: false},
	})

	if s.SelectedID() != "" {
		t.Error("selection kept on soft-deleted annotation")
	}
}

func TestOnlyOneHandleSetAtATime(t *testing.T) {
	s := NewSession()
	s.Select("a1", geometry.NewRect(0, 0, 50, 50))
	s.Select("a2", geometry.NewRect(10, 10, 50, 50))

	if s.Handles("a1") != nil {
		t.Error("a1 kept handles after a2 was selected")
	}
	handles := s.Handles("a2")
	if len(handles) != 4 {
		t.Fatalf("a2 has %d handles, want 4", len(handles))
	}
	// Bottom-right handle anchors at the top-left corner.
	for _, h := range handles {
		if h.Kind == HandleBottomRight {
			if h.Anchor != pt(10, 10) {
				t.Errorf("bottom-right anchor = %+v, want (10,10)", h.Anchor)
			}
			if h.Pos != pt(60, 60) {
				t.Errorf("bottom-right pos = %+v, want (60,60)", h.Pos)
			}
		}
	}
}

func TestDrawIgnoredOutsideDrawMode(t *testing.T) {
	s := NewSession()
	s.BeginDraw(pt(0, 0))
	if s.Drawing() {
		t.Error("draw gesture started in view mode")
	}
}
