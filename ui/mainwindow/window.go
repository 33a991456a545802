// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log/slog"

	"thermo-inspect/internal/api"
	"thermo-inspect/internal/app"
	"thermo-inspect/internal/version"
	"thermo-inspect/pkg/geometry"
	"thermo-inspect/ui/canvas"
	"thermo-inspect/ui/dialogs"
	"thermo-inspect/ui/panels"
	"thermo-inspect/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window. It owns the controller
// wiring between the canvas interaction state, the side panel, and the
// backend client.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	client *api.Client
	log    *slog.Logger
	prefs  *prefs.Prefs

	canvas     *canvas.AnnotationCanvas
	sidePanel  *panels.AnnotationPanel
	comparison *panels.ComparisonPanel
	statusBar  *widget.Label
	zoomLabel  *widget.Label
	modeRadio  *widget.RadioGroup

	inspectionEntry *widget.Entry
}

// New creates the main window and wires all components together.
func New(fyneApp fyne.App, state *app.State, client *api.Client, log *slog.Logger, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Thermo Inspect " + version.Version)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		client: client,
		log:    log,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupEventHandlers()

	w := p.FloatWithFallback(prefs.KeyWindowWidth, 1280)
	h := p.FloatWithFallback(prefs.KeyWindowHeight, 800)
	win.Resize(fyne.NewSize(float32(w), float32(h)))
	win.SetOnClosed(func() {
		size := win.Canvas().Size()
		p.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		p.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		if err := p.Save(); err != nil {
			log.Warn("saving preferences failed", "error", err)
		}
	})

	return mw
}

// setupUI creates the main layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas()
	mw.sidePanel = panels.NewAnnotationPanel(mw.state)
	mw.comparison = panels.NewComparisonPanel()
	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.canvas)

	annotate := container.NewHSplit(canvasArea, mw.sidePanel)
	annotate.SetOffset(0.75)

	tabs := container.NewAppTabs(
		container.NewTabItem("Annotate", annotate),
		container.NewTabItem("Compare", mw.comparison),
	)

	content := container.NewBorder(nil, container.NewPadded(mw.statusBar), nil, nil, tabs)
	mw.SetContent(content)
}

// createToolbar builds the inspection loader, mode switch, and zoom
// controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.inspectionEntry = widget.NewEntry()
	mw.inspectionEntry.SetPlaceHolder("Inspection ID")
	if last := mw.prefs.String(prefs.KeyLastInspection); last != "" {
		mw.inspectionEntry.SetText(last)
	}
	loadBtn := widget.NewButton("Load", func() {
		mw.loadInspection(mw.inspectionEntry.Text)
	})
	mw.inspectionEntry.OnSubmitted = func(id string) { mw.loadInspection(id) }

	mw.modeRadio = widget.NewRadioGroup([]string{"View", "Draw", "Edit"}, func(sel string) {
		switch sel {
		case "Draw":
			mw.canvas.SetMode(canvas.ModeDraw)
			mw.setStatus("Draw mode: drag to mark a fault region")
		case "Edit":
			mw.canvas.SetMode(canvas.ModeEdit)
			mw.setStatus("Edit mode: drag the box to move, corners to resize")
		default:
			mw.canvas.SetMode(canvas.ModeView)
			mw.setStatus("Ready")
		}
		mw.sidePanel.RefreshDetail()
	})
	mw.modeRadio.Horizontal = true
	mw.modeRadio.SetSelected("View")

	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	resetBtn := widget.NewButton("Reset", mw.canvas.ResetView)

	return container.NewHBox(
		mw.inspectionEntry,
		loadBtn,
		widget.NewSeparator(),
		mw.modeRadio,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		mw.zoomLabel,
		zoomInBtn,
		resetBtn,
	)
}

// setupEventHandlers wires state events and component callbacks.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		mw.canvas.SetFrame(mw.state.Frame)
		mw.comparison.SetFrame(mw.state.Frame)
	})
	mw.state.On(app.EventAnnotationsReloaded, func(interface{}) {
		mw.canvas.SetAnnotations(mw.state.ActiveAnnotations())
	})

	mw.canvas.OnSelect(func(id string) {
		mw.sidePanel.SetSelected(id)
		mw.state.Emit(app.EventSelectionChanged, id)
	})
	mw.canvas.OnStagedChange(func() {
		mw.sidePanel.RefreshDetail()
	})
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	mw.canvas.Session().OnDraftComplete = mw.onDraftComplete

	mw.sidePanel.StagedRect = mw.canvas.Session().StagedRect
	mw.sidePanel.HasUnsaved = mw.canvas.Session().HasUnsaved
	mw.sidePanel.OnSelect = func(id string) {
		if a := mw.state.ByID(id); a != nil {
			mw.canvas.Session().Select(id, a.Rect())
			mw.canvas.Refresh()
		}
	}
	mw.sidePanel.OnSave = mw.onSave
	mw.sidePanel.OnReclassify = mw.onReclassify
	mw.sidePanel.OnDelete = mw.onDelete
	mw.sidePanel.OnHistory = mw.onHistory
}

func (mw *MainWindow) loadInspection(id string) {
	if id == "" {
		mw.setStatus("Enter an inspection id to load")
		return
	}
	mw.setStatus("Loading inspection " + id)
	if err := mw.state.LoadInspection(context.Background(), mw.client, id); err != nil {
		mw.log.Error("loading inspection failed", "inspection", id, "error", err)
		dialog.ShowError(err, mw.Window)
		mw.setStatus("Load failed")
		return
	}
	mw.prefs.SetString(prefs.KeyLastInspection, id)
	mw.setStatus(fmt.Sprintf("Loaded inspection %s (%d annotations)",
		id, len(mw.state.ActiveAnnotations())))
}

// onDraftComplete runs after a draw gesture produced a box above the
// minimum size. The box is only persisted once the classification
// dialog is confirmed; cancelling discards it.
func (mw *MainWindow) onDraftComplete(rect geometry.Rect) {
	dialogs.ShowFaultType(mw.Window, func(faultType string) {
		created, err := mw.client.CreateAnnotation(context.Background(),
			mw.state.InspectionID, rect, faultType, 0)
		if err != nil {
			mw.log.Error("creating annotation failed", "error", err)
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.reloadAnnotations()
		mw.setStatus("Created annotation " + created.ID)
	}, func() {
		mw.setStatus("Annotation discarded")
	})
}

// onSave persists staged geometry for one annotation. On failure the
// staged state is kept so the user can retry.
func (mw *MainWindow) onSave(id string) {
	session := mw.canvas.Session()
	if !session.HasUnsaved(id) {
		mw.setStatus("No unsaved changes")
		return
	}
	a := mw.state.ByID(id)
	if a == nil {
		return
	}
	staged := session.StagedRect(id, a.Rect())
	if _, err := mw.client.EditAnnotation(context.Background(), id, staged, "", ""); err != nil {
		mw.log.Error("saving annotation failed", "annotation", id, "error", err)
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.reloadAnnotations()
	mw.setStatus("Saved annotation " + id)
}

func (mw *MainWindow) onReclassify(id string) {
	a := mw.state.ByID(id)
	if a == nil {
		return
	}
	dialogs.ShowReclassify(mw.Window, a.FaultType, func(faultType, comment string) {
		staged := mw.canvas.Session().StagedRect(id, a.Rect())
		if _, err := mw.client.EditAnnotation(context.Background(), id, staged, faultType, comment); err != nil {
			mw.log.Error("reclassifying annotation failed", "annotation", id, "error", err)
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.reloadAnnotations()
		mw.setStatus("Reclassified annotation " + id)
	})
}

func (mw *MainWindow) onDelete(id string) {
	dialogs.ShowComment(mw.Window, "Delete Annotation", "Delete", func(comment string) {
		if err := mw.client.DeleteAnnotation(context.Background(), id, comment); err != nil {
			mw.log.Error("deleting annotation failed", "annotation", id, "error", err)
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.reloadAnnotations()
		mw.setStatus("Deleted annotation " + id)
	})
}

func (mw *MainWindow) onHistory(id string) {
	entries, err := mw.client.GetAnnotationHistory(context.Background(), id)
	if err != nil {
		mw.log.Error("fetching history failed", "annotation", id, "error", err)
		dialog.ShowError(err, mw.Window)
		return
	}
	dialogs.ShowHistory(mw.Window, entries)
}

func (mw *MainWindow) reloadAnnotations() {
	if err := mw.state.ReloadAnnotations(context.Background(), mw.client); err != nil {
		mw.log.Error("reloading annotations failed", "error", err)
		mw.setStatus("Reload failed; showing stale annotations")
	}
}

func (mw *MainWindow) setStatus(text string) {
	mw.statusBar.SetText(text)
}

// PromptRestart asks whether to restart into a newer binary.
func (mw *MainWindow) PromptRestart(onRestart, onDecline func()) {
	dialog.ShowConfirm("Update Available",
		"A newer build of the application was detected. Restart now?",
		func(ok bool) {
			if ok {
				onRestart()
			} else {
				onDecline()
			}
		}, mw.Window)
}
