// Package panels contains the side panels of the main window.
package panels

import (
	"fmt"
	"image"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/internal/app"
	"thermo-inspect/internal/imageio"
	"thermo-inspect/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// AnnotationPanel lists the active annotations of the loaded inspection
// and shows the selected annotation's detail, including staged geometry
// that has not been saved yet.
type AnnotationPanel struct {
	widget.BaseWidget

	state *app.State

	items      []annotation.Annotation
	selectedID string

	list       *widget.List
	thumb      *fynecanvas.Image
	typeLabel  *widget.Label
	geomLabel  *widget.Label
	metaLabel  *widget.Label
	savedLabel *widget.Label

	saveBtn       *widget.Button
	reclassifyBtn *widget.Button
	deleteBtn     *widget.Button
	historyBtn    *widget.Button

	// Selection changes made by clicking a list row.
	OnSelect func(id string)

	OnSave       func(id string)
	OnReclassify func(id string)
	OnDelete     func(id string)
	OnHistory    func(id string)

	// StagedRect and HasUnsaved are supplied by the window so the detail
	// view reflects uncommitted edits on the canvas.
	StagedRect func(id string, stored geometry.Rect) geometry.Rect
	HasUnsaved func(id string) bool
}

// NewAnnotationPanel creates the panel and subscribes it to state events.
func NewAnnotationPanel(state *app.State) *AnnotationPanel {
	p := &AnnotationPanel{
		state:      state,
		thumb:      &fynecanvas.Image{FillMode: fynecanvas.ImageFillContain},
		typeLabel:  widget.NewLabel(""),
		geomLabel:  widget.NewLabel(""),
		metaLabel:  widget.NewLabel(""),
		savedLabel: widget.NewLabel(""),
	}

	p.list = widget.NewList(
		func() int { return len(p.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			a := p.items[i]
			text := annotation.DisplayName(a.FaultType)
			if a.Source == annotation.SourceAI {
				text = fmt.Sprintf("%s %.0f%%", text, a.FaultConfidence*100)
			}
			if p.HasUnsaved != nil && p.HasUnsaved(a.ID) {
				text += " *"
			}
			o.(*widget.Label).SetText(text)
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		if i < 0 || i >= len(p.items) {
			return
		}
		p.selectedID = p.items[i].ID
		p.refreshDetail()
		if p.OnSelect != nil {
			p.OnSelect(p.selectedID)
		}
	}

	p.saveBtn = widget.NewButton("Save", func() { p.invoke(p.OnSave) })
	p.reclassifyBtn = widget.NewButton("Reclassify", func() { p.invoke(p.OnReclassify) })
	p.deleteBtn = widget.NewButton("Delete", func() { p.invoke(p.OnDelete) })
	p.historyBtn = widget.NewButton("History", func() { p.invoke(p.OnHistory) })

	state.On(app.EventAnnotationsReloaded, func(interface{}) {
		p.Reload()
	})

	p.Reload()
	p.ExtendBaseWidget(p)
	return p
}

func (p *AnnotationPanel) invoke(cb func(id string)) {
	if cb != nil && p.selectedID != "" {
		cb(p.selectedID)
	}
}

// Reload refreshes the list from state and re-resolves the selection.
func (p *AnnotationPanel) Reload() {
	p.items = p.state.ActiveAnnotations()
	if p.selectedID != "" && p.find(p.selectedID) < 0 {
		p.selectedID = ""
	}
	if p.list != nil {
		p.list.Refresh()
	}
	p.refreshDetail()
}

// SetSelected reflects a selection made on the canvas. An empty id
// clears the detail view.
func (p *AnnotationPanel) SetSelected(id string) {
	p.selectedID = id
	idx := p.find(id)
	if idx >= 0 {
		p.list.Select(idx)
	} else {
		p.list.UnselectAll()
	}
	p.refreshDetail()
}

// RefreshDetail re-renders the detail labels, picking up staged geometry
// changes after a move or resize.
func (p *AnnotationPanel) RefreshDetail() {
	p.refreshDetail()
	p.list.Refresh()
}

func (p *AnnotationPanel) find(id string) int {
	for i, a := range p.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (p *AnnotationPanel) refreshDetail() {
	idx := p.find(p.selectedID)
	if idx < 0 {
		p.typeLabel.SetText("No annotation selected")
		p.geomLabel.SetText("")
		p.metaLabel.SetText("")
		p.savedLabel.SetText("")
		p.thumb.Image = nil
		p.thumb.Refresh()
		p.setButtonsEnabled(false)
		return
	}

	a := p.items[idx]
	name := annotation.DisplayName(a.FaultType)
	if a.Source == annotation.SourceAI {
		p.typeLabel.SetText(fmt.Sprintf("%s (AI, %.0f%%)", name, a.FaultConfidence*100))
	} else {
		p.typeLabel.SetText(fmt.Sprintf("%s (%s)", name, a.CreatedBy))
	}

	rect := a.Rect()
	if p.StagedRect != nil {
		rect = p.StagedRect(a.ID, rect)
	}
	p.geomLabel.SetText(fmt.Sprintf("x %.0f  y %.0f  w %.0f  h %.0f",
		rect.X, rect.Y, rect.Width, rect.Height))
	p.updateThumbnail(rect)

	if a.UpdatedAt != "" {
		p.metaLabel.SetText("Updated " + a.UpdatedAt)
	} else {
		p.metaLabel.SetText("")
	}

	if p.HasUnsaved != nil && p.HasUnsaved(a.ID) {
		p.savedLabel.SetText("Unsaved changes")
	} else {
		p.savedLabel.SetText("")
	}
	p.setButtonsEnabled(true)
}

// updateThumbnail crops the annotation's region out of the frame for the
// detail preview. The crop follows staged geometry so it tracks edits.
func (p *AnnotationPanel) updateThumbnail(rect geometry.Rect) {
	frame := p.state.Frame
	if frame == nil || frame.Image == nil {
		p.thumb.Image = nil
		p.thumb.Refresh()
		return
	}
	ri := rect.Normalized().Rounded()
	region := image.Rect(int(ri.X), int(ri.Y), int(ri.X+ri.Width), int(ri.Y+ri.Height))
	crop := imageio.CropRegion(frame.Image, region)
	p.thumb.Image = imageio.Thumbnail(crop, 160)
	p.thumb.Refresh()
}

func (p *AnnotationPanel) setButtonsEnabled(on bool) {
	for _, b := range []*widget.Button{p.saveBtn, p.reclassifyBtn, p.deleteBtn, p.historyBtn} {
		if on {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// CreateRenderer implements fyne.Widget.
func (p *AnnotationPanel) CreateRenderer() fyne.WidgetRenderer {
	p.thumb.SetMinSize(fyne.NewSize(160, 120))
	detail := container.NewVBox(
		p.thumb,
		p.typeLabel,
		p.geomLabel,
		p.metaLabel,
		p.savedLabel,
		container.NewGridWithColumns(2, p.saveBtn, p.reclassifyBtn),
		container.NewGridWithColumns(2, p.deleteBtn, p.historyBtn),
	)
	return widget.NewSimpleRenderer(container.NewBorder(nil, detail, nil, nil, p.list))
}
