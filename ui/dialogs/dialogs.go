// Package dialogs provides the modal prompts used by the annotation
// workflow.
package dialogs

import (
	"errors"
	"strings"

	"thermo-inspect/internal/annotation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ShowFaultType prompts for a fault classification after a box has been
// drawn. Confirming invokes onConfirm with the selected fault type code;
// cancelling discards the draft.
func ShowFaultType(win fyne.Window, onConfirm func(faultType string), onCancel func()) {
	codes := annotation.FaultTypes()
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = annotation.DisplayName(c)
	}

	sel := widget.NewSelect(names, nil)
	sel.SetSelectedIndex(len(codes) - 1) // default to Other

	content := widget.NewForm(widget.NewFormItem("Fault type", sel))

	d := dialog.NewCustomConfirm("New Annotation", "Create", "Cancel", content,
		func(ok bool) {
			if !ok {
				if onCancel != nil {
					onCancel()
				}
				return
			}
			idx := sel.SelectedIndex()
			if idx < 0 {
				idx = len(codes) - 1
			}
			onConfirm(codes[idx])
		}, win)
	d.Show()
}

// ShowComment prompts for a mandatory audit comment. The submit button
// stays disabled until the comment is non-empty.
func ShowComment(win fyne.Window, title, action string, onSubmit func(comment string)) {
	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Reason for this change")
	entry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("comment is required")
		}
		return nil
	}

	items := []*widget.FormItem{widget.NewFormItem("Comment", entry)}
	d := dialog.NewForm(title, action, "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		onSubmit(strings.TrimSpace(entry.Text))
	}, win)
	d.Resize(fyne.NewSize(420, 200))
	d.Show()
}

// ShowReclassify prompts for a new fault type together with the mandatory
// comment explaining the change.
func ShowReclassify(win fyne.Window, current string, onSubmit func(faultType, comment string)) {
	codes := annotation.FaultTypes()
	names := make([]string, len(codes))
	selectedIdx := len(codes) - 1
	for i, c := range codes {
		names[i] = annotation.DisplayName(c)
		if c == current {
			selectedIdx = i
		}
	}

	sel := widget.NewSelect(names, nil)
	sel.SetSelectedIndex(selectedIdx)

	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Reason for reclassification")
	entry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("comment is required")
		}
		return nil
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Fault type", sel),
		widget.NewFormItem("Comment", entry),
	}
	d := dialog.NewForm("Reclassify Annotation", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		idx := sel.SelectedIndex()
		if idx < 0 {
			idx = selectedIdx
		}
		onSubmit(codes[idx], strings.TrimSpace(entry.Text))
	}, win)
	d.Resize(fyne.NewSize(420, 240))
	d.Show()
}

// ShowHistory displays the audit trail for an annotation.
func ShowHistory(win fyne.Window, entries []annotation.AuditEntry) {
	if len(entries) == 0 {
		dialog.ShowInformation("History", "No recorded changes.", win)
		return
	}

	list := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			e := entries[i]
			o.(*widget.Label).SetText(e.Timestamp.Format("2006-01-02 15:04") +
				"  " + e.Action + " by " + e.Actor + ": " + e.Comment)
		},
	)

	d := dialog.NewCustom("History", "Close", list, win)
	d.Resize(fyne.NewSize(520, 320))
	d.Show()
}
