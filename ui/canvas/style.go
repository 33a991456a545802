package canvas

import (
	"fmt"
	"image/color"

	"thermo-inspect/internal/annotation"
)

// RenderIntent tags how an annotation should be presented. It is computed
// once per annotation per frame and mapped to a Style by a pure function,
// replacing scattered conditionals on (mode, selection, source).
type RenderIntent int

const (
	IntentAIGenerated RenderIntent = iota
	IntentUserCreated
	IntentSelected
	IntentEditing
)

// Style is the resolved visual treatment for one annotation box.
type Style struct {
	Stroke      color.RGBA
	StrokeWidth float64 // base width in screen pixels at zoom 1
	ShadowBlur  float64 // glow radius at zoom 1; 0 disables the glow
	Dashed      bool
}

// IntentFor classifies an annotation. The caller has already filtered out
// inactive records, so the classification only distinguishes editing,
// selection, and source.
func IntentFor(mode Mode, selectedID string, a annotation.Annotation) RenderIntent {
	if a.ID == selectedID {
		if mode == ModeEdit {
			return IntentEditing
		}
		return IntentSelected
	}
	if a.Source == annotation.SourceAI {
		return IntentAIGenerated
	}
	return IntentUserCreated
}

// StyleFor maps a render intent to its style record.
func StyleFor(intent RenderIntent) Style {
	switch intent {
	case IntentEditing:
		return Style{
			Stroke:      color.RGBA{R: 0xFF, G: 0xD5, B: 0x00, A: 0xFF},
			StrokeWidth: 3,
			ShadowBlur:  6,
		}
	case IntentSelected:
		return Style{
			Stroke:      color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
			StrokeWidth: 3,
		}
	case IntentUserCreated:
		return Style{
			Stroke:      color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF},
			StrokeWidth: 2,
		}
	default: // IntentAIGenerated
		return Style{
			Stroke:      color.RGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF},
			StrokeWidth: 2,
		}
	}
}

// draftStyle is the dashed rubber-band box while drawing.
var draftStyle = Style{
	Stroke:      color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF},
	StrokeWidth: 2,
	Dashed:      true,
}

// LabelFor renders the box label: AI annotations carry their confidence
// percentage, user annotations show the fault type alone.
func LabelFor(a annotation.Annotation) string {
	name := annotation.DisplayName(a.FaultType)
	if a.Source == annotation.SourceAI {
		return fmt.Sprintf("%s %.0f%%", name, a.FaultConfidence*100)
	}
	return name
}

// DisplayStrokeWidth scales a base stroke width inversely by the zoom
// factor so the drawn weight stays constant in screen space. Applied in
// image units before the viewport scale multiplies them back up.
func DisplayStrokeWidth(base, zoom float64) float64 {
	if zoom <= 0 {
		zoom = 1
	}
	return base / zoom
}
