package canvas

import (
	"testing"

	"thermo-inspect/internal/annotation"
)

func TestIntentForEditingOverridesSource(t *testing.T) {
	a := annotation.Annotation{ID: "a1", Source: annotation.SourceAI}
	if got := IntentFor(ModeEdit, "a1", a); got != IntentEditing {
		t.Errorf("intent = %v, want IntentEditing", got)
	}
}

func TestIntentForSelection(t *testing.T) {
	a := annotation.Annotation{ID: "a1", Source: annotation.SourceUser}
	if got := IntentFor(ModeView, "a1", a); got != IntentSelected {
		t.Errorf("intent = %v, want IntentSelected", got)
	}
}

func TestIntentForBySource(t *testing.T) {
	ai := annotation.Annotation{ID: "a1", Source: annotation.SourceAI}
	user := annotation.Annotation{ID: "a2", Source: annotation.SourceUser}

	if got := IntentFor(ModeView, "", ai); got != IntentAIGenerated {
		t.Errorf("AI intent = %v", got)
	}
	if got := IntentFor(ModeView, "", user); got != IntentUserCreated {
		t.Errorf("user intent = %v", got)
	}
}

func TestStyleForIsDeterministic(t *testing.T) {
	intents := []RenderIntent{IntentAIGenerated, IntentUserCreated, IntentSelected, IntentEditing}
	seen := make(map[[4]uint8]RenderIntent)
	for _, in := range intents {
		st := StyleFor(in)
		key := [4]uint8{st.Stroke.R, st.Stroke.G, st.Stroke.B, st.Stroke.A}
		if prev, dup := seen[key]; dup {
			t.Errorf("intent %v and %v share a stroke color", prev, in)
		}
		seen[key] = in
	}
	if StyleFor(IntentEditing).ShadowBlur == 0 {
		t.Error("editing style has no glow")
	}
}

func TestLabelForIncludesConfidenceForAI(t *testing.T) {
	ai := annotation.Annotation{FaultType: annotation.FaultLooseJoint, FaultConfidence: 0.87, Source: annotation.SourceAI}
	if got := LabelFor(ai); got != "Loose Joint 87%" {
		t.Errorf("AI label = %q", got)
	}

	user := annotation.Annotation{FaultType: annotation.FaultOther, Source: annotation.SourceUser}
	if got := LabelFor(user); got != "Other" {
		t.Errorf("user label = %q", got)
	}
}

func TestDisplayStrokeWidthScalesInversely(t *testing.T) {
	if got := DisplayStrokeWidth(3, 2); got != 1.5 {
		t.Errorf("DisplayStrokeWidth(3, 2) = %v", got)
	}
	// Degenerate zoom falls back rather than dividing by zero.
	if got := DisplayStrokeWidth(3, 0); got != 3 {
		t.Errorf("DisplayStrokeWidth(3, 0) = %v", got)
	}
}
