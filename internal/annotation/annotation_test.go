package annotation

import (
	"testing"

	"thermo-inspect/pkg/geometry"
)

func TestSetRectNormalizes(t *testing.T) {
	var a Annotation
	a.SetRect(geometry.NewRect(100, 100, -40, -30))

	if a.BboxX != 60 || a.BboxY != 70 {
		t.Errorf("origin = (%v, %v), want (60, 70)", a.BboxX, a.BboxY)
	}
	if a.BboxWidth != 40 || a.BboxHeight != 30 {
		t.Errorf("size = (%v, %v), want (40, 30)", a.BboxWidth, a.BboxHeight)
	}
}

func TestRectRoundTrip(t *testing.T) {
	var a Annotation
	r := geometry.NewRect(12, 34, 56, 78)
	a.SetRect(r)
	if a.Rect() != r {
		t.Errorf("Rect() = %+v, want %+v", a.Rect(), r)
	}
}

func TestValidateComment(t *testing.T) {
	if err := ValidateComment("   "); err == nil {
		t.Error("blank comment accepted")
	}
	if err := ValidateComment("re-measured hotspot"); err != nil {
		t.Errorf("valid comment rejected: %v", err)
	}
}

func TestValidateFaultType(t *testing.T) {
	if err := ValidateFaultType(FaultLooseJoint); err != nil {
		t.Errorf("taxonomy value rejected: %v", err)
	}
	if err := ValidateFaultType("MELTDOWN"); err == nil {
		t.Error("unknown fault type accepted")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(FaultPointOverload); got != "Point Overload" {
		t.Errorf("DisplayName = %q", got)
	}
}
