// Package annotation defines the thermal anomaly annotation records
// exchanged with the inspection backend.
package annotation

import (
	"fmt"
	"strings"
	"time"

	"thermo-inspect/pkg/geometry"
)

// Source identifies who produced an annotation.
type Source string

const (
	SourceAI   Source = "AI_GENERATED"
	SourceUser Source = "USER_CREATED"
)

// PendingID is the transient client-side id carried by an annotation
// whose create request has not yet been acknowledged by the backend.
const PendingID = "pending"

// Fault taxonomy. The authoritative list is owned by the backend; these
// mirror the classifications it currently emits.
const (
	FaultLooseJoint     = "LOOSE_JOINT"
	FaultPointOverload  = "POINT_OVERLOAD"
	FaultFullWireFault  = "FULL_WIRE_OVERLOAD"
	FaultCoolingFailure = "COOLING_FAILURE"
	FaultOther          = "OTHER"
)

// FaultTypes returns the known classifications in display order.
func FaultTypes() []string {
	return []string{
		FaultLooseJoint,
		FaultPointOverload,
		FaultFullWireFault,
		FaultCoolingFailure,
		FaultOther,
	}
}

// Annotation is a rectangle tagged with a fault classification. Geometry
// is in image-native pixels; the backend assigns the id.
type Annotation struct {
	ID              string  `json:"id"`
	InspectionID    string  `json:"inspectionId"`
	BboxX           float64 `json:"bboxX"`
	BboxY           float64 `json:"bboxY"`
	BboxWidth       float64 `json:"bboxWidth"`
	BboxHeight      float64 `json:"bboxHeight"`
	FaultType       string  `json:"faultType"`
	FaultConfidence float64 `json:"faultConfidence,omitempty"`
	Source          Source  `json:"source"`
	IsActive        bool    `json:"isActive"`
	CreatedBy       string  `json:"createdBy,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

// Rect returns the bounding box as a geometry rectangle.
func (a Annotation) Rect() geometry.Rect {
	return geometry.NewRect(a.BboxX, a.BboxY, a.BboxWidth, a.BboxHeight)
}

// SetRect stores the rectangle into the bbox fields.
func (a *Annotation) SetRect(r geometry.Rect) {
	n := r.Normalized()
	a.BboxX = n.X
	a.BboxY = n.Y
	a.BboxWidth = n.Width
	a.BboxHeight = n.Height
}

// AuditEntry is one row of an annotation's change history.
type AuditEntry struct {
	ID           string    `json:"id"`
	AnnotationID string    `json:"annotationId"`
	Action       string    `json:"action"`
	Comment      string    `json:"comment,omitempty"`
	Actor        string    `json:"actor,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ValidateComment checks the human-readable reason required for deletes
// and classification changes. Validation happens before any network call.
func ValidateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return fmt.Errorf("a comment explaining the change is required")
	}
	return nil
}

// ValidateFaultType rejects classifications outside the known taxonomy.
func ValidateFaultType(faultType string) error {
	for _, ft := range FaultTypes() {
		if ft == faultType {
			return nil
		}
	}
	return fmt.Errorf("unknown fault type %q", faultType)
}

// DisplayName renders a taxonomy constant as a human-readable label.
func DisplayName(faultType string) string {
	words := strings.Split(strings.ToLower(faultType), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
