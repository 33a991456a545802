// Package app provides application state and the event bus tying the UI
// panels together.
package app

import (
	"context"
	"sync"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/internal/api"
	"thermo-inspect/internal/imageio"
)

// State holds the loaded inspection: its thermal frame, the annotation
// list as last fetched from the backend, and the event listeners.
type State struct {
	mu sync.RWMutex

	InspectionID string
	Frame        *imageio.Frame

	annotations []annotation.Annotation

	listeners map[EventType][]EventListener
}

// EventType identifies application events.
type EventType int

const (
	EventInspectionLoaded EventType = iota
	EventImageLoaded
	EventAnnotationsReloaded
	EventSelectionChanged
	EventStatus
)

// EventListener is called when an event occurs. Listeners run on the
// emitter's goroutine; UI listeners must marshal to the main thread
// themselves.
type EventListener func(data interface{})

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadInspection fetches the inspection image and annotations from the
// backend and installs them. The previous inspection's data is replaced
// only after both fetches succeed.
func (s *State) LoadInspection(ctx context.Context, client *api.Client, inspectionID string) error {
	raw, err := client.FetchImage(ctx, inspectionID)
	if err != nil {
		return err
	}
	frame, err := imageio.Decode(raw)
	if err != nil {
		return err
	}
	list, err := client.ListAnnotations(ctx, inspectionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.InspectionID = inspectionID
	s.Frame = frame
	s.annotations = list
	s.mu.Unlock()

	s.Emit(EventInspectionLoaded, inspectionID)
	s.Emit(EventImageLoaded, frame)
	s.Emit(EventAnnotationsReloaded, list)
	return nil
}

// ReloadAnnotations refetches the annotation list for the current
// inspection. Called after every create, edit, or delete so the canvas
// converges on what the backend persisted.
func (s *State) ReloadAnnotations(ctx context.Context, client *api.Client) error {
	s.mu.RLock()
	id := s.InspectionID
	s.mu.RUnlock()
	if id == "" {
		return nil
	}

	list, err := client.ListAnnotations(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.annotations = list
	s.mu.Unlock()

	s.Emit(EventAnnotationsReloaded, list)
	return nil
}

// SetAnnotations replaces the annotation list directly. Used by tests
// and by callers that already hold a fresh list.
func (s *State) SetAnnotations(list []annotation.Annotation) {
	s.mu.Lock()
	s.annotations = list
	s.mu.Unlock()
	s.Emit(EventAnnotationsReloaded, list)
}

// Annotations returns a copy of the full annotation list, including
// soft-deleted records.
func (s *State) Annotations() []annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]annotation.Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// ActiveAnnotations returns the annotations that should render: active
// records only, soft-deleted ones filtered out.
func (s *State) ActiveAnnotations() []annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]annotation.Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}

// ByID finds an annotation by id, or nil.
func (s *State) ByID(id string) *annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			a := s.annotations[i]
			return &a
		}
	}
	return nil
}
