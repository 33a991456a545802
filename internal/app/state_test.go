package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/internal/api"
)

func TestActiveAnnotationsFiltersSoftDeleted(t *testing.T) {
	s := NewState()
	s.SetAnnotations([]annotation.Annotation{
		{ID: "a1", IsActive: true},
		{ID: "a2", IsActive: false},
		{ID: "a3", IsActive: true},
	})

	active := s.ActiveAnnotations()
	if len(active) != 2 {
		t.Fatalf("active count = %d, want 2", len(active))
	}
	for _, a := range active {
		if !a.IsActive {
			t.Errorf("inactive annotation %s in active list", a.ID)
		}
	}
	// The full list still carries the soft-deleted record.
	if len(s.Annotations()) != 3 {
		t.Errorf("full list = %d, want 3", len(s.Annotations()))
	}
}

func TestByIDReturnsCopy(t *testing.T) {
	s := NewState()
	s.SetAnnotations([]annotation.Annotation{{ID: "a1", BboxX: 10, IsActive: true}})

	got := s.ByID("a1")
	if got == nil {
		t.Fatal("ByID returned nil for existing id")
	}
	got.BboxX = 999
	if s.ByID("a1").BboxX != 10 {
		t.Error("mutation through ByID result leaked into state")
	}
	if s.ByID("missing") != nil {
		t.Error("ByID returned non-nil for unknown id")
	}
}

func TestEventListenersFire(t *testing.T) {
	s := NewState()
	var got []annotation.Annotation
	s.On(EventAnnotationsReloaded, func(data interface{}) {
		got = data.([]annotation.Annotation)
	})

	s.SetAnnotations([]annotation.Annotation{{ID: "a1", IsActive: true}})
	if len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("listener received %+v", got)
	}
}

func TestLoadInspectionFetchesImageAndAnnotations(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/inspections/insp-9/image":
			w.Header().Set("Content-Type", "image/png")
			w.Write(buf.Bytes())
		case "/api/v1/inspections/insp-9/annotations":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"annotations": []annotation.Annotation{
					{ID: "a1", InspectionID: "insp-9", IsActive: true},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, 5*time.Second, api.Session{Token: "t", User: "tester"})
	s := NewState()

	events := 0
	s.On(EventImageLoaded, func(interface{}) { events++ })
	s.On(EventAnnotationsReloaded, func(interface{}) { events++ })

	if err := s.LoadInspection(context.Background(), client, "insp-9"); err != nil {
		t.Fatalf("LoadInspection: %v", err)
	}
	if s.Frame == nil || s.Frame.Width != 64 || s.Frame.Height != 48 {
		t.Errorf("frame = %+v", s.Frame)
	}
	if len(s.ActiveAnnotations()) != 1 {
		t.Errorf("annotations = %+v", s.Annotations())
	}
	if events != 2 {
		t.Errorf("events fired = %d, want 2", events)
	}
}
