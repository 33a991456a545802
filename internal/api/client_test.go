package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"thermo-inspect/pkg/geometry"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(t *testing.T, status int, payload interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func TestListAnnotationsSendsBearerToken(t *testing.T) {
	client := NewClient("https://example.com", time.Second, Session{Token: "tok-123", User: "inspector"})
	client.httpClient = newTestClient(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Fatalf("Authorization = %q", got)
		}
		if req.URL.Path != "/api/v1/inspections/insp-9/annotations" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"annotations": []map[string]any{
				{"id": "a1", "bboxX": 10.0, "bboxY": 20.0, "bboxWidth": 30.0, "bboxHeight": 40.0,
					"faultType": "LOOSE_JOINT", "faultConfidence": 0.87, "source": "AI_GENERATED", "isActive": true},
			},
		}), nil
	})

	anns, err := client.ListAnnotations(context.Background(), "insp-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anns) != 1 || anns[0].ID != "a1" || anns[0].FaultConfidence != 0.87 {
		t.Fatalf("unexpected annotations: %+v", anns)
	}
}

func TestCreateAnnotationRoundsGeometry(t *testing.T) {
	client := NewClient("https://example.com", time.Second, Session{Token: "t"})
	client.httpClient = newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("method = %s", req.Method)
		}
		var payload map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["bboxX"] != 20.0 || payload["bboxY"] != 20.0 ||
			payload["bboxWidth"] != 200.0 || payload["bboxHeight"] != 100.0 {
			t.Fatalf("geometry not rounded/normalized: %+v", payload)
		}
		if payload["faultConfidence"] != 1.0 {
			t.Fatalf("user create should default confidence to 1.0, got %v", payload["faultConfidence"])
		}
		return jsonResponse(t, http.StatusCreated, map[string]any{
			"id": "a7", "bboxX": 20, "bboxY": 20, "bboxWidth": 200, "bboxHeight": 100,
			"faultType": "OTHER", "source": "USER_CREATED", "isActive": true,
		}), nil
	})

	// Drag went up/left and landed on fractional pixels.
	rect := geometry.NewRect(220.2, 119.7, -200.1, -99.9)
	created, err := client.CreateAnnotation(context.Background(), "insp-9", rect, "OTHER", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "a7" {
		t.Fatalf("unexpected created record: %+v", created)
	}
}

func TestEditAnnotationRequiresCommentForClassificationChange(t *testing.T) {
	calls := 0
	client := NewClient("https://example.com", time.Second, Session{Token: "t"})
	client.httpClient = newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(t, http.StatusOK, map[string]any{"id": "a1"}), nil
	})

	_, err := client.EditAnnotation(context.Background(), "a1", geometry.NewRect(0, 0, 30, 30), "LOOSE_JOINT", "")
	if err == nil {
		t.Fatal("classification change without comment accepted")
	}
	if calls != 0 {
		t.Fatalf("validation failure still reached the network: %d calls", calls)
	}

	// Geometry-only edits need no comment.
	if _, err := client.EditAnnotation(context.Background(), "a1", geometry.NewRect(0, 0, 30, 30), "", ""); err != nil {
		t.Fatalf("geometry-only edit rejected: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}
}

func TestDeleteAnnotationValidatesComment(t *testing.T) {
	calls := 0
	client := NewClient("https://example.com", time.Second, Session{Token: "t"})
	client.httpClient = newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if req.Method != http.MethodDelete {
			t.Fatalf("method = %s", req.Method)
		}
		var payload map[string]string
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["comment"] != "duplicate of a3" {
			t.Fatalf("comment = %q", payload["comment"])
		}
		return jsonResponse(t, http.StatusOK, map[string]any{}), nil
	})

	if err := client.DeleteAnnotation(context.Background(), "a1", "  "); err == nil {
		t.Fatal("blank delete comment accepted")
	}
	if calls != 0 {
		t.Fatal("blank comment reached the network")
	}
	if err := client.DeleteAnnotation(context.Background(), "a1", "duplicate of a3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	client := NewClient("https://example.com", time.Second, Session{Token: "t"})
	client.httpClient = newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Status:     "502 Bad Gateway",
			Body:       io.NopCloser(bytes.NewReader([]byte("upstream down"))),
			Header:     make(http.Header),
		}, nil
	})

	_, err := client.ListAnnotations(context.Background(), "insp-9")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestGetAnnotationHistory(t *testing.T) {
	client := NewClient("https://example.com", time.Second, Session{Token: "t"})
	client.httpClient = newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/annotations/a1/history" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"history": []map[string]any{
				{"id": "h1", "annotationId": "a1", "action": "EDITED", "comment": "tightened box", "timestamp": "2026-02-11T10:00:00Z"},
			},
		}), nil
	})

	entries, err := client.GetAnnotationHistory(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "EDITED" {
		t.Fatalf("unexpected history: %+v", entries)
	}
}
