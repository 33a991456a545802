// Package api implements the HTTP client for the inspection backend's
// annotation endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/pkg/geometry"
)

// Client wraps the backend's annotation REST API. All methods are safe to
// call from UI handlers; they block only for the configured timeout.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
}

// NewClient constructs a client for the configured backend instance.
func NewClient(baseURL string, timeout time.Duration, session Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// createRequest is the payload for a two-step create: geometry captured on
// pointer-up, fault type confirmed by the user before the call is issued.
type createRequest struct {
	BboxX           float64 `json:"bboxX"`
	BboxY           float64 `json:"bboxY"`
	BboxWidth       float64 `json:"bboxWidth"`
	BboxHeight      float64 `json:"bboxHeight"`
	FaultType       string  `json:"faultType"`
	FaultConfidence float64 `json:"faultConfidence"`
}

type editRequest struct {
	BboxX      float64 `json:"bboxX"`
	BboxY      float64 `json:"bboxY"`
	BboxWidth  float64 `json:"bboxWidth"`
	BboxHeight float64 `json:"bboxHeight"`
	FaultType  string  `json:"faultType,omitempty"`
	Comment    string  `json:"comment,omitempty"`
}

type deleteRequest struct {
	Comment string `json:"comment"`
}

// ListAnnotations returns every annotation record for the inspection,
// active and soft-deleted alike. Callers filter by IsActive before render.
func (c *Client) ListAnnotations(ctx context.Context, inspectionID string) ([]annotation.Annotation, error) {
	var response struct {
		Annotations []annotation.Annotation `json:"annotations"`
	}
	path := fmt.Sprintf("/api/v1/inspections/%s/annotations", url.PathEscape(inspectionID))
	if err := c.getJSON(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return response.Annotations, nil
}

// CreateAnnotation persists a user-drawn box. Geometry is rounded to whole
// pixels before it leaves the client; confidence defaults to 1.0 for
// user-created records.
func (c *Client) CreateAnnotation(ctx context.Context, inspectionID string, rect geometry.Rect, faultType string, confidence float64) (annotation.Annotation, error) {
	var created annotation.Annotation
	if err := annotation.ValidateFaultType(faultType); err != nil {
		return created, err
	}
	if confidence <= 0 || confidence > 1 {
		confidence = 1.0
	}

	r := rect.Normalized().Rounded()
	payload := createRequest{
		BboxX:           r.X,
		BboxY:           r.Y,
		BboxWidth:       r.Width,
		BboxHeight:      r.Height,
		FaultType:       faultType,
		FaultConfidence: confidence,
	}

	path := fmt.Sprintf("/api/v1/inspections/%s/annotations", url.PathEscape(inspectionID))
	if err := c.sendJSON(ctx, http.MethodPost, path, payload, &created); err != nil {
		return created, fmt.Errorf("create annotation: %w", err)
	}
	return created, nil
}

// EditAnnotation updates geometry and, optionally, the classification.
// Changing the classification requires a non-empty comment; geometry-only
// edits do not.
func (c *Client) EditAnnotation(ctx context.Context, id string, rect geometry.Rect, faultType, comment string) (annotation.Annotation, error) {
	var updated annotation.Annotation
	if faultType != "" {
		if err := annotation.ValidateFaultType(faultType); err != nil {
			return updated, err
		}
		if err := annotation.ValidateComment(comment); err != nil {
			return updated, err
		}
	}

	r := rect.Normalized().Rounded()
	payload := editRequest{
		BboxX:      r.X,
		BboxY:      r.Y,
		BboxWidth:  r.Width,
		BboxHeight: r.Height,
		FaultType:  faultType,
		Comment:    comment,
	}

	path := fmt.Sprintf("/api/v1/annotations/%s", url.PathEscape(id))
	if err := c.sendJSON(ctx, http.MethodPut, path, payload, &updated); err != nil {
		return updated, fmt.Errorf("edit annotation %s: %w", id, err)
	}
	return updated, nil
}

// DeleteAnnotation soft-deletes a record. The reason comment is mandatory
// and validated before the request is attempted.
func (c *Client) DeleteAnnotation(ctx context.Context, id, comment string) error {
	if err := annotation.ValidateComment(comment); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/v1/annotations/%s", url.PathEscape(id))
	if err := c.sendJSON(ctx, http.MethodDelete, path, deleteRequest{Comment: comment}, nil); err != nil {
		return fmt.Errorf("delete annotation %s: %w", id, err)
	}
	return nil
}

// GetAnnotationHistory returns the audit trail for display.
func (c *Client) GetAnnotationHistory(ctx context.Context, id string) ([]annotation.AuditEntry, error) {
	var response struct {
		History []annotation.AuditEntry `json:"history"`
	}
	path := fmt.Sprintf("/api/v1/annotations/%s/history", url.PathEscape(id))
	if err := c.getJSON(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("annotation history %s: %w", id, err)
	}
	return response.History, nil
}

// FetchImage downloads the inspection's thermal image bytes. Decoding and
// dimension reporting happen in the imageio package.
func (c *Client) FetchImage(ctx context.Context, inspectionID string) ([]byte, error) {
	path := fmt.Sprintf("/api/v1/inspections/%s/image", url.PathEscape(inspectionID))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: backend returned %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("backend base URL not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.session.Valid() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
