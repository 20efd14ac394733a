// Package client talks to the newsmap HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nitesh/newsmap/internal/hotspot"
	"github.com/nitesh/newsmap/pkg/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrNoData   = errors.New("no records match")
)

// APIError is a non-2xx response other than the 404s mapped above.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d", e.Status)
	}
	return fmt.Sprintf("api error: status=%d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	hc      *http.Client
}

// New returns a client for baseURL. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: httpClient}
}

// Submit posts sub under code and returns the stored record.
func (c *Client) Submit(ctx context.Context, code string, sub models.Submission) (*models.Record, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	var rec models.Record
	if err := c.do(ctx, http.MethodPost, "/data/"+url.PathEscape(code), body, &rec, ErrNotFound); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns the metadata stored under code.
func (c *Client) Get(ctx context.Context, code string) (*models.Metadata, error) {
	var md models.Metadata
	if err := c.do(ctx, http.MethodGet, "/data/"+url.PathEscape(code), nil, &md, ErrNotFound); err != nil {
		return nil, err
	}
	return &md, nil
}

// List returns records newest first. An empty category lists everything.
func (c *Client) List(ctx context.Context, category models.Category) ([]*models.Record, error) {
	var recs []*models.Record
	if err := c.do(ctx, http.MethodGet, "/data"+categoryQuery(category), nil, &recs, ErrNoData); err != nil {
		return nil, err
	}
	return recs, nil
}

// Hotspots returns server-side aggregated markers.
func (c *Client) Hotspots(ctx context.Context, category models.Category) ([]hotspot.Hotspot, error) {
	var hs []hotspot.Hotspot
	if err := c.do(ctx, http.MethodGet, "/hotspots"+categoryQuery(category), nil, &hs, ErrNoData); err != nil {
		return nil, err
	}
	return hs, nil
}

func categoryQuery(category models.Category) string {
	if !category.IsFilter() {
		return ""
	}
	return "?" + url.Values{"category": {string(category)}}.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}, notFound error) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
