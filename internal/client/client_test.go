package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nitesh/newsmap/pkg/models"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/data/abc123" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		var sub models.Submission
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &sub); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if sub.Location != "Paris" || sub.Category != models.CategorySports {
			t.Errorf("Unexpected submission %+v", sub)
		}
		json.NewEncoder(w).Encode(models.Record{Code: "abc123", Metadata: models.Metadata{Latitude: "48.85", Longitude: "2.35"}})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	rec, err := c.Submit(context.Background(), "abc123", models.Submission{NewsURL: "https://a.com", Location: "Paris", Category: models.CategorySports})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.Code != "abc123" || rec.Metadata.Latitude != "48.85" {
		t.Errorf("Unexpected record %+v", rec)
	}
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"submission failed: geocoder upstream error"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Submit(context.Background(), "x", models.Submission{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != 500 || apiErr.Message != "submission failed: geocoder upstream error" {
		t.Errorf("Unexpected APIError %+v", apiErr)
	}
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := New(srv.URL, nil).Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/a b" {
			t.Errorf("Expected escaped code path, got %q", r.URL.Path)
		}
		w.Write([]byte(`{"newsUrl":"https://a.com","locationName":"paris","category":"health"}`))
	}))
	defer srv.Close()

	md, err := New(srv.URL, nil).Get(context.Background(), "a b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if md.LocationName != "paris" || md.Category != models.CategoryHealth {
		t.Errorf("Unexpected metadata %+v", md)
	}
}

func TestListQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"uniqueCode":"b"},{"uniqueCode":"a"}]`))
	}))
	defer srv.Close()
	c := New(srv.URL, nil)

	tests := []struct {
		category models.Category
		want     string
	}{
		{"", ""},
		{models.CategoryAll, ""},
		{models.CategoryScience, "category=science"},
	}
	for _, tt := range tests {
		recs, err := c.List(context.Background(), tt.category)
		if err != nil {
			t.Fatalf("List(%q): %v", tt.category, err)
		}
		if gotQuery != tt.want {
			t.Errorf("List(%q): expected query %q, got %q", tt.category, tt.want, gotQuery)
		}
		if len(recs) != 2 || recs[0].Code != "b" {
			t.Errorf("List(%q): unexpected records", tt.category)
		}
	}
}

func TestListEmptyIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := New(srv.URL, nil)
	if _, err := c.List(context.Background(), ""); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
	if _, err := c.Hotspots(context.Background(), ""); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestHotspots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hotspots" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"locationName":"paris","latitude":"48.85","longitude":"2.35","total":2,"dominant":"sports","style":{"size":14,"color":"#FF6B00","category":"sports"}}]`))
	}))
	defer srv.Close()

	hs, err := New(srv.URL, nil).Hotspots(context.Background(), models.CategorySports)
	if err != nil {
		t.Fatalf("Hotspots: %v", err)
	}
	if len(hs) != 1 || hs[0].Style.Size != 14 {
		t.Errorf("Unexpected hotspots %+v", hs)
	}
}
