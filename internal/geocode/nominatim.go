// Package geocode resolves free-text locations through external services:
// forward geocoding (Nominatim search API) and place autocomplete (Geoapify).
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nitesh/newsmap/internal/logging"
	"github.com/nitesh/newsmap/internal/metrics"
)

// ErrUpstream is returned when the geocoder answers with a non-2xx status.
var ErrUpstream = errors.New("geocoder upstream error")

// Place is one forward-geocoding match. Coordinates are kept as the decimal
// strings the geocoder returned.
type Place struct {
	Lat         string
	Lon         string
	DisplayName string
}

// Geocoder resolves a free-text query to candidate places, best match first.
// An empty slice with a nil error means the query was understood but matched nothing.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// Client is a minimal Nominatim-compatible search client.
type Client struct {
	baseURL   string
	userAgent string
	hc        *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a client for baseURL (e.g. https://nominatim.openstreetmap.org).
// If httpClient is nil, a default with timeout is used. perSecond <= 0 disables
// rate limiting.
func NewClient(baseURL, userAgent string, perSecond float64, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		hc:        httpClient,
	}
	if perSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return c
}

// nominatimPlace mirrors the fields we read from /search?format=json.
type nominatimPlace struct {
	Lat         coord  `json:"lat"`
	Lon         coord  `json:"lon"`
	DisplayName string `json:"display_name"`
}

// coord accepts both "48.85" and 48.85; Nominatim sends strings, some
// compatible servers send numbers.
type coord string

func (c *coord) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = coord(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	*c = coord(n.String())
	return nil
}

// Search calls GET {base}/search?format=json&q=<query>.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("geocode rate limit: %w", err)
		}
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", query)
	endpoint := c.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	lat := time.Since(start)
	if err != nil {
		metrics.RecordGeocode("error", lat)
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RecordGeocode("error", lat)
		return nil, fmt.Errorf("geocode read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordGeocode("error", lat)
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUpstream, resp.StatusCode, truncate(body, 200))
	}

	var raw []nominatimPlace
	if err := json.Unmarshal(body, &raw); err != nil {
		metrics.RecordGeocode("error", lat)
		return nil, fmt.Errorf("geocode decode: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, p := range raw {
		places = append(places, Place{Lat: string(p.Lat), Lon: string(p.Lon), DisplayName: p.DisplayName})
	}

	outcome := "match"
	if len(places) == 0 {
		outcome = "no_match"
	}
	metrics.RecordGeocode(outcome, lat)
	logging.Ctx(ctx).Debug().
		Str("query", query).
		Int("results", len(places)).
		Dur("latency", lat).
		Msg("geocode search")
	return places, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
