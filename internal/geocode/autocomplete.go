package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAutocompleteURL is the Geoapify autocomplete endpoint.
const DefaultAutocompleteURL = "https://api.geoapify.com/v1/geocode/autocomplete"

// Suggester returns place names matching partially typed text.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// AutocompleteClient talks to a Geoapify-compatible autocomplete API.
type AutocompleteClient struct {
	endpoint string
	apiKey   string
	hc       *http.Client
}

// NewAutocompleteClient creates a client. Empty endpoint means DefaultAutocompleteURL.
func NewAutocompleteClient(endpoint, apiKey string, httpClient *http.Client) *AutocompleteClient {
	if endpoint == "" {
		endpoint = DefaultAutocompleteURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &AutocompleteClient{endpoint: endpoint, apiKey: apiKey, hc: httpClient}
}

type autocompleteResponse struct {
	Features []struct {
		Properties struct {
			Formatted string `json:"formatted"`
		} `json:"properties"`
	} `json:"features"`
}

// Suggest returns the formatted place strings, lower-cased, in API order.
func (c *AutocompleteClient) Suggest(ctx context.Context, text string) ([]string, error) {
	q := url.Values{}
	q.Set("text", text)
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("autocomplete new request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: autocomplete status=%d body=%s", ErrUpstream, resp.StatusCode, string(b))
	}

	var parsed autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("autocomplete decode: %w", err)
	}
	out := make([]string, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		if f.Properties.Formatted == "" {
			continue
		}
		out = append(out, strings.ToLower(f.Properties.Formatted))
	}
	return out, nil
}
