package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/scooplab/custard/internal/domain/model"
)

// HTTPFetcher reads a store's flavor listing from the upstream flavor API.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher against baseURL, e.g.
// "https://fotd.example.com". A nil client uses http.DefaultClient; callers
// normally pass one with a transport timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{baseURL: baseURL, client: client}
}

// flavorResponse mirrors the upstream flavors endpoint payload.
type flavorResponse struct {
	Flavors []struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"flavors"`
}

// Fetch retrieves the flavor listing for slug.
func (f *HTTPFetcher) Fetch(ctx context.Context, slug string) ([]model.Flavor, error) {
	u := fmt.Sprintf("%s/api/v1/flavors?slug=%s", f.baseURL, url.QueryEscape(slug))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build flavor request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flavor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flavor request: unexpected status %d", resp.StatusCode)
	}

	var payload flavorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode flavor response: %w", err)
	}

	flavors := make([]model.Flavor, 0, len(payload.Flavors))
	for _, f := range payload.Flavors {
		if f.Title == "" {
			continue
		}
		flavors = append(flavors, model.Flavor{
			Name:  model.NormalizeFlavor(f.Title),
			Title: f.Title,
			Date:  f.Date,
		})
	}
	return flavors, nil
}
