// Package mapbox reverse-geocodes addresses through the Mapbox Geocoding API.
package mapbox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/couchcryptid/poi-address-fetch/internal/adapter/httpjson"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	maxFeatures    = "3"
)

// Client implements provider.Provider using Mapbox reverse geocoding
// restricted to address features.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	language   string
}

// NewClient creates a Mapbox geocoding client.
func NewClient(httpClient *http.Client, token, language string) *Client {
	return &Client{
		token:      token,
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		language:   language,
	}
}

func (c *Client) ID() string { return "Mapbox" }

func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	// Mapbox uses lon,lat order.
	u := fmt.Sprintf("%s/%s,%s.json", c.baseURL, httpjson.Float(coord.Lon), httpjson.Float(coord.Lat))
	params := url.Values{
		"access_token": {c.token},
		"types":        {"address"},
		"limit":        {maxFeatures},
	}
	if c.language != "" {
		params.Set("language", c.language)
	}

	var resp response
	if err := httpjson.Get(ctx, c.httpClient, u, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("mapbox reverse geocode: %w", err)
	}

	out := make([]provider.RawResult, 0, len(resp.Features))
	for _, f := range resp.Features {
		out = append(out, f)
	}
	return out, nil
}

// Normalize maps an address feature: text is the street, address the house
// number, and the city comes from the "place" context entry.
func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	f, ok := raw.(feature)
	if !ok {
		return provider.Item{}, provider.Unexpected(raw)
	}
	if len(f.Center) != 2 {
		return provider.Item{}, fmt.Errorf("feature %q has no center", f.ID)
	}

	var city string
	for _, ctxEntry := range f.Context {
		if strings.HasPrefix(ctxEntry.ID, "place.") {
			city = ctxEntry.Text
			break
		}
	}

	cand := domain.NewCandidate(f.Center[0], f.Center[1], city, f.Text, f.Address, "")
	return provider.NewItem(cand, f.PlaceName), nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string         `json:"id"`
	Center    []float64      `json:"center"` // [lon, lat]
	PlaceName string         `json:"place_name"`
	Text      string         `json:"text"`
	Address   string         `json:"address"`
	Relevance float64        `json:"relevance"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
