// Package google looks up nearby points of interest through the Google
// Places nearby search. It yields names only, never structured addresses.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/couchcryptid/poi-address-fetch/internal/adapter/httpjson"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

const searchRadius = "40" // meters

// ErrAPIStatus is returned when Places answers 200 with an error status.
var ErrAPIStatus = errors.New("places api error")

// Client implements provider.Provider for Google Places nearby search.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	language   string
}

// NewClient creates a Places client. baseURL is configurable so requests can
// be routed through a proxy host.
func NewClient(httpClient *http.Client, baseURL, key, language string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		key:        key,
		language:   language,
	}
}

func (c *Client) ID() string { return "Google" }

func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	params := url.Values{
		"location": {httpjson.Float(coord.Lat) + "," + httpjson.Float(coord.Lon)},
		"radius":   {searchRadius},
		"type":     {"point_of_interest"},
		"language": {c.language},
		"key":      {c.key},
	}

	var resp response
	if err := httpjson.Get(ctx, c.httpClient, c.baseURL, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("places nearby search: %w", err)
	}
	switch resp.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("%w: %s: %s", ErrAPIStatus, resp.Status, resp.ErrorMessage)
	}

	out := make([]provider.RawResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, r)
	}
	return out, nil
}

// Normalize maps a place to a name-only candidate. The vicinity text is added
// to the label so the user can tell same-named places apart.
func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	p, ok := raw.(place)
	if !ok {
		return provider.Item{}, provider.Unexpected(raw)
	}
	loc := p.Geometry.Location
	cand := domain.NewCandidate(loc.Lng, loc.Lat, "", "", "", p.Name)
	item := provider.NewItem(cand, p.Vicinity, p.Vicinity)
	item.LowConfidence = true
	return item, nil
}

// Places response types.

type response struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Results      []place `json:"results"`
}

type place struct {
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
