// Package bing reverse-geocodes through the Bing Maps Locations API.
package bing

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

const defaultBaseURL = "https://dev.virtualearth.net/REST/v1/Locations"

// Client implements provider.Provider for Bing address lookups by point.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	culture    string
}

// NewClient creates a Bing Maps client. culture is Bing's "c" parameter.
func NewClient(httpClient *http.Client, key, culture string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		key:        key,
		culture:    culture,
	}
}

func (c *Client) ID() string { return "Bing" }

// Request keeps only resources whose address line reads "street, number".
// Bing returns bare street names for points it cannot pin to a building.
func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	endpoint := c.baseURL + "/" + httpjson.Float(coord.Lat) + "," + httpjson.Float(coord.Lon)
	params := url.Values{
		"includeEntityTypes": {"Address"},
		"c":                  {c.culture},
		"key":                {c.key},
	}

	var resp response
	if err := httpjson.Get(ctx, c.httpClient, endpoint, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("bing locations: %w", err)
	}
	if len(resp.ResourceSets) == 0 {
		return []provider.RawResult{}, nil
	}

	out := make([]provider.RawResult, 0, len(resp.ResourceSets[0].Resources))
	for _, r := range resp.ResourceSets[0].Resources {
		if strings.Index(r.Address.AddressLine, ",") > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	r, ok := raw.(resource)
	if !ok {
		return provider.Item{}, provider.Unexpected(raw)
	}
	if len(r.Point.Coordinates) != 2 {
		return provider.Item{}, fmt.Errorf("point has %d coordinates", len(r.Point.Coordinates))
	}

	// "street, number[, building...]": trailing segments are not part of the number.
	parts := strings.Split(r.Address.AddressLine, ",")
	street, number := parts[0], ""
	if len(parts) > 1 {
		number = parts[1]
	}
	// Bing orders coordinates lat, lon.
	cand := domain.NewCandidate(r.Point.Coordinates[1], r.Point.Coordinates[0], r.Address.Locality, street, number, "")
	return provider.NewItem(cand, r.Address.FormattedAddress), nil
}

// Bing response types.

type response struct {
	ResourceSets []struct {
		Resources []resource `json:"resources"`
	} `json:"resourceSets"`
}

type resource struct {
	Point struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"point"`
	Address struct {
		AddressLine      string `json:"addressLine"`
		Locality         string `json:"locality"`
		FormattedAddress string `json:"formattedAddress"`
	} `json:"address"`
}
