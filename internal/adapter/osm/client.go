// Package osm reverse-geocodes through OpenStreetMap Nominatim.
package osm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/poi-address-fetch/internal/adapter/httpjson"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/reverse"

// Client implements provider.Provider against the Nominatim reverse endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	language     string
	countryCodes string
}

// NewClient creates a Nominatim client. Nominatim's usage policy requires an
// identifying User-Agent.
func NewClient(httpClient *http.Client, userAgent, language, countryCodes string) *Client {
	return &Client{
		httpClient:   httpClient,
		baseURL:      defaultBaseURL,
		userAgent:    userAgent,
		language:     language,
		countryCodes: countryCodes,
	}
}

func (c *Client) ID() string { return "OSM" }

// Request returns at most one place: Nominatim answers a reverse query with
// its single best match, or with no address at all.
func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	params := url.Values{
		"lon":             {httpjson.Float(coord.Lon)},
		"lat":             {httpjson.Float(coord.Lat)},
		"zoom":            {"18"},
		"addressdetails":  {"1"},
		"accept-language": {c.language},
		"format":          {"json"},
	}
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}
	headers := http.Header{"User-Agent": {c.userAgent}}

	var p place
	if err := httpjson.Get(ctx, c.httpClient, c.baseURL, params, headers, &p); err != nil {
		return nil, fmt.Errorf("nominatim reverse: %w", err)
	}
	if p.Address == nil {
		return []provider.RawResult{}, nil
	}
	return []provider.RawResult{p}, nil
}

// Normalize maps a Nominatim place. Without a house number the first segment
// of the display name stands in as the candidate name.
func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	p, ok := raw.(place)
	if !ok || p.Address == nil {
		return provider.Item{}, provider.Unexpected(raw)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return provider.Item{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return provider.Item{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}

	a := p.Address
	var name string
	if a.HouseNumber == "" {
		name, _, _ = strings.Cut(p.DisplayName, ", ")
	}
	cand := domain.NewCandidate(lon, lat, a.city(), a.Road, a.HouseNumber, name)
	return provider.NewItem(cand, p.DisplayName), nil
}

// Nominatim response types.

type place struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Address     *address `json:"address"`
}

type address struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Road        string `json:"road"`
	HouseNumber string `json:"house_number"`
}

func (a *address) city() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	default:
		return a.Village
	}
}
