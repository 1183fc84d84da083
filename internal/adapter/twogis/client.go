// Package twogis reverse-geocodes through the 2GIS catalog geo search API.
package twogis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/couchcryptid/poi-address-fetch/internal/adapter/httpjson"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

const (
	defaultBaseURL = "https://catalog.api.2gis.ru/2.0/geo/search"
	searchRadius   = "20" // meters
)

// Client implements provider.Provider for 2GIS buildings around a point.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	locale     string
}

// NewClient creates a 2GIS client.
func NewClient(httpClient *http.Client, key, locale string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		key:        key,
		locale:     locale,
	}
}

func (c *Client) ID() string { return "2Gis" }

func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	params := url.Values{
		"point":  {httpjson.Float(coord.Lon) + "," + httpjson.Float(coord.Lat)},
		"radius": {searchRadius},
		"type":   {"building"},
		"fields": {"items.address,items.adm_div,items.geometry.centroid"},
		"locale": {c.locale},
		"format": {"json"},
		"key":    {c.key},
	}

	var resp response
	if err := httpjson.Get(ctx, c.httpClient, c.baseURL, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("2gis geo search: %w", err)
	}
	if resp.Result == nil {
		return []provider.RawResult{}, nil
	}
	out := make([]provider.RawResult, 0, len(resp.Result.Items))
	for _, it := range resp.Result.Items {
		out = append(out, it)
	}
	return out, nil
}

// Normalize maps a 2GIS building. Buildings without structured components
// fall back to their address line, then their name.
func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	it, ok := raw.(item)
	if !ok {
		return provider.Item{}, provider.Unexpected(raw)
	}

	var lon, lat float64
	if _, err := fmt.Sscanf(it.Geometry.Centroid, "POINT(%f %f)", &lon, &lat); err != nil {
		return provider.Item{}, fmt.Errorf("parse centroid %q: %w", it.Geometry.Centroid, err)
	}

	var city string
	for _, d := range it.AdmDiv {
		if d.Type == "city" {
			city = d.Name
		}
	}

	var street, number, name string
	switch {
	case it.Address != nil && len(it.Address.Components) > 0:
		street = it.Address.Components[0].Street
		number = it.Address.Components[0].Number
	case it.AddressName != "":
		name = it.AddressName
	default:
		name = it.Name
	}

	cand := domain.NewCandidate(lon, lat, city, street, number, name)
	return provider.NewItem(cand, it.PurposeName), nil
}

// 2GIS response types.

type response struct {
	Meta struct {
		Code int `json:"code"`
	} `json:"meta"`
	Result *struct {
		Items []item `json:"items"`
	} `json:"result"`
}

type item struct {
	Name        string   `json:"name"`
	AddressName string   `json:"address_name"`
	PurposeName string   `json:"purpose_name"`
	Address     *address `json:"address"`
	AdmDiv      []admDiv `json:"adm_div"`
	Geometry    struct {
		Centroid string `json:"centroid"` // WKT, e.g. POINT(36.401143 49.916814)
	} `json:"geometry"`
}

type address struct {
	Components []component `json:"components"`
}

type component struct {
	Street string `json:"street"`
	Number string `json:"number"`
}

type admDiv struct {
	Type string `json:"type"`
	Name string `json:"name"`
}
