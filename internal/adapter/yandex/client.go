// Package yandex reverse-geocodes through the Yandex Maps geocoder.
package yandex

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
	defaultBaseURL = "https://geocode-maps.yandex.ru/1.x/"
	maxResults     = "2"
)

// Client implements provider.Provider for Yandex house-level geocoding.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	locale     string
}

// NewClient creates a Yandex geocoder client.
func NewClient(httpClient *http.Client, apiKey, locale string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		locale:     locale,
	}
}

func (c *Client) ID() string { return "Yandex" }

func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	params := url.Values{
		"geocode": {httpjson.Float(coord.Lon) + "," + httpjson.Float(coord.Lat)},
		"kind":    {"house"},
		"results": {maxResults},
		"lang":    {c.locale},
		"format":  {"json"},
		"apikey":  {c.apiKey},
	}

	var resp response
	if err := httpjson.Get(ctx, c.httpClient, c.baseURL, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("yandex geocode: %w", err)
	}
	if resp.Response == nil {
		return []provider.RawResult{}, nil
	}
	members := resp.Response.GeoObjectCollection.FeatureMember
	out := make([]provider.RawResult, 0, len(members))
	for _, m := range members {
		out = append(out, m.GeoObject)
	}
	return out, nil
}

func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	obj, ok := raw.(geoObject)
	if !ok {
		return provider.Item{}, provider.Unexpected(raw)
	}

	// Point.pos is "lon lat".
	var lon, lat float64
	if _, err := fmt.Sscanf(obj.Point.Pos, "%f %f", &lon, &lat); err != nil {
		return provider.Item{}, fmt.Errorf("parse position %q: %w", obj.Point.Pos, err)
	}

	var city, street, house string
	for _, comp := range obj.MetaDataProperty.GeocoderMetaData.Address.Components {
		switch comp.Kind {
		case "locality":
			city = comp.Name
		case "street":
			street = comp.Name
		case "house":
			house = comp.Name
		}
	}

	cand := domain.NewCandidate(lon, lat, city, street, house, "")
	return provider.NewItem(cand, obj.Name), nil
}

// Yandex response types.

type response struct {
	Response *struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject geoObject `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

type geoObject struct {
	Name  string `json:"name"`
	Point struct {
		Pos string `json:"pos"`
	} `json:"Point"`
	MetaDataProperty struct {
		GeocoderMetaData struct {
			Address struct {
				Components []component `json:"Components"`
			} `json:"Address"`
		} `json:"GeocoderMetaData"`
	} `json:"metaDataProperty"`
}

type component struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}
