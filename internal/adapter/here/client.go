// Package here reverse-geocodes through the HERE geocoder API.
package here

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
	defaultBaseURL = "https://reverse.geocoder.api.here.com/6.2/reversegeocode.json"
	proxRadius     = "10" // meters

	// matchHouseNumber is the only precision kept; street- and district-level
	// matches do not identify a building.
	matchHouseNumber = "houseNumber"
)

// Client implements provider.Provider for HERE reverse geocoding.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appCode    string
}

// NewClient creates a HERE client.
func NewClient(httpClient *http.Client, appID, appCode string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		appID:      appID,
		appCode:    appCode,
	}
}

func (c *Client) ID() string { return "Here" }

func (c *Client) Request(ctx context.Context, coord domain.Coordinate) ([]provider.RawResult, error) {
	params := url.Values{
		"app_id":             {c.appID},
		"app_code":           {c.appCode},
		"prox":               {httpjson.Float(coord.Lat) + "," + httpjson.Float(coord.Lon) + "," + proxRadius},
		"mode":               {"retrieveAddresses"},
		"locationattributes": {"none,ar"},
		"addressattributes":  {"str,hnr"},
	}

	var resp response
	if err := httpjson.Get(ctx, c.httpClient, c.baseURL, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("here reverse geocode: %w", err)
	}
	if resp.Response == nil || len(resp.Response.View) == 0 {
		return []provider.RawResult{}, nil
	}

	out := make([]provider.RawResult, 0, len(resp.Response.View[0].Result))
	for _, r := range resp.Response.View[0].Result {
		if r.MatchLevel == matchHouseNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Client) Normalize(raw provider.RawResult) (provider.Item, error) {
	r, ok := raw.(result)
	if !ok {
		return provider.Item{}, provider.Unexpected(raw)
	}
	loc := r.Location
	cand := domain.NewCandidate(
		loc.DisplayPosition.Longitude,
		loc.DisplayPosition.Latitude,
		loc.Address.City,
		loc.Address.Street,
		loc.Address.HouseNumber,
		"",
	)
	return provider.NewItem(cand, loc.Address.Label), nil
}

// HERE response types.

type response struct {
	Response *struct {
		View []struct {
			Result []result `json:"Result"`
		} `json:"View"`
	} `json:"Response"`
}

type result struct {
	MatchLevel string `json:"MatchLevel"`
	Location   struct {
		DisplayPosition struct {
			Latitude  float64 `json:"Latitude"`
			Longitude float64 `json:"Longitude"`
		} `json:"DisplayPosition"`
		Address struct {
			Label       string `json:"Label"`
			City        string `json:"City"`
			Street      string `json:"Street"`
			HouseNumber string `json:"HouseNumber"`
		} `json:"Address"`
	} `json:"Location"`
}
