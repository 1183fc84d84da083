// Package registry builds the fixed, ordered set of providers from config.
package registry

import (
	"log/slog"
	"net/http"

	"github.com/couchcryptid/poi-address-fetch/internal/adapter/bing"
	"github.com/couchcryptid/poi-address-fetch/internal/adapter/google"
	"github.com/couchcryptid/poi-address-fetch/internal/adapter/here"
	"github.com/couchcryptid/poi-address-fetch/internal/adapter/mapbox"
	"github.com/couchcryptid/poi-address-fetch/internal/adapter/osm"
	"github.com/couchcryptid/poi-address-fetch/internal/adapter/twogis"
	"github.com/couchcryptid/poi-address-fetch/internal/adapter/yandex"
	"github.com/couchcryptid/poi-address-fetch/internal/config"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

// entry is one registrable backend. enabled reports whether its credentials
// are present.
type entry struct {
	id      string
	enabled bool
	build   func() provider.Provider
}

// Build returns the providers enabled by cfg in display order: OSM, 2Gis,
// Yandex, Here, Bing, Google, Mapbox. Backends without credentials are skipped.
func Build(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []provider.Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	entries := []entry{
		{"OSM", true, func() provider.Provider {
			return osm.NewClient(httpClient, cfg.NominatimUserAgent, cfg.Language, cfg.CountryCodes)
		}},
		{"2Gis", cfg.TwoGISKey != "", func() provider.Provider {
			return twogis.NewClient(httpClient, cfg.TwoGISKey, cfg.Locale)
		}},
		{"Yandex", cfg.YandexAPIKey != "", func() provider.Provider {
			return yandex.NewClient(httpClient, cfg.YandexAPIKey, cfg.Locale)
		}},
		{"Here", cfg.HereAppID != "" && cfg.HereAppCode != "", func() provider.Provider {
			return here.NewClient(httpClient, cfg.HereAppID, cfg.HereAppCode)
		}},
		{"Bing", cfg.BingKey != "", func() provider.Provider {
			return bing.NewClient(httpClient, cfg.BingKey, cfg.Language)
		}},
		{"Google", cfg.GooglePlacesKey != "" && cfg.GooglePlacesURL != "", func() provider.Provider {
			return google.NewClient(httpClient, cfg.GooglePlacesURL, cfg.GooglePlacesKey, cfg.Language)
		}},
		{"Mapbox", cfg.MapboxToken != "", func() provider.Provider {
			return mapbox.NewClient(httpClient, cfg.MapboxToken, cfg.Language)
		}},
	}

	providers := make([]provider.Provider, 0, len(entries))
	for _, e := range entries {
		if !e.enabled {
			logger.Info("skipping provider, no credentials configured", "provider", e.id)
			continue
		}
		providers = append(providers, e.build())
	}
	logger.Info("providers registered", "count", len(providers))
	return providers
}
