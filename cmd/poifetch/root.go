package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/poi-address-fetch/internal/aggregator"
	"github.com/couchcryptid/poi-address-fetch/internal/cache"
	"github.com/couchcryptid/poi-address-fetch/internal/config"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/observability"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
	"github.com/couchcryptid/poi-address-fetch/internal/registry"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "poifetch",
		Short: "Fetch and merge street addresses for a point of interest",
		Long: `poifetch queries OpenStreetMap, 2GIS, Yandex, HERE, Bing, Google Places and
Mapbox for the address at a coordinate, shows each service's candidates in its
own group, and merges a chosen candidate into a place record.

Configuration, including service credentials, is read from the environment.
Services without credentials are skipped.`,
		SilenceUsage: true,
	}
	root.AddCommand(newLookupCmd(), newApplyCmd(), newServeCmd())
	return root
}

// session is the wiring shared by every command: one cache, one set of
// providers, one aggregator for the lifetime of the process.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
	aggregator *aggregator.Aggregator
}

func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	providers := registry.Build(cfg, &http.Client{}, logger)
	metrics.ProvidersEnabled.Set(float64(len(providers)))

	memo := cache.NewMemo[[]provider.RawResult]()
	searcher := provider.NewSearcher(memo, cfg.ProviderTimeout, logger, metrics)

	return &session{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		aggregator: aggregator.New(providers, searcher, logger),
	}, nil
}

// coordFlags are the --lon/--lat/--frame flags shared by lookup and apply.
type coordFlags struct {
	lon, lat float64
	frame    string
}

func (f *coordFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "longitude (or Web Mercator x)")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude (or Web Mercator y)")
	cmd.Flags().StringVar(&f.frame, "frame", "wgs84", "coordinate frame: wgs84 or mercator (EPSG:900913)")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("lat")
}

func (f *coordFlags) coordinate() (domain.Coordinate, error) {
	frame, err := domain.ParseFrame(f.frame)
	if err != nil {
		return domain.Coordinate{}, err
	}
	coord := domain.InFrame(frame, f.lon, f.lat)
	if !coord.Valid() {
		return domain.Coordinate{}, fmt.Errorf("coordinate %s out of range", coord)
	}
	return coord, nil
}
