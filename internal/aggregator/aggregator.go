// Package aggregator fans a coordinate out to every registered provider at
// once and gathers one section per provider. Providers never affect each
// other: there is no ranking, merging or global timeout across them.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

// Section is one provider-labeled panel section.
type Section struct {
	Provider  string          `json:"provider"`
	Status    provider.Status `json:"status"`
	Error     string          `json:"error,omitempty"`
	CacheHit  bool            `json:"cache_hit"`
	Group     provider.Group  `json:"group"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Aggregator runs searches across a fixed provider set.
type Aggregator struct {
	providers []provider.Provider
	searcher  *provider.Searcher
	logger    *slog.Logger
}

// New creates an Aggregator over providers, in display order.
func New(providers []provider.Provider, searcher *provider.Searcher, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		providers: providers,
		searcher:  searcher,
		logger:    logger,
	}
}

// Providers returns the provider identifiers in display order.
func (a *Aggregator) Providers() []string {
	ids := make([]string, len(a.providers))
	for i, p := range a.providers {
		ids[i] = p.ID()
	}
	return ids
}

// Stream starts every search immediately and delivers each section as soon as
// its provider finishes, in arrival order. The channel is closed once all
// providers are done.
func (a *Aggregator) Stream(ctx context.Context, coord domain.Coordinate) <-chan Section {
	out := make(chan Section, len(a.providers))
	g := a.run(ctx, coord, func(_ int, s Section) { out <- s })
	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}

// Collect runs every search concurrently and returns the sections in display
// order once all providers are done.
func (a *Aggregator) Collect(ctx context.Context, coord domain.Coordinate) []Section {
	sections := make([]Section, len(a.providers))
	g := a.run(ctx, coord, func(i int, s Section) { sections[i] = s })
	_ = g.Wait()

	a.logger.Debug("aggregation complete", "coordinate", coord.String(), "providers", len(sections))
	return sections
}

// run launches one goroutine per provider. The goroutines never return an
// error, so one provider's failure cannot cancel the others.
func (a *Aggregator) run(ctx context.Context, coord domain.Coordinate, emit func(int, Section)) *errgroup.Group {
	var g errgroup.Group
	for i, p := range a.providers {
		g.Go(func() error {
			res := a.searcher.Search(ctx, p, coord)
			emit(i, newSection(res))
			return nil
		})
	}
	return &g
}

func newSection(res provider.Result) Section {
	s := Section{
		Provider:  res.Provider,
		Status:    res.Status,
		CacheHit:  res.CacheHit,
		Group:     res.Group,
		FetchedAt: domain.Now(),
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	return s
}

// Candidates flattens the items of all sections, in section order.
func Candidates(sections []Section) []provider.Item {
	var items []provider.Item
	for _, s := range sections {
		items = append(items, s.Group.Items...)
	}
	return items
}
