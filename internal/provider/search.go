package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/poi-address-fetch/internal/cache"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/observability"
)

// Status is the outcome of one provider search.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// ErrPanic marks a provider that panicked during request or normalization.
var ErrPanic = errors.New("provider panicked")

// Result is the explicit outcome of a search: a rendered group on success,
// or a failure reason. A failed search renders an empty group.
type Result struct {
	Provider string
	Status   Status
	Err      error
	CacheHit bool
	Group    Group
}

// Searcher runs provider searches through the session cache. It is the
// boundary at which provider failures are contained.
type Searcher struct {
	cache   *cache.Memo[[]RawResult]
	logger  *slog.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

// NewSearcher returns a Searcher backed by memo. timeout bounds each outbound
// request; zero leaves it unbounded.
func NewSearcher(memo *cache.Memo[[]RawResult], timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Searcher {
	if memo == nil {
		memo = cache.NewMemo[[]RawResult]()
	}
	return &Searcher{
		cache:   memo,
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
	}
}

// Search returns the raw results for coord from the cache, or requests and
// caches them on a miss, then normalizes each into an Item. It never returns
// an error: failures are logged and reported through Result.Status.
func (s *Searcher) Search(ctx context.Context, p Provider, coord domain.Coordinate) (res Result) {
	id := p.ID()
	res = Result{Provider: id, Group: NewGroup(id, nil)}

	defer func() {
		if r := recover(); r != nil {
			res = s.fail(id, res.CacheHit, fmt.Errorf("%w: %v", ErrPanic, r))
		}
		s.metrics.ProviderRequests.WithLabelValues(id, string(res.Status)).Inc()
	}()

	key := CacheKey(id, coord)
	raws, hit := s.cache.Get(key)
	res.CacheHit = hit
	if hit {
		s.metrics.ProviderCache.WithLabelValues(id, "hit").Inc()
	} else {
		s.metrics.ProviderCache.WithLabelValues(id, "miss").Inc()

		var err error
		raws, err = s.request(ctx, p, coord)
		if err != nil {
			return s.fail(id, false, fmt.Errorf("request: %w", err))
		}
		if raws == nil {
			raws = []RawResult{}
		}
		s.cache.Set(key, raws)
	}

	items := make([]Item, 0, len(raws))
	for i, raw := range raws {
		item, err := p.Normalize(raw)
		if err != nil {
			return s.fail(id, hit, fmt.Errorf("normalize result %d: %w", i, err))
		}
		item.Distance = coord.DistanceTo(item.Candidate.Coordinate())
		items = append(items, item)
	}

	res.Group = NewGroup(id, items)
	if len(items) == 0 {
		res.Status = StatusEmpty
	} else {
		res.Status = StatusOK
		s.metrics.CandidatesRendered.WithLabelValues(id).Add(float64(len(items)))
	}
	s.logger.Debug("provider search complete",
		"provider", id,
		"coordinate", coord.String(),
		"cache_hit", hit,
		"candidates", len(items),
	)
	return res
}

func (s *Searcher) request(ctx context.Context, p Provider, coord domain.Coordinate) ([]RawResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		s.metrics.ProviderDuration.WithLabelValues(p.ID()).Observe(time.Since(start).Seconds())
	}()
	return p.Request(ctx, coord)
}

func (s *Searcher) fail(id string, hit bool, err error) Result {
	s.logger.Warn("provider search failed", "provider", id, "error", err)
	return Result{
		Provider: id,
		Status:   StatusFailed,
		Err:      err,
		CacheHit: hit,
		Group:    NewGroup(id, nil),
	}
}
