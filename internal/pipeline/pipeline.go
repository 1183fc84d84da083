// Package pipeline drives candidate lookups from a stream of selection events:
// each selection is fanned out to every provider and the gathered sections are
// published for the editor to render.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/observability"
)

const defaultConcurrency = 4

// BatchExtractor reads up to batchSize raw selection events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns one selection event into one candidate message.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader publishes candidate messages.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline runs the fetch-lookup-publish loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
	concurrency int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency bounds how many selections of one batch are looked up at
// the same time. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness reports ready once at least one selection has been answered.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not answered any selection yet")
	}
	return nil
}

// Run processes selection batches until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "concurrency", p.concurrency)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var r retry
	for ctx.Err() == nil {
		if !p.cycle(ctx, &r) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// cycle reads one batch, answers it and publishes the answers. It returns
// false when the pipeline should stop.
func (p *Pipeline) cycle(ctx context.Context, r *retry) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return r.wait(ctx)
	}
	if len(batch) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	r.reset()

	answered, accepted := p.answer(ctx, batch)
	if len(answered) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, answered); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(answered))
		return r.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(answered)))
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// answer runs the lookups of a batch concurrently and returns the answers in
// batch order with the events they came from. Rejected selections are
// committed right away so they are not redelivered.
func (p *Pipeline) answer(ctx context.Context, batch []domain.RawEvent) ([]domain.OutputEvent, []domain.RawEvent) {
	outs := make([]domain.OutputEvent, len(batch))
	errs := make([]error, len(batch))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, raw := range batch {
		g.Go(func() error {
			outs[i], errs[i] = p.transformer.Transform(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	answered := make([]domain.OutputEvent, 0, len(batch))
	accepted := make([]domain.RawEvent, 0, len(batch))
	for i, raw := range batch {
		if errs[i] != nil {
			p.logger.Warn("selection rejected, skipping message",
				"error", errs[i],
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		answered = append(answered, outs[i])
		accepted = append(accepted, raw)
	}
	return answered, accepted
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retry is an exponential backoff from 200ms doubling up to 5s.
type retry struct {
	delay time.Duration
}

const (
	retryFloor   = 200 * time.Millisecond
	retryCeiling = 5 * time.Second
)

func (r *retry) reset() { r.delay = 0 }

// wait sleeps for the current delay and advances it. It returns false if ctx
// ends first.
func (r *retry) wait(ctx context.Context) bool {
	if r.delay == 0 {
		r.delay = retryFloor
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	r.delay = min(r.delay*2, retryCeiling)
	return true
}
