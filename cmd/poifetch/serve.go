package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/poi-address-fetch/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/poi-address-fetch/internal/adapter/kafka"
	"github.com/couchcryptid/poi-address-fetch/internal/merge"
	"github.com/couchcryptid/poi-address-fetch/internal/pipeline"
)

// readyFunc adapts a function to the readiness checker used by /readyz.
type readyFunc func(ctx context.Context) error

func (f readyFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when Kafka is enabled, the selection pipeline",
		Long: `Serves /v1/providers, /v1/candidates and /v1/merge alongside /healthz,
/readyz and /metrics. The HTTP merge endpoint never prompts: conflicts are
replaced only when the request's "confirm" map says so.

With KAFKA_ENABLED=true the service also consumes place selections, publishes
their candidate groups and publishes merge mutations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), s)
		},
	}
}

func runServe(parent context.Context, s *session) error {
	cfg, logger := s.cfg, s.logger

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		submitter merge.Submitter = merge.LogSubmitter{Logger: logger}
		ready     sharedobs.ReadinessChecker
		p         *pipeline.Pipeline
		closers   []func() error
	)
	ready = readyFunc(func(context.Context) error { return nil })

	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg.KafkaBrokers, cfg.KafkaSelectionTopic, cfg.KafkaGroupID, cfg.BatchFlushInterval, logger)
		candidates := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaCandidateTopic, logger)
		mutations := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaMutationTopic, logger)
		closers = append(closers, reader.Close, candidates.Close, mutations.Close)

		transformer := pipeline.NewTransformer(s.aggregator, logger)
		p = pipeline.New(reader, transformer, candidates, logger, s.metrics, cfg.BatchSize,
			pipeline.WithConcurrency(cfg.LookupConcurrency))
		submitter = mutations
		ready = p
		logger.Info("kafka pipeline enabled",
			"selection_topic", cfg.KafkaSelectionTopic,
			"candidate_topic", cfg.KafkaCandidateTopic,
			"mutation_topic", cfg.KafkaMutationTopic)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	engine := merge.NewEngine(merge.DeclineAll, submitter, logger, s.metrics)
	api := httpadapter.NewAPI(s.aggregator, engine, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, api, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
