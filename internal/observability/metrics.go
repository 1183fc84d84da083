package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for address lookups,
// merges, and the selection pipeline.
type Metrics struct {
	// Provider metrics.
	ProviderRequests   *prometheus.CounterVec   // labels: provider, outcome={ok,empty,failed}
	ProviderCache      *prometheus.CounterVec   // labels: provider, result={hit,miss}
	ProviderDuration   *prometheus.HistogramVec // labels: provider
	CandidatesRendered *prometheus.CounterVec   // labels: provider
	ProvidersEnabled   prometheus.Gauge

	// Merge metrics.
	MergeDecisions *prometheus.CounterVec // labels: field, decision
	MergeSubmitErr prometheus.Counter

	// Selection pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderCache,
		m.ProviderDuration,
		m.CandidatesRendered,
		m.ProvidersEnabled,
		m.MergeDecisions,
		m.MergeSubmitErr,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "provider_requests_total",
			Help:      "Provider searches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "provider_cache_total",
			Help:      "Memo cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "poi_fetch",
			Name:      "provider_request_duration_seconds",
			Help:      "Outbound reverse-geocoding request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		CandidatesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "candidates_rendered_total",
			Help:      "Candidates rendered into provider groups.",
		}, []string{"provider"}),
		ProvidersEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poi_fetch",
			Name:      "providers_enabled",
			Help:      "Number of providers registered at startup.",
		}),
		MergeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "merge_decisions_total",
			Help:      "Per-field merge decisions.",
		}, []string{"field", "decision"}),
		MergeSubmitErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "merge_submit_errors_total",
			Help:      "Mutations the submitter failed to queue.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "messages_consumed_total",
			Help:      "Total selection messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "messages_produced_total",
			Help:      "Total candidate messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_fetch",
			Name:      "transform_errors_total",
			Help:      "Total selection messages that could not be processed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poi_fetch",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_fetch",
			Name:      "batch_size",
			Help:      "Number of selection messages per batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_fetch",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete selection batch cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
