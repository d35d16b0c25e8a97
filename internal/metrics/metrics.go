// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline. Collectors register on the default registry and are served
// by the HTTP surface under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sentiment_worker"

var (
	// PostsConsumed tracks stream entries handed to the analysis stage.
	// Labels: origin: "read" (fresh batch), "claimed" (reclaimed idle)
	PostsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_consumed_total",
			Help:      "Total stream entries fetched for analysis",
		},
		[]string{"origin"},
	)

	// PostsAnalyzed tracks verdicts by producing tier and outcome.
	PostsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_analyzed_total",
			Help:      "Total sentiment verdicts produced",
		},
		[]string{"model_name", "sentiment_label"},
	)

	// AnalysisDuration tracks per-post chain latency. The local tier
	// answers in milliseconds, the external tier in seconds.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of the analysis chain per post in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"model_name"},
	)

	// BatchesPersisted counts committed result batches.
	BatchesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_persisted_total",
			Help:      "Total result batches committed to Postgres",
		},
	)

	// PersistFailures counts batches that failed to commit. Entries stay
	// unacked and are redelivered.
	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Total result batches that failed to commit",
		},
	)

	// EventPublishFailures counts sink publish errors. Events are
	// fire-and-forget, so failures are counted and dropped.
	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Total event publishes that failed",
		},
	)

	// AlertsRaised counts threshold breaches recorded by the monitor.
	AlertsRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Total negative-ratio alerts raised",
		},
	)

	// PendingEntries tracks the consumer group's pending entry count,
	// refreshed on the cleanup interval.
	PendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_pending_entries",
			Help:      "Entries delivered to the group but not yet acknowledged",
		},
	)
)
