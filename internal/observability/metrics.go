package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeNotFound     = "not_found"
	OutcomeEventFailure = "event_failure"
	OutcomePoison       = "poison"
)

// Metrics contains all Prometheus metrics for the job board service.
// Metrics are organized by subsystem: job post mutations, lifecycle events,
// search reads, index writes, and the index synchronizer.
//
// All Record methods are safe to call on a nil *Metrics, so components can
// run without metrics in tests.
type Metrics struct {
	// JobPostMutations counts create/update/delete calls, labeled by operation and outcome.
	JobPostMutations *prometheus.CounterVec

	// EventsPublished counts lifecycle events accepted by the broker, labeled by topic.
	EventsPublished *prometheus.CounterVec

	// EventsFailed counts lifecycle events the broker did not accept, labeled by topic.
	EventsFailed *prometheus.CounterVec

	// SearchRequests counts search reads, labeled by index and outcome.
	SearchRequests *prometheus.CounterVec

	// SearchDuration observes search read latency in seconds, labeled by index.
	SearchDuration *prometheus.HistogramVec

	// IndexOperations counts index and delete calls, labeled by operation and engine result.
	IndexOperations *prometheus.CounterVec

	// IndexerMessages counts messages handled by the index synchronizer, labeled by topic and outcome.
	IndexerMessages *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names. Metrics are
// registered with reg, or with the default registry when reg is nil.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		JobPostMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_post_mutations_total",
			Help:      "Total number of job post mutations by operation and outcome",
		}, []string{"operation", "outcome"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of lifecycle events published",
		}, []string{"topic"}),
		EventsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of lifecycle events that failed to publish",
		}, []string{"topic"}),

		SearchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests by index and outcome",
		}, []string{"index", "outcome"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of search requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"index"}),

		IndexOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_operations_total",
			Help:      "Total number of index write operations by operation and result",
		}, []string{"operation", "result"}),

		IndexerMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexer_messages_total",
			Help:      "Total number of messages handled by the index synchronizer",
		}, []string{"topic", "outcome"}),
	}
}

// RecordMutation records a job post mutation.
func (m *Metrics) RecordMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.JobPostMutations.WithLabelValues(operation, outcome).Inc()
}

// RecordEventPublished records an event accepted by the broker.
func (m *Metrics) RecordEventPublished(topic string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventFailed records an event the broker did not accept.
func (m *Metrics) RecordEventFailed(topic string) {
	if m == nil {
		return
	}
	m.EventsFailed.WithLabelValues(topic).Inc()
}

// RecordSearch records a search request and its latency.
func (m *Metrics) RecordSearch(index, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(index, outcome).Inc()
	m.SearchDuration.WithLabelValues(index).Observe(duration.Seconds())
}

// RecordIndexOperation records an index or delete call with the engine's result string.
func (m *Metrics) RecordIndexOperation(operation, result string) {
	if m == nil {
		return
	}
	m.IndexOperations.WithLabelValues(operation, result).Inc()
}

// RecordIndexerMessage records a message handled by the index synchronizer.
func (m *Metrics) RecordIndexerMessage(topic, outcome string) {
	if m == nil {
		return
	}
	m.IndexerMessages.WithLabelValues(topic, outcome).Inc()
}
