package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox worker.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// New registers the outbox metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		PendingDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credvault_outbox_pending_total",
			Help: "Current number of pending (unprocessed) outbox entries",
		}),
		PublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_outbox_published_total",
			Help: "Total number of outbox entries successfully published",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_outbox_publish_failures_total",
			Help: "Total number of outbox fetch or publish failures",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credvault_outbox_publish_duration_seconds",
			Help:    "Time taken to publish one outbox entry",
			Buckets: latencyBuckets,
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credvault_outbox_batch_size",
			Help:    "Number of entries processed per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credvault_outbox_poll_duration_seconds",
			Help:    "Time taken for each poll cycle",
			Buckets: latencyBuckets,
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64)         { m.PendingDepth.Set(float64(count)) }
func (m *Metrics) IncPublished()                       { m.PublishedTotal.Inc() }
func (m *Metrics) IncPublishFailures()                 { m.PublishFailures.Inc() }
func (m *Metrics) ObservePublishDuration(secs float64) { m.PublishDuration.Observe(secs) }
func (m *Metrics) ObserveBatchSize(size int)           { m.BatchSize.Observe(float64(size)) }
func (m *Metrics) ObservePollDuration(secs float64)    { m.PollDuration.Observe(secs) }
