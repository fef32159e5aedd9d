package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the verification facade.
type Metrics struct {
	Outcomes         *prometheus.CounterVec
	GrantCache       *prometheus.CounterVec
	CacheCircuitOpen prometheus.Gauge
	VerifyLatency    prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credvault_verifications_total",
			Help: "Verification results by outcome",
		}, []string{"outcome"}),
		GrantCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credvault_grant_cache_lookups_total",
			Help: "Approved-grant cache lookups by result",
		}, []string{"result"}),
		CacheCircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credvault_grant_cache_circuit_open",
			Help: "1 while the grant cache circuit breaker is open",
		}),
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credvault_verification_duration_seconds",
			Help:    "Time spent answering a verification",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	m.Outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCacheHit()    { m.GrantCache.WithLabelValues("hit").Inc() }
func (m *Metrics) RecordCacheMiss()   { m.GrantCache.WithLabelValues("miss").Inc() }
func (m *Metrics) RecordCacheError()  { m.GrantCache.WithLabelValues("error").Inc() }
func (m *Metrics) RecordCacheBypass() { m.GrantCache.WithLabelValues("bypassed").Inc() }

func (m *Metrics) SetCacheCircuitOpen(open bool) {
	if open {
		m.CacheCircuitOpen.Set(1)
		return
	}
	m.CacheCircuitOpen.Set(0)
}

func (m *Metrics) ObserveVerifyLatency(seconds float64) {
	m.VerifyLatency.Observe(seconds)
}
