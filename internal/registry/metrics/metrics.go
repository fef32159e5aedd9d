package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the credential registry.
type Metrics struct {
	CertificatesIssued  prometheus.Counter
	CertificatesRevoked prometheus.Counter
	RevokeNoops         prometheus.Counter
	IssueLatency        prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		CertificatesRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_certificates_revoked_total",
			Help: "Total number of certificates transitioned to revoked",
		}),
		RevokeNoops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_certificate_revoke_noops_total",
			Help: "Revocations of certificates that were already revoked",
		}),
		IssueLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credvault_certificate_issue_duration_seconds",
			Help:    "Time spent issuing a certificate",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementIssued()  { m.CertificatesIssued.Inc() }
func (m *Metrics) IncrementRevoked() { m.CertificatesRevoked.Inc() }
func (m *Metrics) IncrementNoop()    { m.RevokeNoops.Inc() }

func (m *Metrics) ObserveIssueLatency(seconds float64) {
	m.IssueLatency.Observe(seconds)
}
