package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the access grant workflow.
type Metrics struct {
	RequestsCreated   prometheus.Counter
	DuplicateRejected prometheus.Counter
	Decisions         *prometheus.CounterVec
	DecisionConflicts prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_access_requests_created_total",
			Help: "Total number of access requests created",
		}),
		DuplicateRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_access_requests_duplicate_total",
			Help: "Access requests rejected because one is already pending",
		}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credvault_access_decisions_total",
			Help: "Total number of access decisions, labeled by outcome",
		}, []string{"decision"}),
		DecisionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_access_decision_conflicts_total",
			Help: "Decisions rejected because the request was already decided",
		}),
	}
}

func (m *Metrics) IncrementCreated()           { m.RequestsCreated.Inc() }
func (m *Metrics) IncrementDuplicate()         { m.DuplicateRejected.Inc() }
func (m *Metrics) IncrementDecisionConflicts() { m.DecisionConflicts.Inc() }

func (m *Metrics) IncrementDecision(decision string) {
	m.Decisions.WithLabelValues(decision).Inc()
}
