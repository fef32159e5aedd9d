package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for directory operations.
type Metrics struct {
	SubjectsEnrolled *prometheus.CounterVec
	RoleMismatches   prometheus.Counter
}

// New registers and returns directory metrics collectors.
func New() *Metrics {
	return &Metrics{
		SubjectsEnrolled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credvault_subjects_enrolled_total",
			Help: "Total number of subjects created, labeled by role",
		}, []string{"role"}),
		RoleMismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credvault_subject_role_mismatches_total",
			Help: "Enrollments rejected because the contact is bound to another role",
		}),
	}
}

func (m *Metrics) IncrementSubjectsEnrolled(role string) {
	m.SubjectsEnrolled.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementRoleMismatches() {
	m.RoleMismatches.Inc()
}
