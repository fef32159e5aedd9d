package models

import (
	"time"

	regmodels "credvault/internal/registry/models"
	id "credvault/pkg/domain"
)

// Outcome is the answer to "can this requester see this certificate".
type Outcome string

const (
	OutcomeGranted             Outcome = "granted"
	OutcomeNoActiveGrant       Outcome = "no_active_grant"
	OutcomeCertificateNotFound Outcome = "certificate_not_found"
)

func (o Outcome) String() string { return string(o) }

// Result is returned by every verification. Certificate and Status are
// populated only when the outcome is granted.
type Result struct {
	Outcome       Outcome                `json:"outcome"`
	CertificateID id.CertificateID       `json:"certificate_id"`
	Certificate   *regmodels.Certificate `json:"certificate,omitempty"`
	Status        regmodels.Status       `json:"status,omitempty"`
	CheckedAt     time.Time              `json:"checked_at"`
}

// Granted builds a result carrying the status resolved at now.
func Granted(cert *regmodels.Certificate, now time.Time) *Result {
	return &Result{
		Outcome:       OutcomeGranted,
		CertificateID: cert.ID,
		Certificate:   cert,
		Status:        cert.ResolveStatus(now),
		CheckedAt:     now,
	}
}

func NoActiveGrant(certID id.CertificateID, now time.Time) *Result {
	return &Result{Outcome: OutcomeNoActiveGrant, CertificateID: certID, CheckedAt: now}
}

func CertificateNotFound(certID id.CertificateID, now time.Time) *Result {
	return &Result{Outcome: OutcomeCertificateNotFound, CertificateID: certID, CheckedAt: now}
}

func (r *Result) IsGranted() bool {
	return r != nil && r.Outcome == OutcomeGranted
}
