package models

import (
	"time"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
)

// Status is the access request state. Only pending may transition.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Decision is the candidate's answer to a pending request.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
)

// ParseDecision accepts approved/denied and the verb forms approve/deny.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "approve", "approved":
		return DecisionApproved, nil
	case "deny", "denied":
		return DecisionDenied, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be approved or denied")
}

// Status is the terminal state the decision moves a request to.
func (d Decision) Status() Status {
	if d == DecisionApproved {
		return StatusApproved
	}
	return StatusDenied
}

// Request is an organization's ask to see one certificate.
type Request struct {
	ID            id.AccessRequestID `json:"id"`
	CertificateID id.CertificateID   `json:"certificate_id"`
	RequesterID   id.SubjectID       `json:"requester_id"`
	Status        Status             `json:"status"`
	RequestedAt   time.Time          `json:"requested_at"`
	DecidedAt     *time.Time         `json:"decided_at,omitempty"`
}

func NewRequest(certID id.CertificateID, requesterID id.SubjectID, now time.Time) *Request {
	return &Request{
		ID:            id.NewAccessRequestID(),
		CertificateID: certID,
		RequesterID:   requesterID,
		Status:        StatusPending,
		RequestedAt:   now,
	}
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// Decide moves a pending request to its terminal state.
func (r *Request) Decide(decision Decision, now time.Time) error {
	if !r.IsPending() {
		return dErrors.New(dErrors.CodeAlreadyDecided, "access request already decided")
	}
	r.Status = decision.Status()
	r.DecidedAt = &now
	return nil
}

func (r *Request) Clone() *Request {
	cp := *r
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		cp.DecidedAt = &t
	}
	return &cp
}

// Stats summarizes a requester's outcomes.
type Stats struct {
	Approved    int `json:"approved"`
	Pending     int `json:"pending"`
	Denied      int `json:"denied"`
	SuccessRate int `json:"success_rate"`
}

// NewStats tallies requests. SuccessRate is approved as a rounded percentage
// of approved plus pending, and zero when nothing was approved.
func NewStats(requests []*Request) *Stats {
	s := &Stats{}
	for _, r := range requests {
		switch r.Status {
		case StatusApproved:
			s.Approved++
		case StatusPending:
			s.Pending++
		case StatusDenied:
			s.Denied++
		}
	}
	if s.Approved > 0 {
		total := s.Approved + s.Pending
		s.SuccessRate = (s.Approved*100 + total/2) / total
	}
	return s
}
