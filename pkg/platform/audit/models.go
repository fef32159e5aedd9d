package audit

import (
	"context"
	"time"

	id "credvault/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp       time.Time    `json:"timestamp"`
	Action          Action       `json:"action"`
	ActorID         id.SubjectID `json:"actor_id"`
	ActorRole       id.Role      `json:"actor_role,omitempty"`
	CertificateID   string       `json:"certificate_id,omitempty"`
	AccessRequestID string       `json:"access_request_id,omitempty"`
	Decision        string       `json:"decision,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	RequestID       string       `json:"request_id,omitempty"`
}

// Action names the audited transition.
type Action string

const (
	ActionSubjectEnrolled      Action = "subject_enrolled"
	ActionCertificateIssued    Action = "certificate_issued"
	ActionCertificateRevoked   Action = "certificate_revoked"
	ActionAccessRequested      Action = "access_requested"
	ActionAccessDecided        Action = "access_decided"
	ActionVerificationGranted  Action = "verification_granted"
	ActionVerificationRejected Action = "verification_denied"
)

// AggregateType groups an event for partitioning downstream.
func (e Event) AggregateType() string {
	switch {
	case e.AccessRequestID != "":
		return "access_request"
	case e.CertificateID != "":
		return "certificate"
	default:
		return "subject"
	}
}

// AggregateID is the identifier matching AggregateType.
func (e Event) AggregateID() string {
	switch {
	case e.AccessRequestID != "":
		return e.AccessRequestID
	case e.CertificateID != "":
		return e.CertificateID
	default:
		return e.ActorID.String()
	}
}

// Sink persists audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
