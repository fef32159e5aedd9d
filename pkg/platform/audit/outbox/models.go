package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credvault/pkg/platform/audit"
)

// Entry is a pending event in the outbox table (transactional outbox pattern).
type Entry struct {
	ID            uuid.UUID
	AggregateType string // certificate, access_request, subject
	AggregateID   string
	EventType     string
	Payload       []byte     // JSON-encoded audit.Event
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil until published
}

// IsPending returns true if this entry has not been processed yet.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// FromEvent serializes an audit event into a new outbox entry.
func FromEvent(event audit.Event) (*Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode audit event: %w", err)
	}
	createdAt := event.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &Entry{
		ID:            uuid.New(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     string(event.Action),
		Payload:       payload,
		CreatedAt:     createdAt,
	}, nil
}
