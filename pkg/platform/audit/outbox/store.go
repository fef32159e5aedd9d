package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"credvault/pkg/platform/audit"
)

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	CountPending(ctx context.Context) (int64, error)
}

// Sink adapts a Store into an audit.Sink.
type Sink struct {
	store Store
}

func NewSink(store Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	entry, err := FromEvent(event)
	if err != nil {
		return err
	}
	return s.store.Append(ctx, entry)
}
