package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credvault/internal/platform/kafka/producer"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/audit/outbox"
	"credvault/pkg/platform/audit/outbox/store/memory"
)

type fakeProducer struct {
	mu       sync.Mutex
	messages []*producer.Message
	failKey  string
}

func (p *fakeProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failKey != "" && string(msg.Key) == p.failKey {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakeProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func seed(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	sink := outbox.NewSink(store)
	for i := range n {
		require.NoError(t, sink.Append(context.Background(), audit.Event{
			Action:        audit.ActionCertificateRevoked,
			ActorID:       id.NewSubjectID(),
			CertificateID: id.NewCertificateID().String(),
			Timestamp:     time.Now().Add(time.Duration(i) * time.Millisecond),
		}))
	}
}

func TestPoll_PublishesAndMarks(t *testing.T) {
	store := memory.New()
	seed(t, store, 3)
	prod := &fakeProducer{}
	w := New(store, prod, WithTopic("audit-test"))

	assert.Equal(t, 3, w.Poll(context.Background()))

	require.Equal(t, 3, prod.count())
	msg := prod.messages[0]
	assert.Equal(t, "audit-test", msg.Topic)
	assert.Equal(t, "certificate", msg.Headers["aggregate_type"])
	assert.Equal(t, string(audit.ActionCertificateRevoked), msg.Headers["event_type"])

	pending, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestPoll_FailedEntryStaysPending(t *testing.T) {
	store := memory.New()
	seed(t, store, 2)
	entries, err := store.FetchUnprocessed(context.Background(), 1)
	require.NoError(t, err)

	prod := &fakeProducer{failKey: entries[0].ID.String()}
	w := New(store, prod)

	assert.Equal(t, 1, w.Poll(context.Background()))

	pending, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}

func TestPoll_RespectsBatchSize(t *testing.T) {
	store := memory.New()
	seed(t, store, 5)
	w := New(store, &fakeProducer{}, WithBatchSize(2))

	assert.Equal(t, 2, w.Poll(context.Background()))
}

func TestStartStop_DrainsRemaining(t *testing.T) {
	store := memory.New()
	seed(t, store, 4)
	prod := &fakeProducer{}
	w := New(store, prod, WithPollInterval(time.Hour))

	w.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Equal(t, 4, prod.count())
}
