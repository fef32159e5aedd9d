//go:build integration

package worker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"credvault/internal/platform/kafka/producer"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/audit/outbox"
	outboxpostgres "credvault/pkg/platform/audit/outbox/store/postgres"
	"credvault/pkg/platform/audit/outbox/worker"
	"credvault/pkg/testutil/containers"
)

type WorkerIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	kafka    *containers.KafkaContainer
	store    *outboxpostgres.Store
	producer *producer.Producer
}

func TestWorkerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(WorkerIntegrationSuite))
}

func (s *WorkerIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.kafka = mgr.GetKafka(s.T())
	s.store = outboxpostgres.New(s.postgres.DB)

	prod, err := producer.New(producer.DefaultConfig(s.kafka.Brokers), nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *WorkerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *WorkerIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

// Events appended to the outbox reach Kafka and are marked processed.
func (s *WorkerIntegrationSuite) TestOutboxToKafkaFlow() {
	ctx := context.Background()
	topic := "test-outbox-flow"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	certificateID := id.NewCertificateID().String()
	sink := outbox.NewSink(s.store)
	s.Require().NoError(sink.Append(ctx, audit.Event{
		Action:        audit.ActionCertificateIssued,
		ActorID:       id.NewSubjectID(),
		CertificateID: certificateID,
		Timestamp:     time.Now(),
	}))

	w := worker.New(s.store, s.producer, worker.WithTopic(topic))
	s.Equal(1, w.Poll(ctx))

	record, err := s.kafka.WaitForRecord(topic, 10*time.Second, func(r *kgo.Record) bool {
		for _, h := range r.Headers {
			if h.Key == "aggregate_id" && string(h.Value) == certificateID {
				return true
			}
		}
		return false
	})
	s.Require().NoError(err)

	var event audit.Event
	s.Require().NoError(json.Unmarshal(record.Value, &event))
	s.Equal(audit.ActionCertificateIssued, event.Action)

	pending, err := s.store.CountPending(ctx)
	s.Require().NoError(err)
	s.Zero(pending)
}
