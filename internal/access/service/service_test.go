package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credvault/internal/access/models"
	"credvault/internal/access/service/mocks"
	"credvault/internal/access/store"
	dirmodels "credvault/internal/directory/models"
	dirservice "credvault/internal/directory/service"
	dirstore "credvault/internal/directory/store"
	regmodels "credvault/internal/registry/models"
	regstore "credvault/internal/registry/store"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/audit/publisher"
	"credvault/pkg/platform/sentinel"
	"credvault/pkg/requestcontext"
	"credvault/pkg/testutil"
)

// ServiceSuite drives the workflow over the in-memory record stores.
type ServiceSuite struct {
	suite.Suite
	certs     *regstore.InMemoryStore
	requests  *store.InMemoryStore
	sink      *audit.InMemorySink
	service   *Service
	issuer    *dirmodels.Subject
	candidate *dirmodels.Subject
	other     *dirmodels.Subject
	org       *dirmodels.Subject
	org2      *dirmodels.Subject
	cert      *regmodels.Certificate
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	directory := dirservice.NewService(dirstore.New(), nil, logger)
	s.certs = regstore.New()
	s.requests = store.New()
	s.sink = audit.NewInMemorySink()
	s.service = NewService(s.requests, s.certs, directory, publisher.New(s.sink), logger)
	s.now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	enroll := func(contact string, role id.Role) *dirmodels.Subject {
		subj, err := directory.CreateIfAbsent(ctx, contact, role, "")
		s.Require().NoError(err)
		return subj
	}
	s.issuer = enroll("registrar@uni.example", id.RoleIssuer)
	s.candidate = enroll("ada@example.com", id.RoleCandidate)
	s.other = enroll("bob@example.com", id.RoleCandidate)
	s.org = enroll("hr@acme.example", id.RoleOrganization)
	s.org2 = enroll("talent@globex.example", id.RoleOrganization)

	s.cert = s.saveCert(s.candidate.ID, s.now)
}

func (s *ServiceSuite) saveCert(candidateID id.SubjectID, issuedAt time.Time) *regmodels.Certificate {
	cert := testutil.NewCertificateBuilder().
		WithIssuer(s.issuer.ID).
		WithCandidate(candidateID).
		WithTitle("Cloud Cert").
		IssuedAt(issuedAt).
		ExpiresAt(issuedAt.Add(360 * 24 * time.Hour)).
		Build()
	s.Require().NoError(s.certs.Save(context.Background(), cert))
	return cert
}

func (s *ServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *ServiceSuite) TestCreateRequest() {
	s.Run("creates a pending request", func() {
		req, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, req.Status)
		s.Equal(s.now, req.RequestedAt)
		s.Nil(req.DecidedAt)
		s.Len(s.sink.ByAction(audit.ActionAccessRequested), 1)
	})

	s.Run("second pending request for the pair is a duplicate", func() {
		_, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicatePending))
	})

	s.Run("another organization is independent", func() {
		_, err := s.service.CreateRequest(s.at(s.now), s.org2.ID, s.cert.ID)
		s.NoError(err)
	})

	s.Run("non-organization requester is forbidden", func() {
		_, err := s.service.CreateRequest(s.at(s.now), s.candidate.ID, s.cert.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.service.CreateRequest(s.at(s.now), id.NewSubjectID(), s.cert.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown certificate is not found", func() {
		_, err := s.service.CreateRequest(s.at(s.now), s.org.ID, id.NewCertificateID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("cancelled context aborts with timeout", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.service.CreateRequest(ctx, s.org2.ID, s.saveCert(s.candidate.ID, s.now).ID)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *ServiceSuite) TestDecide() {
	req, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
	s.Require().NoError(err)

	s.Run("invalid decision", func() {
		_, err := s.service.Decide(s.at(s.now), s.candidate.ID, req.ID, models.Decision("maybe"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown request", func() {
		_, err := s.service.Decide(s.at(s.now), s.candidate.ID, id.NewAccessRequestID(), models.DecisionApproved)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("only the certificate holder may decide", func() {
		_, err := s.service.Decide(s.at(s.now), s.other.ID, req.ID, models.DecisionApproved)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("holder approves", func() {
		decidedAt := s.now.Add(time.Hour)
		updated, err := s.service.Decide(s.at(decidedAt), s.candidate.ID, req.ID, models.DecisionApproved)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)
		s.Equal(decidedAt, *updated.DecidedAt)

		events := s.sink.ByAction(audit.ActionAccessDecided)
		s.Require().Len(events, 1)
		s.Equal("approved", events[0].Decision)
	})

	s.Run("decided requests are immutable", func() {
		_, err := s.service.Decide(s.at(s.now.Add(2*time.Hour)), s.candidate.ID, req.ID, models.DecisionDenied)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyDecided))

		stored, err := s.requests.FindByID(context.Background(), req.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, stored.Status)
	})
}

// TestDenyThenReRequest covers re-requesting after a denial.
func (s *ServiceSuite) TestDenyThenReRequest() {
	first, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
	s.Require().NoError(err)
	_, err = s.service.Decide(s.at(s.now), s.candidate.ID, first.ID, models.DecisionDenied)
	s.Require().NoError(err)

	granted, err := s.service.HasApprovedGrant(context.Background(), s.cert.ID, s.org.ID)
	s.Require().NoError(err)
	s.False(granted)

	second, err := s.service.CreateRequest(s.at(s.now.Add(time.Minute)), s.org.ID, s.cert.ID)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	_, err = s.service.Decide(s.at(s.now.Add(2*time.Minute)), s.candidate.ID, second.ID, models.DecisionApproved)
	s.Require().NoError(err)

	granted, err = s.service.HasApprovedGrant(context.Background(), s.cert.ID, s.org.ID)
	s.Require().NoError(err)
	s.True(granted)

	// Grants are scoped to the (certificate, requester) pair.
	granted, err = s.service.HasApprovedGrant(context.Background(), s.cert.ID, s.org2.ID)
	s.Require().NoError(err)
	s.False(granted)
	otherCert := s.saveCert(s.candidate.ID, s.now)
	granted, err = s.service.HasApprovedGrant(context.Background(), otherCert.ID, s.org.ID)
	s.Require().NoError(err)
	s.False(granted)
}

func (s *ServiceSuite) TestFeeds() {
	newer := s.saveCert(s.candidate.ID, s.now.Add(time.Hour))
	bobs := s.saveCert(s.other.ID, s.now)

	r1, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
	s.Require().NoError(err)
	r2, err := s.service.CreateRequest(s.at(s.now.Add(time.Minute)), s.org.ID, newer.ID)
	s.Require().NoError(err)
	r3, err := s.service.CreateRequest(s.at(s.now.Add(2*time.Minute)), s.org2.ID, s.cert.ID)
	s.Require().NoError(err)
	_, err = s.service.CreateRequest(s.at(s.now), s.org.ID, bobs.ID)
	s.Require().NoError(err)

	s.Run("pending feed covers the candidate's certificates newest first", func() {
		pending, err := s.service.ListPendingFor(context.Background(), s.candidate.ID)
		s.Require().NoError(err)
		s.Require().Len(pending, 3)
		s.Equal(r3.ID, pending[0].ID)
		s.Equal(r2.ID, pending[1].ID)
		s.Equal(r1.ID, pending[2].ID)
	})

	_, err = s.service.Decide(s.at(s.now.Add(10*time.Minute)), s.candidate.ID, r2.ID, models.DecisionDenied)
	s.Require().NoError(err)
	_, err = s.service.Decide(s.at(s.now.Add(20*time.Minute)), s.candidate.ID, r1.ID, models.DecisionApproved)
	s.Require().NoError(err)

	s.Run("decisions feed is most recent decision first", func() {
		decisions, err := s.service.ListDecisionsFor(context.Background(), s.org.ID)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(r1.ID, decisions[0].ID)
		s.Equal(r2.ID, decisions[1].ID)
	})

	s.Run("decided requests leave the pending feed", func() {
		pending, err := s.service.ListPendingFor(context.Background(), s.candidate.ID)
		s.Require().NoError(err)
		s.Require().Len(pending, 1)
		s.Equal(r3.ID, pending[0].ID)
	})

	s.Run("requester stats", func() {
		stats, err := s.service.RequesterStats(context.Background(), s.org.ID)
		s.Require().NoError(err)
		s.Equal(models.Stats{Approved: 1, Pending: 1, Denied: 1, SuccessRate: 50}, *stats)
	})
}

// TestConcurrentCreateRequest verifies exactly one pending request wins.
func (s *ServiceSuite) TestConcurrentCreateRequest() {
	result := testutil.RunConcurrent(20, func(int) error {
		_, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Equal(int32(0), result.Errors)
}

// TestConcurrentDecide verifies a request is decided exactly once.
func (s *ServiceSuite) TestConcurrentDecide() {
	req, err := s.service.CreateRequest(s.at(s.now), s.org.ID, s.cert.ID)
	s.Require().NoError(err)

	result := testutil.RunConcurrent(20, func(idx int) error {
		decision := models.DecisionApproved
		if idx%2 == 1 {
			decision = models.DecisionDenied
		}
		_, err := s.service.Decide(s.at(s.now), s.candidate.ID, req.ID, decision)
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Len(s.sink.ByAction(audit.ActionAccessDecided), 1)
}

func TestStoreErrorTranslation(t *testing.T) {
	ctrl := gomock.NewController(t)
	requests := mocks.NewMockStore(ctrl)
	certs := mocks.NewMockCertificateStoreReader(ctrl)
	subjects := mocks.NewMockSubjectResolver(ctrl)
	svc := NewService(requests, certs, subjects, nil, slog.New(slog.DiscardHandler))
	ctx := context.Background()
	orgID, certID := id.NewSubjectID(), id.NewCertificateID()

	t.Run("certificate read failure inside the transaction", func(t *testing.T) {
		subjects.EXPECT().Get(gomock.Any(), orgID).Return(&dirmodels.Subject{ID: orgID, Role: id.RoleOrganization}, nil)
		certs.EXPECT().FindForShare(gomock.Any(), certID).Return(nil, assert.AnError)

		_, err := svc.CreateRequest(ctx, orgID, certID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	})

	t.Run("save conflict maps to duplicate pending", func(t *testing.T) {
		subjects.EXPECT().Get(gomock.Any(), orgID).Return(&dirmodels.Subject{ID: orgID, Role: id.RoleOrganization}, nil)
		certs.EXPECT().FindForShare(gomock.Any(), certID).Return(&regmodels.Certificate{ID: certID}, nil)
		requests.EXPECT().FindPending(gomock.Any(), certID, orgID).Return(nil, sentinel.ErrNotFound)
		requests.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := svc.CreateRequest(ctx, orgID, certID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicatePending))
	})

	t.Run("grant lookup failure", func(t *testing.T) {
		requests.EXPECT().HasApproved(gomock.Any(), certID, orgID).Return(false, assert.AnError)
		_, err := svc.HasApprovedGrant(ctx, certID, orgID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	})

	t.Run("execute failure during decide", func(t *testing.T) {
		candidateID := id.NewSubjectID()
		req := models.NewRequest(certID, orgID, time.Now())
		requests.EXPECT().FindByID(gomock.Any(), req.ID).Return(req, nil)
		certs.EXPECT().FindByID(gomock.Any(), certID).Return(&regmodels.Certificate{ID: certID, CandidateID: candidateID}, nil)
		requests.EXPECT().Execute(gomock.Any(), req.ID, gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		_, err := svc.Decide(ctx, candidateID, req.ID, models.DecisionApproved)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
		assert.True(t, dErrors.Retryable(err))
	})
}
