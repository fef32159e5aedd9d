package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	accessmodels "credvault/internal/access/models"
	accessservice "credvault/internal/access/service"
	accessstore "credvault/internal/access/store"
	dirmodels "credvault/internal/directory/models"
	dirservice "credvault/internal/directory/service"
	dirstore "credvault/internal/directory/store"
	regmodels "credvault/internal/registry/models"
	regservice "credvault/internal/registry/service"
	regstore "credvault/internal/registry/store"
	"credvault/internal/verification/cache"
	"credvault/internal/verification/models"
	"credvault/internal/verification/service/mocks"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/audit/publisher"
	"credvault/pkg/platform/circuit"
	"credvault/pkg/requestcontext"
)

// ServiceSuite wires the registry, the access workflow and the facade over
// the in-memory stores.
type ServiceSuite struct {
	suite.Suite
	registry  *regservice.Service
	access    *accessservice.Service
	service   *Service
	sink      *audit.InMemorySink
	issuer    *dirmodels.Subject
	candidate *dirmodels.Subject
	org       *dirmodels.Subject
	org2      *dirmodels.Subject
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	s.sink = audit.NewInMemorySink()
	auditor := publisher.New(s.sink)

	directory := dirservice.NewService(dirstore.New(), nil, logger)
	certs := regstore.New()
	s.registry = regservice.NewService(certs, directory, auditor, logger)
	s.access = accessservice.NewService(accessstore.New(), certs, directory, auditor, logger)
	s.service = NewService(s.registry, s.access, auditor, logger, WithGrantCache(cache.NewInMemoryCache(time.Minute)))
	s.now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	enroll := func(contact string, role id.Role) *dirmodels.Subject {
		subj, err := directory.CreateIfAbsent(ctx, contact, role, "")
		s.Require().NoError(err)
		return subj
	}
	s.issuer = enroll("registrar@uni.example", id.RoleIssuer)
	s.candidate = enroll("ada@example.com", id.RoleCandidate)
	s.org = enroll("hr@acme.example", id.RoleOrganization)
	s.org2 = enroll("talent@globex.example", id.RoleOrganization)
}

func (s *ServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *ServiceSuite) issue(validityMonths int) *regmodels.Certificate {
	cert, err := s.registry.Issue(s.at(s.now), s.issuer.ID, s.candidate.ID, "Cloud Cert", validityMonths, nil)
	s.Require().NoError(err)
	return cert
}

func (s *ServiceSuite) grant(certID id.CertificateID, requesterID id.SubjectID, decision accessmodels.Decision) {
	req, err := s.access.CreateRequest(s.at(s.now), requesterID, certID)
	s.Require().NoError(err)
	_, err = s.access.Decide(s.at(s.now), s.candidate.ID, req.ID, decision)
	s.Require().NoError(err)
}

func (s *ServiceSuite) verify(requesterID id.SubjectID, certID id.CertificateID, at time.Time) *models.Result {
	result, err := s.service.Verify(s.at(at), requesterID, certID)
	s.Require().NoError(err)
	return result
}

func (s *ServiceSuite) TestDenyThenApprove() {
	cert := s.issue(12)
	s.Equal(regmodels.StatusActive, cert.ResolveStatus(s.now))

	s.grant(cert.ID, s.org.ID, accessmodels.DecisionDenied)
	s.Equal(models.OutcomeNoActiveGrant, s.verify(s.org.ID, cert.ID, s.now).Outcome)

	s.grant(cert.ID, s.org.ID, accessmodels.DecisionApproved)
	result := s.verify(s.org.ID, cert.ID, s.now)
	s.Equal(models.OutcomeGranted, result.Outcome)
	s.Equal(regmodels.StatusActive, result.Status)
	s.Equal(cert.ID, result.Certificate.ID)
	s.Equal("Cloud Cert", result.Certificate.Title)
}

func (s *ServiceSuite) TestGrantIsScopedToThePair() {
	cert := s.issue(12)
	other := s.issue(12)
	s.grant(cert.ID, s.org.ID, accessmodels.DecisionApproved)

	s.Run("other requester", func() {
		s.Equal(models.OutcomeNoActiveGrant, s.verify(s.org2.ID, cert.ID, s.now).Outcome)
	})
	s.Run("other certificate", func() {
		s.Equal(models.OutcomeNoActiveGrant, s.verify(s.org.ID, other.ID, s.now).Outcome)
	})
	s.Run("denied results never carry content", func() {
		result := s.verify(s.org2.ID, cert.ID, s.now)
		s.Nil(result.Certificate)
	})
}

func (s *ServiceSuite) TestUnknownCertificate() {
	result := s.verify(s.org.ID, id.NewCertificateID(), s.now)
	s.Equal(models.OutcomeCertificateNotFound, result.Outcome)
	s.Nil(result.Certificate)
}

func (s *ServiceSuite) TestStatusIsRecomputedOnEveryCall() {
	cert := s.issue(1)
	s.grant(cert.ID, s.org.ID, accessmodels.DecisionApproved)

	s.Equal(regmodels.StatusActive, s.verify(s.org.ID, cert.ID, s.now).Status)

	later := s.now.Add(31 * 24 * time.Hour)
	s.Equal(regmodels.StatusExpired, s.verify(s.org.ID, cert.ID, later).Status)

	s.Require().NoError(s.registry.Revoke(s.at(s.now), s.issuer.ID, cert.ID))
	result := s.verify(s.org.ID, cert.ID, s.now)
	s.Equal(models.OutcomeGranted, result.Outcome)
	s.Equal(regmodels.StatusRevoked, result.Status)
}

func (s *ServiceSuite) TestRevokeLeavesAccessRequestsUntouched() {
	cert := s.issue(12)
	s.grant(cert.ID, s.org.ID, accessmodels.DecisionApproved)
	_, err := s.access.CreateRequest(s.at(s.now), s.org2.ID, cert.ID)
	s.Require().NoError(err)

	decidedBefore, err := s.access.ListDecisionsFor(s.at(s.now), s.org.ID)
	s.Require().NoError(err)
	s.Require().Len(decidedBefore, 1)
	pendingBefore, err := s.access.ListPendingFor(s.at(s.now), s.candidate.ID)
	s.Require().NoError(err)
	s.Require().Len(pendingBefore, 1)
	decidedAt := *decidedBefore[0].DecidedAt

	s.Require().NoError(s.registry.Revoke(s.at(s.now.Add(time.Hour)), s.issuer.ID, cert.ID))

	decidedAfter, err := s.access.ListDecisionsFor(s.at(s.now.Add(time.Hour)), s.org.ID)
	s.Require().NoError(err)
	s.Require().Len(decidedAfter, 1)
	s.Equal(accessmodels.StatusApproved, decidedAfter[0].Status)
	s.Equal(decidedAt, *decidedAfter[0].DecidedAt)
	s.Equal(decidedBefore[0].ID, decidedAfter[0].ID)

	pendingAfter, err := s.access.ListPendingFor(s.at(s.now.Add(time.Hour)), s.candidate.ID)
	s.Require().NoError(err)
	s.Require().Len(pendingAfter, 1)
	s.Equal(pendingBefore[0].ID, pendingAfter[0].ID)
	s.Equal(accessmodels.StatusPending, pendingAfter[0].Status)
	s.Nil(pendingAfter[0].DecidedAt)

	granted, err := s.access.HasApprovedGrant(context.Background(), cert.ID, s.org.ID)
	s.Require().NoError(err)
	s.True(granted)
}

func (s *ServiceSuite) TestNonExpiringCertificate() {
	cert := s.issue(0)
	s.Nil(cert.ExpiresAt)
	s.grant(cert.ID, s.org.ID, accessmodels.DecisionApproved)

	result := s.verify(s.org.ID, cert.ID, s.now.AddDate(50, 0, 0))
	s.Equal(regmodels.StatusActive, result.Status)
}

func (s *ServiceSuite) TestAuditsEveryCall() {
	cert := s.issue(12)
	s.verify(s.org.ID, cert.ID, s.now)
	s.grant(cert.ID, s.org.ID, accessmodels.DecisionApproved)
	s.verify(s.org.ID, cert.ID, s.now)

	denied := s.sink.ByAction(audit.ActionVerificationRejected)
	s.Require().Len(denied, 1)
	s.Equal(string(models.OutcomeNoActiveGrant), denied[0].Decision)

	granted := s.sink.ByAction(audit.ActionVerificationGranted)
	s.Require().Len(granted, 1)
	s.Equal(s.org.ID, granted[0].ActorID)
	s.Equal(cert.ID.String(), granted[0].CertificateID)
	s.Equal(string(regmodels.StatusActive), granted[0].Reason)
}

// GrantCacheSuite exercises cache interaction against mocked collaborators.
type GrantCacheSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	certs     *mocks.MockCertificateReader
	grants    *mocks.MockGrantChecker
	cache     *mocks.MockGrantCache
	service   *Service
	cert      *regmodels.Certificate
	requester id.SubjectID
}

func TestGrantCacheSuite(t *testing.T) {
	suite.Run(t, new(GrantCacheSuite))
}

func (s *GrantCacheSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.certs = mocks.NewMockCertificateReader(s.ctrl)
	s.grants = mocks.NewMockGrantChecker(s.ctrl)
	s.cache = mocks.NewMockGrantCache(s.ctrl)
	s.service = NewService(s.certs, s.grants, nil, slog.New(slog.DiscardHandler), WithGrantCache(s.cache))

	cert, err := regmodels.NewCertificate(id.NewSubjectID(), id.NewSubjectID(), "Cloud Cert", 12, nil, time.Now())
	s.Require().NoError(err)
	s.cert = cert
	s.requester = id.NewSubjectID()
	s.certs.EXPECT().Get(gomock.Any(), s.cert.ID).Return(s.cert, nil).AnyTimes()
}

func (s *GrantCacheSuite) TestHitSkipsStore() {
	s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(true, nil)

	result, err := s.service.Verify(context.Background(), s.requester, s.cert.ID)
	s.Require().NoError(err)
	s.True(result.IsGranted())
}

func (s *GrantCacheSuite) TestPositiveMissIsRemembered() {
	gomock.InOrder(
		s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(false, nil),
		s.grants.EXPECT().HasApprovedGrant(gomock.Any(), s.cert.ID, s.requester).Return(true, nil),
		s.cache.EXPECT().Remember(gomock.Any(), s.cert.ID, s.requester).Return(nil),
	)

	result, err := s.service.Verify(context.Background(), s.requester, s.cert.ID)
	s.Require().NoError(err)
	s.True(result.IsGranted())
}

func (s *GrantCacheSuite) TestNegativeIsNotRemembered() {
	s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(false, nil)
	s.grants.EXPECT().HasApprovedGrant(gomock.Any(), s.cert.ID, s.requester).Return(false, nil)

	result, err := s.service.Verify(context.Background(), s.requester, s.cert.ID)
	s.Require().NoError(err)
	s.Equal(models.OutcomeNoActiveGrant, result.Outcome)
}

func (s *GrantCacheSuite) TestCacheFailureFallsBackToStore() {
	s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(false, errors.New("connection refused"))
	s.grants.EXPECT().HasApprovedGrant(gomock.Any(), s.cert.ID, s.requester).Return(true, nil)
	s.cache.EXPECT().Remember(gomock.Any(), s.cert.ID, s.requester).Return(errors.New("connection refused"))

	result, err := s.service.Verify(context.Background(), s.requester, s.cert.ID)
	s.Require().NoError(err)
	s.True(result.IsGranted())
}

func (s *GrantCacheSuite) TestStoreFailureIsStoreUnavailable() {
	s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(false, nil)
	s.grants.EXPECT().HasApprovedGrant(gomock.Any(), s.cert.ID, s.requester).Return(false, errors.New("connection reset"))

	_, err := s.service.Verify(context.Background(), s.requester, s.cert.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
}

func (s *GrantCacheSuite) TestCertificateLoadFailureKeepsDomainCode() {
	certID := id.NewCertificateID()
	certs := mocks.NewMockCertificateReader(s.ctrl)
	grants := mocks.NewMockGrantChecker(s.ctrl)
	svc := NewService(certs, grants, nil, slog.New(slog.DiscardHandler))

	certs.EXPECT().Get(gomock.Any(), certID).
		Return(nil, dErrors.Wrap(errors.New("dial tcp"), dErrors.CodeStoreUnavailable, "failed to read certificate"))
	grants.EXPECT().HasApprovedGrant(gomock.Any(), certID, s.requester).Return(true, nil).AnyTimes()

	_, err := svc.Verify(context.Background(), s.requester, certID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
}

func (s *GrantCacheSuite) TestOpenCircuitBypassesCache() {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("grant_cache",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithRetryInterval(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	svc := NewService(s.certs, s.grants, nil, slog.New(slog.DiscardHandler),
		WithGrantCache(s.cache), WithCacheBreaker(breaker))
	ctx := context.Background()

	s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(false, errors.New("i/o timeout")).Times(2)
	s.grants.EXPECT().HasApprovedGrant(gomock.Any(), s.cert.ID, s.requester).Return(false, nil).Times(3)
	for range 3 {
		result, err := svc.Verify(ctx, s.requester, s.cert.ID)
		s.Require().NoError(err)
		s.Equal(models.OutcomeNoActiveGrant, result.Outcome)
	}
	s.True(breaker.IsOpen())

	now = now.Add(time.Minute)
	s.cache.EXPECT().Lookup(gomock.Any(), s.cert.ID, s.requester).Return(true, nil)
	result, err := svc.Verify(ctx, s.requester, s.cert.ID)
	s.Require().NoError(err)
	s.True(result.IsGranted())
	s.False(breaker.IsOpen())
}
