package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dirmodels "credvault/internal/directory/models"
	"credvault/internal/registry/metrics"
	"credvault/internal/registry/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/sentinel"
	"credvault/pkg/requestcontext"
)

// Store persists certificates. See the store package for its error contract.
type Store interface {
	Save(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	ListByIssuer(ctx context.Context, issuerID id.SubjectID) ([]*models.Certificate, error)
	ListByCandidate(ctx context.Context, candidateID id.SubjectID) ([]*models.Certificate, error)
	Execute(ctx context.Context, certID id.CertificateID, validate func(*models.Certificate) error, mutate func(*models.Certificate)) (*models.Certificate, error)
}

// SubjectResolver looks subjects up in the directory.
// Returns CodeNotFound when the subject does not exist.
type SubjectResolver interface {
	Get(ctx context.Context, subjectID id.SubjectID) (*dirmodels.Subject, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service issues, revokes, and lists certificates.
type Service struct {
	store    Store
	subjects SubjectResolver
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(store Store, subjects SubjectResolver, auditor AuditPublisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		subjects: subjects,
		auditor:  auditor,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Issue creates an active certificate from issuerID to candidateID.
func (s *Service) Issue(ctx context.Context, issuerID, candidateID id.SubjectID, title string, validityMonths int, attributes map[string]any) (*models.Certificate, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveIssueLatency(time.Since(start).Seconds())
		}
	}()

	if err := s.requireRole(ctx, issuerID, id.RoleIssuer, dErrors.CodeForbidden, "only issuers may issue certificates"); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, candidateID, id.RoleCandidate, dErrors.CodeInvalidSubject, "recipient is not a candidate"); err != nil {
		return nil, err
	}

	cert, err := models.NewCertificate(issuerID, candidateID, title, validityMonths, attributes, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cert); err != nil {
		if errors.Is(err, sentinel.ErrInvalidInput) {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "certificate attributes could not be stored")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to save certificate")
	}

	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionCertificateIssued,
		ActorID:       issuerID,
		ActorRole:     id.RoleIssuer,
		CertificateID: cert.ID.String(),
	})
	s.logger.InfoContext(ctx, "certificate issued",
		"certificate_id", cert.ID,
		"issuer_id", issuerID,
		"candidate_id", candidateID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return cert, nil
}

// requireRole resolves subjectID and checks its role. A missing subject or a
// different role both yield code.
func (s *Service) requireRole(ctx context.Context, subjectID id.SubjectID, role id.Role, code dErrors.Code, msg string) error {
	subject, err := s.subjects.Get(ctx, subjectID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(code, msg)
		}
		return err
	}
	if subject.Role != role {
		return dErrors.New(code, msg)
	}
	return nil
}

// Revoke marks a certificate revoked. Revoking an already revoked certificate succeeds without change.
func (s *Service) Revoke(ctx context.Context, issuerID id.SubjectID, certID id.CertificateID) error {
	now := requestcontext.Now(ctx)
	alreadyRevoked := false

	_, err := s.store.Execute(ctx, certID,
		func(c *models.Certificate) error {
			if c.IssuerID != issuerID {
				return dErrors.New(dErrors.CodeForbidden, "certificate belongs to another issuer")
			}
			alreadyRevoked = c.IsRevoked()
			return nil
		},
		func(c *models.Certificate) {
			c.Revoke(now)
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "certificate not found")
		case dErrors.HasCode(err, dErrors.CodeForbidden):
			return err
		default:
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to revoke certificate")
		}
	}

	if alreadyRevoked {
		if s.metrics != nil {
			s.metrics.IncrementNoop()
		}
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionCertificateRevoked,
		ActorID:       issuerID,
		ActorRole:     id.RoleIssuer,
		CertificateID: certID.String(),
	})
	s.logger.InfoContext(ctx, "certificate revoked",
		"certificate_id", certID,
		"issuer_id", issuerID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Get loads a certificate by id.
func (s *Service) Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	cert, err := s.store.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read certificate")
	}
	return cert, nil
}

// ListFor lists the certificates visible to subjectID acting as role, newest first.
// Organizations have no list view; they go through verification.
func (s *Service) ListFor(ctx context.Context, subjectID id.SubjectID, role id.Role) ([]*models.CertificateView, error) {
	var (
		certs []*models.Certificate
		err   error
	)
	switch role {
	case id.RoleIssuer:
		certs, err = s.store.ListByIssuer(ctx, subjectID)
	case id.RoleCandidate:
		certs, err = s.store.ListByCandidate(ctx, subjectID)
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "role cannot list certificates")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list certificates")
	}

	now := requestcontext.Now(ctx)
	views := make([]*models.CertificateView, 0, len(certs))
	for _, c := range certs {
		views = append(views, models.NewView(c, now))
	}
	return views, nil
}

// ListSummariesForCandidate returns the discovery projection of a candidate's certificates.
func (s *Service) ListSummariesForCandidate(ctx context.Context, candidateID id.SubjectID) ([]*models.Summary, error) {
	if err := s.requireRole(ctx, candidateID, id.RoleCandidate, dErrors.CodeInvalidSubject, "subject is not a candidate"); err != nil {
		return nil, err
	}
	certs, err := s.store.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list certificates")
	}
	summaries := make([]*models.Summary, 0, len(certs))
	for _, c := range certs {
		summaries = append(summaries, models.NewSummary(c))
	}
	return summaries, nil
}

// IssuerStats counts an issuer's certificates by status at request time.
func (s *Service) IssuerStats(ctx context.Context, issuerID id.SubjectID) (*models.Stats, error) {
	certs, err := s.store.ListByIssuer(ctx, issuerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list certificates")
	}
	now := requestcontext.Now(ctx)
	stats := &models.Stats{}
	for _, c := range certs {
		stats.Add(c.ResolveStatus(now))
	}
	return stats, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
