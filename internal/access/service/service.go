package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"credvault/internal/access/metrics"
	"credvault/internal/access/models"
	dirmodels "credvault/internal/directory/models"
	regmodels "credvault/internal/registry/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/sentinel"
	"credvault/pkg/requestcontext"
)

// Store persists access requests. See the store package for its error contract.
type Store interface {
	Save(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, reqID id.AccessRequestID) (*models.Request, error)
	FindPending(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (*models.Request, error)
	HasApproved(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error)
	ListByCertificate(ctx context.Context, certID id.CertificateID) ([]*models.Request, error)
	ListByRequester(ctx context.Context, requesterID id.SubjectID) ([]*models.Request, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Request, error)
	Execute(ctx context.Context, reqID id.AccessRequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error)
}

// CertificateReader is the certificate record store slice used inside a transaction.
// FindForShare must keep the certificate stable until the transaction ends.
type CertificateReader interface {
	FindForShare(ctx context.Context, certID id.CertificateID) (*regmodels.Certificate, error)
}

// CertificateStore is the certificate record store slice used outside transactions.
type CertificateStore interface {
	FindByID(ctx context.Context, certID id.CertificateID) (*regmodels.Certificate, error)
	ListByCandidate(ctx context.Context, candidateID id.SubjectID) ([]*regmodels.Certificate, error)
}

// SubjectResolver returns CodeNotFound for unknown subjects.
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

// WithTx overrides the transaction runner. The default serializes per certificate in memory.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// Service runs the access grant workflow: pending → approved | denied.
type Service struct {
	requests     Store
	certificates CertificateStore
	subjects     SubjectResolver
	tx           StoreTx
	auditor      AuditPublisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// CertificateStoreReader satisfies both certificate slices, as the registry stores do.
type CertificateStoreReader interface {
	CertificateStore
	CertificateReader
}

func NewService(requests Store, certificates CertificateStoreReader, subjects SubjectResolver, auditor AuditPublisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		requests:     requests,
		certificates: certificates,
		subjects:     subjects,
		auditor:      auditor,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tx == nil {
		svc.tx = NewShardedTx(Stores{Requests: requests, Certificates: certificates})
	}
	return svc
}

// CreateRequest opens a pending request from an organization for one certificate.
func (s *Service) CreateRequest(ctx context.Context, requesterID id.SubjectID, certID id.CertificateID) (*models.Request, error) {
	requester, err := s.subjects.Get(ctx, requesterID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "only organizations may request access")
		}
		return nil, err
	}
	if requester.Role != id.RoleOrganization {
		return nil, dErrors.New(dErrors.CodeForbidden, "only organizations may request access")
	}

	var created *models.Request
	txErr := s.tx.RunInTx(withShardKey(ctx, certID.String()), func(ctx context.Context, stores Stores) error {
		if _, err := stores.Certificates.FindForShare(ctx, certID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "certificate not found")
			}
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read certificate")
		}

		_, err := stores.Requests.FindPending(ctx, certID, requesterID)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeDuplicatePending, "a pending request already exists for this certificate")
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read access requests")
		}

		req := models.NewRequest(certID, requesterID, requestcontext.Now(ctx))
		if err := stores.Requests.Save(ctx, req); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeDuplicatePending, "a pending request already exists for this certificate")
			}
			return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to save access request")
		}
		created = req
		return nil
	})
	if txErr != nil {
		if dErrors.HasCode(txErr, dErrors.CodeDuplicatePending) && s.metrics != nil {
			s.metrics.IncrementDuplicate()
		}
		return nil, s.storeUnavailable(txErr, "access request transaction failed")
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.emitAudit(ctx, audit.Event{
		Action:          audit.ActionAccessRequested,
		ActorID:         requesterID,
		ActorRole:       id.RoleOrganization,
		CertificateID:   certID.String(),
		AccessRequestID: created.ID.String(),
	})
	s.logger.InfoContext(ctx, "access requested",
		"access_request_id", created.ID,
		"certificate_id", certID,
		"requester_id", requesterID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return created, nil
}

// Decide records the owning candidate's decision on a pending request.
func (s *Service) Decide(ctx context.Context, candidateID id.SubjectID, reqID id.AccessRequestID, decision models.Decision) (*models.Request, error) {
	if decision != models.DecisionApproved && decision != models.DecisionDenied {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "decision must be approved or denied")
	}

	req, err := s.requests.FindByID(ctx, reqID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "access request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read access request")
	}
	cert, err := s.certificates.FindByID(ctx, req.CertificateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read certificate")
	}
	if cert.CandidateID != candidateID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the certificate holder may decide")
	}

	now := requestcontext.Now(ctx)
	updated, err := s.requests.Execute(ctx, reqID,
		func(r *models.Request) error {
			if !r.IsPending() {
				return dErrors.New(dErrors.CodeAlreadyDecided, "access request already decided")
			}
			return nil
		},
		func(r *models.Request) {
			_ = r.Decide(decision, now)
		},
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyDecided) && s.metrics != nil {
			s.metrics.IncrementDecisionConflicts()
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "access request not found")
		}
		return nil, s.storeUnavailable(err, "failed to decide access request")
	}

	if s.metrics != nil {
		s.metrics.IncrementDecision(string(decision))
	}
	s.emitAudit(ctx, audit.Event{
		Action:          audit.ActionAccessDecided,
		ActorID:         candidateID,
		ActorRole:       id.RoleCandidate,
		CertificateID:   updated.CertificateID.String(),
		AccessRequestID: updated.ID.String(),
		Decision:        string(updated.Status),
	})
	s.logger.InfoContext(ctx, "access request decided",
		"access_request_id", updated.ID,
		"certificate_id", updated.CertificateID,
		"decision", updated.Status,
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
}

// ListPendingFor lists pending requests against the candidate's certificates, newest first.
func (s *Service) ListPendingFor(ctx context.Context, candidateID id.SubjectID) ([]*models.Request, error) {
	certs, err := s.certificates.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list certificates")
	}
	pending := make([]*models.Request, 0)
	for _, cert := range certs {
		requests, err := s.requests.ListByCertificate(ctx, cert.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list access requests")
		}
		for _, r := range requests {
			if r.IsPending() {
				pending = append(pending, r)
			}
		}
	}
	slices.SortStableFunc(pending, func(a, b *models.Request) int {
		return b.RequestedAt.Compare(a.RequestedAt)
	})
	return pending, nil
}

// ListDecisionsFor lists a requester's decided requests, most recent decision first.
func (s *Service) ListDecisionsFor(ctx context.Context, requesterID id.SubjectID) ([]*models.Request, error) {
	requests, err := s.requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list access requests")
	}
	decided := slices.DeleteFunc(requests, (*models.Request).IsPending)
	slices.SortStableFunc(decided, func(a, b *models.Request) int {
		return b.DecidedAt.Compare(*a.DecidedAt)
	})
	return decided, nil
}

// HasApprovedGrant reports whether requesterID holds an approved request for certID.
func (s *Service) HasApprovedGrant(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error) {
	ok, err := s.requests.HasApproved(ctx, certID, requesterID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to check access grant")
	}
	return ok, nil
}

// RequesterStats summarizes a requester's request outcomes.
func (s *Service) RequesterStats(ctx context.Context, requesterID id.SubjectID) (*models.Stats, error) {
	requests, err := s.requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list access requests")
	}
	return models.NewStats(requests), nil
}

// storeUnavailable keeps domain errors and wraps anything else as a store failure.
func (s *Service) storeUnavailable(err error, msg string) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, msg)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
