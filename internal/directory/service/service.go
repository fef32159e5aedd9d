package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"credvault/internal/directory/metrics"
	"credvault/internal/directory/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/sentinel"
	"credvault/pkg/requestcontext"
	"credvault/pkg/secrets"
)

// Store defines the persistence interface for subjects.
// Error Contract:
// - FindByID / FindByContact return sentinel.ErrNotFound when absent
// - Save returns sentinel.ErrConflict when the contact is already bound
// - anything else is a transport failure
type Store interface {
	Save(ctx context.Context, subject *models.Subject) error
	FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
	FindByContact(ctx context.Context, contactID string) (*models.Subject, error)
	ListByRole(ctx context.Context, role id.Role) ([]*models.Subject, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service resolves and enrolls subject identities.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, auditor AuditPublisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Get returns the subject with subjectID or CodeNotFound.
func (s *Service) Get(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	subject, err := s.store.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read subject")
	}
	return subject, nil
}

// ResolveByContact looks a subject up by its normalized contact identifier.
func (s *Service) ResolveByContact(ctx context.Context, contactID string) (*models.Subject, error) {
	contact := models.NormalizeContact(contactID)
	if contact == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "contact id is required")
	}
	subject, err := s.store.FindByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read subject")
	}
	return subject, nil
}

// CreateIfAbsent returns the subject bound to contactID, creating it when
// missing. A contact already bound to another role yields CodeRoleMismatch.
func (s *Service) CreateIfAbsent(ctx context.Context, contactID string, role id.Role, displayName string) (*models.Subject, error) {
	subject, _, err := s.Enroll(ctx, contactID, role, displayName)
	return subject, err
}

// Enroll behaves like CreateIfAbsent and also returns the sign-in secret of a
// subject created by this call. The secret is empty when the subject already
// existed, including when a concurrent enroll won the unique contact index.
func (s *Service) Enroll(ctx context.Context, contactID string, role id.Role, displayName string) (*models.Subject, string, error) {
	candidate, err := models.NewSubject(contactID, role, displayName, requestcontext.Now(ctx))
	if err != nil {
		return nil, "", err
	}

	existing, err := s.store.FindByContact(ctx, candidate.ContactID)
	switch {
	case err == nil:
		subject, err := s.checkRole(ctx, existing, role)
		return subject, "", err
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, "", dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read subject")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, "", err
	}
	if candidate.SecretHash, err = secrets.Hash(secret); err != nil {
		return nil, "", err
	}

	if err := s.store.Save(ctx, candidate); err != nil {
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to save subject")
		}
		// Lost a race on the unique contact index: re-read the winner.
		winner, err := s.store.FindByContact(ctx, candidate.ContactID)
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read subject")
		}
		subject, err := s.checkRole(ctx, winner, role)
		return subject, "", err
	}

	if s.metrics != nil {
		s.metrics.IncrementSubjectsEnrolled(role.String())
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionSubjectEnrolled,
		ActorID:   candidate.ID,
		ActorRole: candidate.Role,
	})
	s.logger.InfoContext(ctx, "subject enrolled",
		"subject_id", candidate.ID,
		"role", candidate.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return candidate, secret, nil
}

// Authenticate checks a sign-in secret against the subject bound to contactID.
// Unknown contacts and wrong secrets both yield CodeUnauthorized.
func (s *Service) Authenticate(ctx context.Context, contactID, secret string) (*models.Subject, error) {
	subject, err := s.store.FindByContact(ctx, models.NormalizeContact(contactID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid contact or secret")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read subject")
	}
	if err := secrets.Verify(secret, subject.SecretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.logger.WarnContext(ctx, "sign-in rejected",
				"subject_id", subject.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid contact or secret")
		}
		return nil, err
	}
	return subject, nil
}

func (s *Service) checkRole(ctx context.Context, subject *models.Subject, role id.Role) (*models.Subject, error) {
	if subject.Role == role {
		return subject, nil
	}
	if s.metrics != nil {
		s.metrics.IncrementRoleMismatches()
	}
	s.logger.WarnContext(ctx, "enrollment role mismatch",
		"subject_id", subject.ID,
		"existing_role", subject.Role,
		"requested_role", role,
	)
	return nil, dErrors.New(dErrors.CodeRoleMismatch, "contact is registered with a different role")
}

// ListByRole lists every subject holding role.
func (s *Service) ListByRole(ctx context.Context, role id.Role) ([]*models.Subject, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	subjects, err := s.store.ListByRole(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to list subjects")
	}
	return subjects, nil
}

// SearchCandidates filters candidates by a case-insensitive substring of
// display name or contact. An empty query returns every candidate.
func (s *Service) SearchCandidates(ctx context.Context, query string) ([]*models.Subject, error) {
	candidates, err := s.ListByRole(ctx, id.RoleCandidate)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return candidates, nil
	}
	matches := make([]*models.Subject, 0, len(candidates))
	for _, c := range candidates {
		if c.Matches(query) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
