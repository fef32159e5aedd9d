package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	regmodels "credvault/internal/registry/models"
	"credvault/internal/verification/metrics"
	"credvault/internal/verification/models"
	"credvault/internal/verification/tracer"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/audit"
	"credvault/pkg/platform/circuit"
	"credvault/pkg/requestcontext"
)

// CertificateReader loads certificates. Returns CodeNotFound for unknown ids.
type CertificateReader interface {
	Get(ctx context.Context, certID id.CertificateID) (*regmodels.Certificate, error)
}

// GrantChecker answers whether an approved access request exists for the pair.
type GrantChecker interface {
	HasApprovedGrant(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error)
}

// GrantCache remembers positive grant lookups.
type GrantCache interface {
	Lookup(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error)
	Remember(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) error
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

func WithGrantCache(c GrantCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCacheBreaker replaces the default breaker guarding the grant cache.
func WithCacheBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// Service is the only read path that returns certificate content to organizations.
type Service struct {
	certificates CertificateReader
	grants       GrantChecker
	cache        GrantCache
	breaker      *circuit.Breaker
	auditor      AuditPublisher
	tracer       tracer.Tracer
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewService(certificates CertificateReader, grants GrantChecker, auditor AuditPublisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		certificates: certificates,
		grants:       grants,
		auditor:      auditor,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.cache != nil && svc.breaker == nil {
		svc.breaker = circuit.New("grant_cache")
	}
	return svc
}

// Verify reports whether requesterID may see certID and, when it may, the
// certificate with its status resolved on this call.
//
// The certificate load and the grant lookup run concurrently. A grant held for
// a revoked or expired certificate is still granted; the live status tells the
// caller what the certificate is worth.
func (s *Service) Verify(ctx context.Context, requesterID id.SubjectID, certID id.CertificateID) (result *models.Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrCertificateID, certID.String()),
		tracer.String(tracer.AttrRequesterID, requesterID.String()),
	)
	defer func() {
		if result != nil {
			span.SetAttributes(tracer.String(tracer.AttrOutcome, result.Outcome.String()))
		}
		span.End(err)
	}()

	var (
		cert    *regmodels.Certificate
		granted bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		cert, loadErr = s.loadCertificate(gctx, certID)
		return loadErr
	})
	g.Go(func() error {
		var lookupErr error
		granted, lookupErr = s.lookupGrant(gctx, certID, requesterID)
		return lookupErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	switch {
	case cert == nil:
		result = models.CertificateNotFound(certID, now)
	case !granted:
		result = models.NoActiveGrant(certID, now)
	default:
		result = models.Granted(cert, now)
		span.SetAttributes(tracer.String(tracer.AttrStatus, string(result.Status)))
	}

	s.record(ctx, span, requesterID, result)
	if s.metrics != nil {
		s.metrics.IncrementOutcome(result.Outcome.String())
		s.metrics.ObserveVerifyLatency(time.Since(start).Seconds())
	}
	return result, nil
}

// loadCertificate returns nil without error when the certificate does not exist.
func (s *Service) loadCertificate(ctx context.Context, certID id.CertificateID) (*regmodels.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLoadCert)
	cert, err := s.certificates.Get(ctx, certID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			span.End(nil)
			return nil, nil
		}
		span.End(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to load certificate")
	}
	span.End(nil)
	return cert, nil
}

// lookupGrant consults the cache first. Cache failures degrade to the store,
// and an open breaker skips the cache until trial lookups succeed.
func (s *Service) lookupGrant(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGrantLookup)

	switch {
	case s.cache == nil:
	case !s.breaker.Allow():
		if s.metrics != nil {
			s.metrics.RecordCacheBypass()
		}
		span.AddEvent(tracer.EventCacheBypassed)
	default:
		hit, err := s.cache.Lookup(ctx, certID, requesterID)
		if err != nil {
			s.logger.WarnContext(ctx, "grant cache lookup failed", "certificate_id", certID, "error", err)
			s.cacheFailed(ctx, err)
			break
		}
		s.cacheSucceeded(ctx)
		if hit {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
			span.End(nil)
			return true, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	granted, err := s.grants.HasApprovedGrant(ctx, certID, requesterID)
	if err != nil {
		span.End(err)
		return false, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to check access grant")
	}
	if granted && s.cache != nil && !s.breaker.IsOpen() {
		if err := s.cache.Remember(ctx, certID, requesterID); err != nil {
			s.logger.WarnContext(ctx, "failed to cache grant", "certificate_id", certID, "error", err)
			s.cacheFailed(ctx, err)
		} else {
			span.AddEvent(tracer.EventCacheStored)
		}
	}
	span.End(nil)
	return granted, nil
}

func (s *Service) cacheFailed(ctx context.Context, err error) {
	if s.metrics != nil {
		s.metrics.RecordCacheError()
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.ErrorContext(ctx, "grant cache circuit opened",
			"circuit", s.breaker.Name(),
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.SetCacheCircuitOpen(true)
		}
	}
}

func (s *Service) cacheSucceeded(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "grant cache circuit closed", "circuit", s.breaker.Name())
		if s.metrics != nil {
			s.metrics.SetCacheCircuitOpen(false)
		}
	}
}

func (s *Service) record(ctx context.Context, span tracer.Span, requesterID id.SubjectID, result *models.Result) {
	action := audit.ActionVerificationRejected
	if result.IsGranted() {
		action = audit.ActionVerificationGranted
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp:     result.CheckedAt,
		Action:        action,
		ActorID:       requesterID,
		ActorRole:     id.RoleOrganization,
		CertificateID: result.CertificateID.String(),
		Decision:      result.Outcome.String(),
		Reason:        string(result.Status),
		RequestID:     requestcontext.RequestID(ctx),
	})
	span.AddEvent(tracer.EventAuditEmitted)

	s.logger.InfoContext(ctx, "certificate verified",
		"certificate_id", result.CertificateID,
		"requester_id", requesterID,
		"outcome", result.Outcome,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
