package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dirmodels "credvault/internal/directory/models"
	"credvault/internal/registry/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/httputil"
	"credvault/pkg/platform/middleware/auth"
	"credvault/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, issuerID, candidateID id.SubjectID, title string, validityMonths int, attributes map[string]any) (*models.Certificate, error)
	Revoke(ctx context.Context, issuerID id.SubjectID, certID id.CertificateID) error
	ListFor(ctx context.Context, subjectID id.SubjectID, role id.Role) ([]*models.CertificateView, error)
	ListSummariesForCandidate(ctx context.Context, candidateID id.SubjectID) ([]*models.Summary, error)
	IssuerStats(ctx context.Context, issuerID id.SubjectID) (*models.Stats, error)
}

// ContactResolver maps a candidate contact identifier to a subject.
type ContactResolver interface {
	ResolveByContact(ctx context.Context, contactID string) (*dirmodels.Subject, error)
}

type Handler struct {
	registry Service
	contacts ContactResolver
	logger   *slog.Logger
}

func New(registry Service, contacts ContactResolver, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		contacts: contacts,
		logger:   logger,
	}
}

// Register registers certificate routes. Callers must mount it behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	issuerOnly := auth.RequireRole(h.logger, id.RoleIssuer)

	r.With(issuerOnly).Post("/certificates", h.HandleIssue)
	r.With(issuerOnly).Post("/certificates/{id}/revoke", h.HandleRevoke)
	r.With(issuerOnly).Get("/certificates/stats", h.HandleStats)
	r.With(auth.RequireRole(h.logger, id.RoleIssuer, id.RoleCandidate)).
		Get("/certificates", h.HandleList)
	r.With(auth.RequireRole(h.logger, id.RoleOrganization)).
		Get("/candidates/{id}/certificates", h.HandleCandidateSummaries)
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	issuerID, _, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	candidateID := req.candidate
	if candidateID.IsNil() {
		candidate, err := h.contacts.ResolveByContact(ctx, req.CandidateContact)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				err = dErrors.New(dErrors.CodeInvalidSubject, "no candidate registered for contact")
			}
			httputil.WriteError(w, err)
			return
		}
		candidateID = candidate.ID
	}

	cert, err := h.registry.Issue(ctx, issuerID, candidateID, req.Title, req.ValidityMonths, req.Attributes)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to issue certificate",
			"request_id", requestID,
			"issuer_id", issuerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.NewView(cert, requestcontext.Now(ctx)))
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	issuerID, _, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.Revoke(ctx, issuerID, certID); err != nil {
		h.logger.WarnContext(ctx, "failed to revoke certificate",
			"request_id", requestID,
			"certificate_id", certID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &RevokeResponse{
		CertificateID: certID.String(),
		Status:        models.StatusRevoked,
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	subjectID, role, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	views, err := h.registry.ListFor(ctx, subjectID, role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Certificates: views})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	issuerID, _, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.registry.IssuerStats(ctx, issuerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleCandidateSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidateID, err := id.ParseSubjectID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summaries, err := h.registry.ListSummariesForCandidate(ctx, candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &SummaryListResponse{Certificates: summaries})
}
