package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credvault/internal/access/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/httputil"
	"credvault/pkg/platform/middleware/auth"
	"credvault/pkg/requestcontext"
)

// Service defines the access grant operations exposed over HTTP.
type Service interface {
	CreateRequest(ctx context.Context, requesterID id.SubjectID, certID id.CertificateID) (*models.Request, error)
	Decide(ctx context.Context, candidateID id.SubjectID, reqID id.AccessRequestID, decision models.Decision) (*models.Request, error)
	ListPendingFor(ctx context.Context, candidateID id.SubjectID) ([]*models.Request, error)
	ListDecisionsFor(ctx context.Context, requesterID id.SubjectID) ([]*models.Request, error)
	RequesterStats(ctx context.Context, requesterID id.SubjectID) (*models.Stats, error)
}

type Handler struct {
	access Service
	logger *slog.Logger
}

func New(access Service, logger *slog.Logger) *Handler {
	return &Handler{access: access, logger: logger}
}

// Register registers access request routes. Callers must mount it behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	organization := auth.RequireRole(h.logger, id.RoleOrganization)
	candidate := auth.RequireRole(h.logger, id.RoleCandidate)

	r.With(organization).Post("/access-requests", h.HandleCreate)
	r.With(organization).Get("/access-requests/decisions", h.HandleListDecisions)
	r.With(organization).Get("/access-requests/stats", h.HandleStats)
	r.With(candidate).Get("/access-requests/pending", h.HandleListPending)
	r.With(candidate).Post("/access-requests/{id}/decision", h.HandleDecide)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	requesterID, _, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.access.CreateRequest(ctx, requesterID, req.certificateID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create access request",
			"request_id", requestID,
			"certificate_id", req.certificateID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	candidateID, _, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reqID, err := id.ParseAccessRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.access.Decide(ctx, candidateID, reqID, req.decision)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decide access request",
			"request_id", requestID,
			"access_request_id", reqID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.access.ListPendingFor)
}

func (h *Handler) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.access.ListDecisionsFor)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, id.SubjectID) ([]*models.Request, error)) {
	ctx := r.Context()
	subjectID, _, err := httputil.RequireSubject(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	requests, err := fetch(ctx, subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Requests: requests})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID, _, err := httputil.RequireSubject(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.access.RequesterStats(ctx, requesterID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
