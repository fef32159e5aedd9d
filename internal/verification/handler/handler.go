package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credvault/internal/verification/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/httputil"
	"credvault/pkg/platform/middleware/auth"
	"credvault/pkg/requestcontext"
)

type Service interface {
	Verify(ctx context.Context, requesterID id.SubjectID, certID id.CertificateID) (*models.Result, error)
}

type Handler struct {
	verifier Service
	logger   *slog.Logger
}

func New(verifier Service, logger *slog.Logger) *Handler {
	return &Handler{verifier: verifier, logger: logger}
}

// Register registers the verification route. Callers must mount it behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireRole(h.logger, id.RoleOrganization)).Get("/verify/{certificateId}", h.HandleVerify)
}

// HandleVerify answers with the result body for every outcome. The status
// code distinguishes them: 200 granted, 403 no active grant, 404 unknown certificate.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	requesterID, _, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	certID, err := id.ParseCertificateID(chi.URLParam(r, "certificateId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.verifier.Verify(ctx, requesterID, certID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"certificate_id", certID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, statusFor(result.Outcome), result)
}

func statusFor(outcome models.Outcome) int {
	switch outcome {
	case models.OutcomeGranted:
		return http.StatusOK
	case models.OutcomeNoActiveGrant:
		return http.StatusForbidden
	default:
		return http.StatusNotFound
	}
}
