package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"credvault/internal/directory/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/httputil"
	"credvault/pkg/platform/middleware/auth"
	"credvault/pkg/platform/privacy"
	"credvault/pkg/platform/validation"
	"credvault/pkg/requestcontext"
)

// Service defines the directory operations exposed over HTTP.
type Service interface {
	Enroll(ctx context.Context, contactID string, role id.Role, displayName string) (*models.Subject, string, error)
	Authenticate(ctx context.Context, contactID, secret string) (*models.Subject, error)
	ResolveByContact(ctx context.Context, contactID string) (*models.Subject, error)
	ListByRole(ctx context.Context, role id.Role) ([]*models.Subject, error)
	SearchCandidates(ctx context.Context, query string) ([]*models.Subject, error)
}

// TokenIssuer mints bearer tokens for enrolled subjects.
type TokenIssuer interface {
	GenerateToken(ctx context.Context, subjectID id.SubjectID, role id.Role) (string, error)
	TTL() time.Duration
}

// Handler serves subject enrollment and lookup endpoints.
type Handler struct {
	directory Service
	tokens    TokenIssuer
	logger    *slog.Logger
}

func New(directory Service, tokens TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{
		directory: directory,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterPublic registers routes reachable without a bearer token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/enroll", h.HandleEnroll)
	r.Post("/auth/token", h.HandleToken)
}

// Register registers authenticated directory routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/subjects", h.HandleListByRole)
	r.Get("/subjects/lookup", h.HandleLookup)
	r.With(auth.RequireRole(h.logger, id.RoleOrganization)).
		Get("/candidates/search", h.HandleSearchCandidates)
}

// HandleEnroll creates the subject bound to a contact and returns its sign-in
// secret with a first token. A contact that is already enrolled yields
// CodeAlreadyEnrolled; its owner signs in through /auth/token instead.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnrollRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	role, _ := id.ParseRole(req.Role)

	subject, secret, err := h.directory.Enroll(ctx, req.ContactID, role, req.DisplayName)
	if err == nil && secret == "" {
		err = dErrors.New(dErrors.CodeAlreadyEnrolled, "contact is already enrolled")
	}
	if err != nil {
		h.logger.WarnContext(ctx, "enrollment failed",
			"request_id", requestID,
			"contact", privacy.MaskContact(req.ContactID),
			"role", role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.issueToken(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp.Secret = secret
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// HandleToken exchanges a contact and its sign-in secret for a bearer token.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	subject, err := h.directory.Authenticate(ctx, req.ContactID, req.Secret)
	if err != nil {
		h.logger.WarnContext(ctx, "sign-in failed",
			"request_id", requestID,
			"contact", privacy.MaskContact(req.ContactID),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	resp, err := h.issueToken(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) issueToken(ctx context.Context, subject *models.Subject) (*EnrollResponse, error) {
	token, err := h.tokens.GenerateToken(ctx, subject.ID, subject.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subject.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &EnrollResponse{
		Subject:     toSubjectResponse(subject),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	}, nil
}

func (h *Handler) HandleListByRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	role, err := id.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	subjects, err := h.directory.ListByRole(ctx, role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list subjects",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(subjects))
}

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, err := h.directory.ResolveByContact(ctx, r.URL.Query().Get("contact"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubjectResponse(subject))
}

func (h *Handler) HandleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	query := r.URL.Query().Get("q")
	if err := validation.CheckStringLength("q", query, validation.MaxSearchQueryLength); err != nil {
		httputil.WriteError(w, err)
		return
	}
	candidates, err := h.directory.SearchCandidates(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "candidate search failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(candidates))
}
