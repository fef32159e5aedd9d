package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		response := map[string]any{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		if dErrors.Retryable(err) {
			w.Header().Set("Retry-After", "1")
			response["retryable"] = true
		}
		WriteJSON(w, status, response)
		return
	}

	// Fallback for unexpected errors
	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeInvalidSubject:
		return http.StatusUnprocessableEntity
	case dErrors.CodeRoleMismatch, dErrors.CodeAlreadyEnrolled, dErrors.CodeDuplicatePending, dErrors.CodeAlreadyDecided:
		return http.StatusConflict
	case dErrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RequireSubject extracts the authenticated subject from context.
// Returns a domain error suitable for HTTP response on failure.
func RequireSubject(ctx context.Context, logger *slog.Logger, requestID string) (id.SubjectID, id.Role, error) {
	subjectID := requestcontext.SubjectID(ctx)
	role := requestcontext.Role(ctx)
	if subjectID.IsNil() || !role.IsValid() {
		if logger != nil {
			logger.ErrorContext(ctx, "subject missing from context despite auth middleware",
				"request_id", requestID)
		}
		return id.SubjectID{}, "", dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return subjectID, role, nil
}
