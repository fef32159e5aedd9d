package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "credvault/pkg/domain-errors"
)

type titleRequest struct {
	Title string `json:"title"`
}

func (r *titleRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

func (r *titleRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

func (r *decisionRequest) Validate() error {
	if r.Decision != "approved" && r.Decision != "denied" {
		return dErrors.New(dErrors.CodeBadRequest, "decision must be approved or denied")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"Cloud Cert"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[titleRequest](w, req, discardLogger(), ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "Cloud Cert", result.Title)
	})

	t.Run("malformed body is bad_request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[titleRequest](w, req, discardLogger(), ctx, "req-1")
		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"  Cloud Cert  "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[titleRequest](w, req, discardLogger(), ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "Cloud Cert", result.Title)
	})

	t.Run("plain validation error becomes invalid_input", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[titleRequest](w, req, discardLogger(), ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "invalid_input", body["error"])
		assert.Contains(t, body["error_description"], "title is required")
	})

	t.Run("domain validation error keeps its code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"decision":"maybe"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[decisionRequest](w, req, discardLogger(), ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeNotFound:         http.StatusNotFound,
		dErrors.CodeForbidden:        http.StatusForbidden,
		dErrors.CodeInvalidSubject:   http.StatusUnprocessableEntity,
		dErrors.CodeRoleMismatch:     http.StatusConflict,
		dErrors.CodeAlreadyEnrolled:  http.StatusConflict,
		dErrors.CodeDuplicatePending: http.StatusConflict,
		dErrors.CodeAlreadyDecided:   http.StatusConflict,
		dErrors.CodeStoreUnavailable: http.StatusServiceUnavailable,
		dErrors.CodeUnauthorized:     http.StatusUnauthorized,
		dErrors.CodeTimeout:          http.StatusGatewayTimeout,
	}
	for code, status := range cases {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(code, "x"))
		assert.Equal(t, status, w.Code, string(code))
		assert.Equal(t, string(code), decodeError(t, w)["error"])
	}

	t.Run("store unavailable advertises retry", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeStoreUnavailable, "down"))
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Equal(t, true, decodeError(t, w)["retryable"])
	})

	t.Run("non-domain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
