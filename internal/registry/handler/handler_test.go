package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	dirmodels "credvault/internal/directory/models"
	"credvault/internal/registry/handler/mocks"
	"credvault/internal/registry/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/validation"
	"credvault/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	service  *mocks.MockService
	contacts *mocks.MockContactResolver
	router   chi.Router
	subject  id.SubjectID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.contacts = mocks.NewMockContactResolver(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, s.contacts, slog.New(slog.DiscardHandler)).Register(s.router)
	s.subject = id.NewSubjectID()
}

func (s *HandlerSuite) do(method, path string, body any, role id.Role) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(requestcontext.WithSubject(req.Context(), s.subject, role))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestIssue() {
	candidateID := id.NewSubjectID()
	cert := &models.Certificate{ID: id.NewCertificateID(), Title: "Go", IssuerID: s.subject, CandidateID: candidateID, IssuedAt: time.Now()}

	s.Run("issues by candidate id", func() {
		s.service.EXPECT().Issue(gomock.Any(), s.subject, candidateID, "Go", 6, gomock.Any()).Return(cert, nil)

		rec := s.do(http.MethodPost, "/certificates", map[string]any{
			"candidate_id":    candidateID.String(),
			"title":           " Go ",
			"validity_months": 6,
		}, id.RoleIssuer)
		s.Equal(http.StatusCreated, rec.Code)

		var view models.CertificateView
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &view))
		s.Equal(models.StatusActive, view.Status)
	})

	s.Run("resolves candidate by contact", func() {
		s.contacts.EXPECT().ResolveByContact(gomock.Any(), "ada@example.com").
			Return(&dirmodels.Subject{ID: candidateID, Role: id.RoleCandidate}, nil)
		s.service.EXPECT().Issue(gomock.Any(), s.subject, candidateID, "Go", 0, gomock.Any()).Return(cert, nil)

		rec := s.do(http.MethodPost, "/certificates", map[string]any{
			"candidate_contact": "ada@example.com",
			"title":             "Go",
		}, id.RoleIssuer)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("unknown contact is an invalid subject", func() {
		s.contacts.EXPECT().ResolveByContact(gomock.Any(), "ghost@example.com").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "subject not found"))

		rec := s.do(http.MethodPost, "/certificates", map[string]any{
			"candidate_contact": "ghost@example.com",
			"title":             "Go",
		}, id.RoleIssuer)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("missing recipient is rejected", func() {
		rec := s.do(http.MethodPost, "/certificates", map[string]any{"title": "Go"}, id.RoleIssuer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("non-issuer is forbidden", func() {
		rec := s.do(http.MethodPost, "/certificates", map[string]any{"candidate_id": candidateID.String(), "title": "Go"}, id.RoleCandidate)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("overlong title is rejected", func() {
		rec := s.do(http.MethodPost, "/certificates", map[string]any{
			"candidate_id": candidateID.String(),
			"title":        strings.Repeat("t", validation.MaxTitleLength+1),
		}, id.RoleIssuer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("negative validity is rejected", func() {
		rec := s.do(http.MethodPost, "/certificates", map[string]any{
			"candidate_id":    candidateID.String(),
			"title":           "Go",
			"validity_months": -1,
		}, id.RoleIssuer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("too many attributes are rejected", func() {
		attrs := make(map[string]any, validation.MaxAttributes+1)
		for i := range validation.MaxAttributes + 1 {
			attrs[fmt.Sprintf("k%d", i)] = i
		}
		rec := s.do(http.MethodPost, "/certificates", map[string]any{
			"candidate_id": candidateID.String(),
			"title":        "Go",
			"attributes":   attrs,
		}, id.RoleIssuer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRevoke() {
	certID := id.NewCertificateID()

	s.Run("revokes", func() {
		s.service.EXPECT().Revoke(gomock.Any(), s.subject, certID).Return(nil)
		rec := s.do(http.MethodPost, "/certificates/"+certID.String()+"/revoke", nil, id.RoleIssuer)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("malformed id", func() {
		rec := s.do(http.MethodPost, "/certificates/not-a-uuid/revoke", nil, id.RoleIssuer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("other issuer maps to 403", func() {
		s.service.EXPECT().Revoke(gomock.Any(), s.subject, certID).
			Return(dErrors.New(dErrors.CodeForbidden, "certificate belongs to another issuer"))
		rec := s.do(http.MethodPost, "/certificates/"+certID.String()+"/revoke", nil, id.RoleIssuer)
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *HandlerSuite) TestListAndStats() {
	s.Run("candidate lists own certificates", func() {
		s.service.EXPECT().ListFor(gomock.Any(), s.subject, id.RoleCandidate).Return([]*models.CertificateView{}, nil)
		rec := s.do(http.MethodGet, "/certificates", nil, id.RoleCandidate)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("organization cannot list", func() {
		rec := s.do(http.MethodGet, "/certificates", nil, id.RoleOrganization)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("issuer stats", func() {
		s.service.EXPECT().IssuerStats(gomock.Any(), s.subject).Return(&models.Stats{Total: 2, Active: 2}, nil)
		rec := s.do(http.MethodGet, "/certificates/stats", nil, id.RoleIssuer)
		s.Equal(http.StatusOK, rec.Code)

		var stats models.Stats
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
		s.Equal(2, stats.Active)
	})

	s.Run("organization lists candidate summaries", func() {
		candidateID := id.NewSubjectID()
		s.service.EXPECT().ListSummariesForCandidate(gomock.Any(), candidateID).Return([]*models.Summary{{Title: "Go"}}, nil)
		rec := s.do(http.MethodGet, "/candidates/"+candidateID.String()+"/certificates", nil, id.RoleOrganization)
		s.Equal(http.StatusOK, rec.Code)

		var resp SummaryListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp.Certificates, 1)
	})
}
