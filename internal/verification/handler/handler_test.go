package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	regmodels "credvault/internal/registry/models"
	"credvault/internal/verification/handler/mocks"
	"credvault/internal/verification/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	org     id.SubjectID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.DiscardHandler)).Register(s.router)
	s.org = id.NewSubjectID()
}

func (s *HandlerSuite) get(path string, role id.Role) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(requestcontext.WithSubject(req.Context(), s.org, role))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestVerify() {
	now := time.Now()
	cert, err := regmodels.NewCertificate(id.NewSubjectID(), id.NewSubjectID(), "Cloud Cert", 12, nil, now)
	s.Require().NoError(err)

	s.Run("granted", func() {
		s.service.EXPECT().Verify(gomock.Any(), s.org, cert.ID).Return(models.Granted(cert, now), nil)

		rec := s.get("/verify/"+cert.ID.String(), id.RoleOrganization)
		s.Equal(http.StatusOK, rec.Code)

		var got models.Result
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal(models.OutcomeGranted, got.Outcome)
		s.Equal(regmodels.StatusActive, got.Status)
		s.Require().NotNil(got.Certificate)
		s.Equal("Cloud Cert", got.Certificate.Title)
	})

	s.Run("no active grant hides content", func() {
		s.service.EXPECT().Verify(gomock.Any(), s.org, cert.ID).Return(models.NoActiveGrant(cert.ID, now), nil)

		rec := s.get("/verify/"+cert.ID.String(), id.RoleOrganization)
		s.Equal(http.StatusForbidden, rec.Code)
		s.NotContains(rec.Body.String(), "Cloud Cert")
	})

	s.Run("unknown certificate", func() {
		missing := id.NewCertificateID()
		s.service.EXPECT().Verify(gomock.Any(), s.org, missing).Return(models.CertificateNotFound(missing, now), nil)

		rec := s.get("/verify/"+missing.String(), id.RoleOrganization)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("store unavailable", func() {
		s.service.EXPECT().Verify(gomock.Any(), s.org, cert.ID).
			Return(nil, dErrors.Wrap(errors.New("dial tcp"), dErrors.CodeStoreUnavailable, "failed to check access grant"))

		rec := s.get("/verify/"+cert.ID.String(), id.RoleOrganization)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("malformed id", func() {
		rec := s.get("/verify/not-a-uuid", id.RoleOrganization)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("candidates are refused", func() {
		rec := s.get("/verify/"+cert.ID.String(), id.RoleCandidate)
		s.Equal(http.StatusForbidden, rec.Code)
	})
}
