package handler

import (
	"time"

	"credvault/internal/directory/models"
	id "credvault/pkg/domain"
)

// SubjectResponse is the HTTP view of a subject.
type SubjectResponse struct {
	ID          id.SubjectID `json:"id"`
	Role        id.Role      `json:"role"`
	DisplayName string       `json:"display_name"`
	ContactID   string       `json:"contact_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// EnrollResponse carries the subject and a bearer token scoped to it. Secret
// is only set on the enrollment that created the subject.
type EnrollResponse struct {
	Subject     *SubjectResponse `json:"subject"`
	Secret      string           `json:"secret,omitempty"`
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
}

type ListResponse struct {
	Subjects []*SubjectResponse `json:"subjects"`
}

func toSubjectResponse(s *models.Subject) *SubjectResponse {
	return &SubjectResponse{
		ID:          s.ID,
		Role:        s.Role,
		DisplayName: s.DisplayName,
		ContactID:   s.ContactID,
		CreatedAt:   s.CreatedAt,
	}
}

func toListResponse(subjects []*models.Subject) *ListResponse {
	out := make([]*SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, toSubjectResponse(s))
	}
	return &ListResponse{Subjects: out}
}
