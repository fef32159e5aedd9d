package models

import (
	"strings"
	"time"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
)

// Subject is a participant identity. Role is fixed at creation and subjects are never deleted.
type Subject struct {
	ID          id.SubjectID `json:"id"`
	Role        id.Role      `json:"role"`
	DisplayName string       `json:"display_name"`
	ContactID   string       `json:"contact_id"`
	CreatedAt   time.Time    `json:"created_at"`
	// SecretHash is the bcrypt hash of the sign-in secret handed out at enrollment.
	SecretHash string `json:"-"`
}

// NormalizeContact is the canonical form used for the unique contact index.
func NormalizeContact(contactID string) string {
	return strings.ToLower(strings.TrimSpace(contactID))
}

// DefaultDisplayName derives a name from the local part of an email-like contact.
func DefaultDisplayName(contactID string) string {
	local, _, found := strings.Cut(contactID, "@")
	if found && local != "" {
		return local
	}
	return contactID
}

// NewSubject validates inputs and builds a subject with a fresh ID.
func NewSubject(contactID string, role id.Role, displayName string, now time.Time) (*Subject, error) {
	contact := NormalizeContact(contactID)
	if contact == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "contact id is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = DefaultDisplayName(contact)
	}
	return &Subject{
		ID:          id.NewSubjectID(),
		Role:        role,
		DisplayName: name,
		ContactID:   contact,
		CreatedAt:   now,
	}, nil
}

// Matches reports a case-insensitive substring hit on display name or contact.
// An empty query matches everything.
func (s *Subject) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.DisplayName), q) ||
		strings.Contains(s.ContactID, q)
}
