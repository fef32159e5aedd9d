package handler

import (
	"strings"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/validation"
	validate "credvault/pkg/validation"
)

// EnrollRequest binds a contact identifier to a role.
type EnrollRequest struct {
	ContactID   string `json:"contact_id" validate:"required,notblank"`
	Role        string `json:"role" validate:"required,oneof=issuer candidate organization"`
	DisplayName string `json:"display_name,omitempty"`
}

func (r *EnrollRequest) Normalize() {
	if r == nil {
		return
	}
	r.ContactID = strings.TrimSpace(r.ContactID)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *EnrollRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	if err := validation.CheckStringLength("contact_id", r.ContactID, validation.MaxContactIDLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("display_name", r.DisplayName, validation.MaxDisplayNameLength); err != nil {
		return err
	}
	if _, err := id.ParseRole(r.Role); err != nil {
		return err
	}
	return nil
}

// TokenRequest signs an enrolled subject in with its secret.
type TokenRequest struct {
	ContactID string `json:"contact_id" validate:"required,notblank"`
	Secret    string `json:"secret" validate:"required"`
}

func (r *TokenRequest) Normalize() {
	if r == nil {
		return
	}
	r.ContactID = strings.TrimSpace(r.ContactID)
}

func (r *TokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("contact_id", r.ContactID, validation.MaxContactIDLength)
}
