package handler

import (
	"strings"

	"credvault/internal/access/models"
	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/validation"
)

// CreateRequest asks for access to one certificate.
type CreateRequest struct {
	CertificateID string `json:"certificate_id" validate:"required,uuid"`

	certificateID id.CertificateID
}

func (r *CreateRequest) Normalize() {
	if r == nil {
		return
	}
	r.CertificateID = strings.TrimSpace(r.CertificateID)
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	certID, err := id.ParseCertificateID(r.CertificateID)
	if err != nil {
		return err
	}
	r.certificateID = certID
	return nil
}

// DecisionRequest carries the candidate's answer.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required"`

	decision models.Decision
}

func (r *DecisionRequest) Normalize() {
	if r == nil {
		return
	}
	r.Decision = strings.ToLower(strings.TrimSpace(r.Decision))
}

func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	decision, err := models.ParseDecision(r.Decision)
	if err != nil {
		return err
	}
	r.decision = decision
	return nil
}
