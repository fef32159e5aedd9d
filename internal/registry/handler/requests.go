package handler

import (
	"strings"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
	"credvault/pkg/platform/validation"
	validate "credvault/pkg/validation"
)

// IssueRequest names the recipient either by id or by contact identifier.
type IssueRequest struct {
	CandidateID      string         `json:"candidate_id,omitempty" validate:"required_without=CandidateContact"`
	CandidateContact string         `json:"candidate_contact,omitempty"`
	Title            string         `json:"title" validate:"required,notblank"`
	ValidityMonths   int            `json:"validity_months" validate:"min=0"`
	Attributes       map[string]any `json:"attributes,omitempty"`

	candidate id.SubjectID
}

func (r *IssueRequest) Normalize() {
	if r == nil {
		return
	}
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	r.CandidateContact = strings.TrimSpace(r.CandidateContact)
	r.Title = strings.TrimSpace(r.Title)
}

func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validate.Validate(r); err != nil {
		return err
	}
	if err := validation.CheckStringLength("title", r.Title, validation.MaxTitleLength); err != nil {
		return err
	}
	if err := validation.CheckCount("attributes", len(r.Attributes), validation.MaxAttributes); err != nil {
		return err
	}
	if err := validation.CheckKeyLengths("attributes", r.Attributes, validation.MaxAttributeKeyLength); err != nil {
		return err
	}
	if r.CandidateID != "" {
		candidate, err := id.ParseSubjectID(r.CandidateID)
		if err != nil {
			return err
		}
		r.candidate = candidate
	}
	return nil
}
