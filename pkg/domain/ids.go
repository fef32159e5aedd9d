// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "credvault/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a SubjectID where a CertificateID is expected.
type (
	SubjectID       uuid.UUID
	CertificateID   uuid.UUID
	AccessRequestID uuid.UUID
)

// New* functions mint fresh random identifiers.

func NewSubjectID() SubjectID             { return SubjectID(uuid.New()) }
func NewCertificateID() CertificateID     { return CertificateID(uuid.New()) }
func NewAccessRequestID() AccessRequestID { return AccessRequestID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseSubjectID(s string) (SubjectID, error) {
	id, err := parseUUID(s, "subject ID")
	return SubjectID(id), err
}

func ParseCertificateID(s string) (CertificateID, error) {
	id, err := parseUUID(s, "certificate ID")
	return CertificateID(id), err
}

func ParseAccessRequestID(s string) (AccessRequestID, error) {
	id, err := parseUUID(s, "access request ID")
	return AccessRequestID(id), err
}

// String methods - for logging and debugging.

func (id SubjectID) String() string       { return uuid.UUID(id).String() }
func (id CertificateID) String() string   { return uuid.UUID(id).String() }
func (id AccessRequestID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id SubjectID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AccessRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs appear as plain UUID strings in JSON payloads.

func (id SubjectID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id CertificateID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id AccessRequestID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SubjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseSubjectID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CertificateID) UnmarshalText(b []byte) error {
	parsed, err := ParseCertificateID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *AccessRequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseAccessRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; services reject them with IsNil so store lookups
// can still report "not found" consistently.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
