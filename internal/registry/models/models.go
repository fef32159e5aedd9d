package models

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	id "credvault/pkg/domain"
	dErrors "credvault/pkg/domain-errors"
)

// Status is the derived lifecycle state of a certificate. It is never stored.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

// monthDuration is the fixed length used to turn validity months into an expiry.
const monthDuration = 30 * 24 * time.Hour

// Certificate is an issued credential. After issuance only RevokedAt changes.
type Certificate struct {
	ID          id.CertificateID `json:"id"`
	Title       string           `json:"title"`
	IssuerID    id.SubjectID     `json:"issuer_id"`
	CandidateID id.SubjectID     `json:"candidate_id"`
	IssuedAt    time.Time        `json:"issued_at"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	RevokedAt   *time.Time       `json:"revoked_at,omitempty"`
	Attributes  map[string]any   `json:"attributes,omitempty"`
}

// NewCertificate validates issuance inputs and builds an active certificate.
// validityMonths of zero means the certificate never expires.
func NewCertificate(issuerID, candidateID id.SubjectID, title string, validityMonths int, attributes map[string]any, now time.Time) (*Certificate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if validityMonths < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "validity months must not be negative")
	}
	if _, err := json.Marshal(attributes); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "attributes must be JSON encodable")
	}
	cert := &Certificate{
		ID:          id.NewCertificateID(),
		Title:       title,
		IssuerID:    issuerID,
		CandidateID: candidateID,
		IssuedAt:    now,
		Attributes:  cloneAttributes(attributes),
	}
	if validityMonths > 0 {
		expiresAt := now.Add(time.Duration(validityMonths) * monthDuration)
		cert.ExpiresAt = &expiresAt
	}
	return cert, nil
}

// ResolveStatus derives the status at now. Every read path goes through it.
// Revocation wins over expiry.
func (c *Certificate) ResolveStatus(now time.Time) Status {
	if c.RevokedAt != nil {
		return StatusRevoked
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// IsRevoked reports whether the stored revoked marker is set.
func (c *Certificate) IsRevoked() bool {
	return c.RevokedAt != nil
}

// Revoke sets the revoked marker. A second call keeps the first timestamp.
func (c *Certificate) Revoke(now time.Time) {
	if c.RevokedAt != nil {
		return
	}
	c.RevokedAt = &now
}

// Clone returns a deep copy so stores never hand out shared state.
func (c *Certificate) Clone() *Certificate {
	cp := *c
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		cp.ExpiresAt = &t
	}
	if c.RevokedAt != nil {
		t := *c.RevokedAt
		cp.RevokedAt = &t
	}
	cp.Attributes = cloneAttributes(c.Attributes)
	return &cp
}

// cloneAttributes deep-copies the nested maps and slices a decoded JSON
// document can hold. Scalars are immutable and shared.
func cloneAttributes(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAttributes(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}

// CertificateView pairs a certificate with its status at read time.
type CertificateView struct {
	*Certificate
	Status Status `json:"status"`
}

func NewView(c *Certificate, now time.Time) *CertificateView {
	return &CertificateView{Certificate: c, Status: c.ResolveStatus(now)}
}

// Summary is the discovery projection shown to relying parties before any grant.
type Summary struct {
	ID       id.CertificateID `json:"id"`
	Title    string           `json:"title"`
	IssuerID id.SubjectID     `json:"issuer_id"`
	IssuedAt time.Time        `json:"issued_at"`
}

func NewSummary(c *Certificate) *Summary {
	return &Summary{
		ID:       c.ID,
		Title:    c.Title,
		IssuerID: c.IssuerID,
		IssuedAt: c.IssuedAt,
	}
}

// Stats counts an issuer's certificates by derived status.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Revoked int `json:"revoked"`
	Expired int `json:"expired"`
}

// Add tallies one status.
func (s *Stats) Add(status Status) {
	s.Total++
	switch status {
	case StatusActive:
		s.Active++
	case StatusRevoked:
		s.Revoked++
	case StatusExpired:
		s.Expired++
	}
}
