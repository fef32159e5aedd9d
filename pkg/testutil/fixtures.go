package testutil

import (
	"time"

	"github.com/google/uuid"

	accessmodels "credvault/internal/access/models"
	dirmodels "credvault/internal/directory/models"
	regmodels "credvault/internal/registry/models"
	id "credvault/pkg/domain"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	IssuerID       id.SubjectID
	CandidateID1   id.SubjectID
	CandidateID2   id.SubjectID
	OrganizationID id.SubjectID
	CertificateID1 id.CertificateID
	CertificateID2 id.CertificateID
}{
	IssuerID:       id.SubjectID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	CandidateID1:   id.SubjectID(uuid.MustParse("22222222-2222-2222-2222-222222222221")),
	CandidateID2:   id.SubjectID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	OrganizationID: id.SubjectID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
	CertificateID1: id.CertificateID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	CertificateID2: id.CertificateID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
}

// SubjectBuilder provides a fluent interface for building test subjects.
type SubjectBuilder struct {
	subject *dirmodels.Subject
}

// NewSubjectBuilder creates a candidate subject with a unique contact.
func NewSubjectBuilder() *SubjectBuilder {
	subjectID := id.NewSubjectID()
	return &SubjectBuilder{
		subject: &dirmodels.Subject{
			ID:          subjectID,
			Role:        id.RoleCandidate,
			DisplayName: "Test Candidate",
			ContactID:   subjectID.String() + "@example.com",
			CreatedAt:   time.Now(),
		},
	}
}

func (b *SubjectBuilder) WithID(subjectID id.SubjectID) *SubjectBuilder {
	b.subject.ID = subjectID
	return b
}

func (b *SubjectBuilder) WithRole(role id.Role) *SubjectBuilder {
	b.subject.Role = role
	return b
}

func (b *SubjectBuilder) WithContact(contactID string) *SubjectBuilder {
	b.subject.ContactID = dirmodels.NormalizeContact(contactID)
	return b
}

func (b *SubjectBuilder) WithDisplayName(name string) *SubjectBuilder {
	b.subject.DisplayName = name
	return b
}

func (b *SubjectBuilder) Build() *dirmodels.Subject {
	return b.subject
}

// CertificateBuilder provides a fluent interface for building test certificates.
type CertificateBuilder struct {
	cert *regmodels.Certificate
}

// NewCertificateBuilder creates an active, never-expiring certificate.
func NewCertificateBuilder() *CertificateBuilder {
	return &CertificateBuilder{
		cert: &regmodels.Certificate{
			ID:          id.NewCertificateID(),
			Title:       "Test Certificate",
			IssuerID:    TestIDs.IssuerID,
			CandidateID: TestIDs.CandidateID1,
			IssuedAt:    time.Now(),
		},
	}
}

func (b *CertificateBuilder) WithID(certID id.CertificateID) *CertificateBuilder {
	b.cert.ID = certID
	return b
}

func (b *CertificateBuilder) WithIssuer(issuerID id.SubjectID) *CertificateBuilder {
	b.cert.IssuerID = issuerID
	return b
}

func (b *CertificateBuilder) WithCandidate(candidateID id.SubjectID) *CertificateBuilder {
	b.cert.CandidateID = candidateID
	return b
}

func (b *CertificateBuilder) WithTitle(title string) *CertificateBuilder {
	b.cert.Title = title
	return b
}

func (b *CertificateBuilder) IssuedAt(t time.Time) *CertificateBuilder {
	b.cert.IssuedAt = t
	return b
}

func (b *CertificateBuilder) ExpiresAt(t time.Time) *CertificateBuilder {
	b.cert.ExpiresAt = &t
	return b
}

func (b *CertificateBuilder) Revoked(at time.Time) *CertificateBuilder {
	b.cert.RevokedAt = &at
	return b
}

func (b *CertificateBuilder) WithAttribute(key string, value any) *CertificateBuilder {
	if b.cert.Attributes == nil {
		b.cert.Attributes = make(map[string]any)
	}
	b.cert.Attributes[key] = value
	return b
}

func (b *CertificateBuilder) Build() *regmodels.Certificate {
	return b.cert
}

// RequestBuilder provides a fluent interface for building test access requests.
type RequestBuilder struct {
	req *accessmodels.Request
}

// NewRequestBuilder creates a pending request from TestIDs.OrganizationID.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		req: accessmodels.NewRequest(TestIDs.CertificateID1, TestIDs.OrganizationID, time.Now()),
	}
}

func (b *RequestBuilder) ForCertificate(certID id.CertificateID) *RequestBuilder {
	b.req.CertificateID = certID
	return b
}

func (b *RequestBuilder) FromRequester(requesterID id.SubjectID) *RequestBuilder {
	b.req.RequesterID = requesterID
	return b
}

func (b *RequestBuilder) RequestedAt(t time.Time) *RequestBuilder {
	b.req.RequestedAt = t
	return b
}

// Decided moves the request to the decision's status at t.
func (b *RequestBuilder) Decided(decision accessmodels.Decision, t time.Time) *RequestBuilder {
	b.req.Status = decision.Status()
	b.req.DecidedAt = &t
	return b
}

func (b *RequestBuilder) Build() *accessmodels.Request {
	return b.req
}
