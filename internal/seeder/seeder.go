package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	accessmodels "credvault/internal/access/models"
	dirmodels "credvault/internal/directory/models"
	regmodels "credvault/internal/registry/models"
	id "credvault/pkg/domain"
	"credvault/pkg/requestcontext"
)

// Directory enrolls demo subjects.
type Directory interface {
	CreateIfAbsent(ctx context.Context, contactID string, role id.Role, displayName string) (*dirmodels.Subject, error)
}

// Registry issues and revokes demo certificates.
type Registry interface {
	Issue(ctx context.Context, issuerID, candidateID id.SubjectID, title string, validityMonths int, attributes map[string]any) (*regmodels.Certificate, error)
	Revoke(ctx context.Context, issuerID id.SubjectID, certID id.CertificateID) error
}

// Access opens and decides demo access requests.
type Access interface {
	CreateRequest(ctx context.Context, requesterID id.SubjectID, certID id.CertificateID) (*accessmodels.Request, error)
	Decide(ctx context.Context, candidateID id.SubjectID, reqID id.AccessRequestID, decision accessmodels.Decision) (*accessmodels.Request, error)
}

// Seeder populates the record stores with demo data through the domain
// services, so every seeded record satisfies the same rules as live traffic.
type Seeder struct {
	directory Directory
	registry  Registry
	access    Access
	logger    *slog.Logger
}

func New(directory Directory, registry Registry, access Access, logger *slog.Logger) *Seeder {
	return &Seeder{
		directory: directory,
		registry:  registry,
		access:    access,
		logger:    logger,
	}
}

// Summary counts what SeedAll created.
type Summary struct {
	Subjects     int
	Certificates int
	Requests     int
}

type demoSubject struct {
	contact string
	role    id.Role
	name    string
}

var demoSubjects = []demoSubject{
	{"registrar@northfield.example", id.RoleIssuer, "Northfield University"},
	{"alice@example.com", id.RoleCandidate, "Alice Anderson"},
	{"bob@example.com", id.RoleCandidate, "Bob Brown"},
	{"talent@acme.example", id.RoleOrganization, "Acme Corp"},
	{"hr@globex.example", id.RoleOrganization, "Globex"},
}

// SeedAll enrolls demo subjects, issues certificates with mixed lifecycles, and
// opens requests in every state. Running it twice reuses the subjects but
// issues new certificates.
func (s *Seeder) SeedAll(ctx context.Context) (*Summary, error) {
	s.logger.Info("seeding demo data")
	now := requestcontext.Now(ctx)
	summary := &Summary{}

	subjects := make(map[string]*dirmodels.Subject, len(demoSubjects))
	for _, d := range demoSubjects {
		subj, err := s.directory.CreateIfAbsent(ctx, d.contact, d.role, d.name)
		if err != nil {
			return nil, fmt.Errorf("seed subject %s: %w", d.contact, err)
		}
		subjects[d.contact] = subj
		summary.Subjects++
	}
	issuer := subjects["registrar@northfield.example"]
	alice := subjects["alice@example.com"]
	bob := subjects["bob@example.com"]
	acme := subjects["talent@acme.example"]
	globex := subjects["hr@globex.example"]

	issue := func(candidate *dirmodels.Subject, title string, months int, at time.Time) (*regmodels.Certificate, error) {
		cert, err := s.registry.Issue(requestcontext.WithTime(ctx, at), issuer.ID, candidate.ID, title, months,
			map[string]any{"grade": "A", "programme": title})
		if err != nil {
			return nil, fmt.Errorf("seed certificate %q: %w", title, err)
		}
		summary.Certificates++
		return cert, nil
	}

	cloud, err := issue(alice, "Cloud Architecture", 12, now.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}
	if _, err := issue(alice, "Data Engineering", 0, now.AddDate(-1, 0, 0)); err != nil {
		return nil, err
	}
	if _, err := issue(bob, "Network Security", 1, now.AddDate(0, -3, 0)); err != nil {
		return nil, err
	}
	retired, err := issue(bob, "Legacy Systems", 24, now.AddDate(0, -6, 0))
	if err != nil {
		return nil, err
	}
	if err := s.registry.Revoke(ctx, issuer.ID, retired.ID); err != nil {
		return nil, fmt.Errorf("seed revocation: %w", err)
	}

	request := func(org *dirmodels.Subject, cert *regmodels.Certificate) (*accessmodels.Request, error) {
		req, err := s.access.CreateRequest(ctx, org.ID, cert.ID)
		if err != nil {
			return nil, fmt.Errorf("seed access request: %w", err)
		}
		summary.Requests++
		return req, nil
	}

	approved, err := request(acme, cloud)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Decide(ctx, alice.ID, approved.ID, accessmodels.DecisionApproved); err != nil {
		return nil, fmt.Errorf("seed approval: %w", err)
	}
	denied, err := request(globex, retired)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Decide(ctx, bob.ID, denied.ID, accessmodels.DecisionDenied); err != nil {
		return nil, fmt.Errorf("seed denial: %w", err)
	}
	if _, err := request(globex, cloud); err != nil {
		return nil, err
	}

	s.logger.Info("demo data seeded",
		"subjects", summary.Subjects,
		"certificates", summary.Certificates,
		"access_requests", summary.Requests,
	)
	return summary, nil
}
