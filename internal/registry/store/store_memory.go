package store

import (
	"context"
	"sync"

	"credvault/internal/registry/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/sentinel"
)

// InMemoryStore keeps certificates in memory with by-issuer and by-candidate indexes.
type InMemoryStore struct {
	mu          sync.RWMutex
	byID        map[id.CertificateID]*models.Certificate
	byIssuer    map[id.SubjectID][]id.CertificateID
	byCandidate map[id.SubjectID][]id.CertificateID
}

func New() *InMemoryStore {
	return &InMemoryStore{
		byID:        make(map[id.CertificateID]*models.Certificate),
		byIssuer:    make(map[id.SubjectID][]id.CertificateID),
		byCandidate: make(map[id.SubjectID][]id.CertificateID),
	}
}

func (s *InMemoryStore) Save(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[cert.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[cert.ID] = cert.Clone()
	s.byIssuer[cert.IssuerID] = append(s.byIssuer[cert.IssuerID], cert.ID)
	s.byCandidate[cert.CandidateID] = append(s.byCandidate[cert.CandidateID], cert.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.byID[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cert.Clone(), nil
}

// FindForShare is FindByID; in memory the caller's transaction lock provides the guard.
func (s *InMemoryStore) FindForShare(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	return s.FindByID(ctx, certID)
}

func (s *InMemoryStore) ListByIssuer(_ context.Context, issuerID id.SubjectID) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byIssuer[issuerID]), nil
}

func (s *InMemoryStore) ListByCandidate(_ context.Context, candidateID id.SubjectID) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byCandidate[candidateID]), nil
}

func (s *InMemoryStore) collect(ids []id.CertificateID) []*models.Certificate {
	out := make([]*models.Certificate, 0, len(ids))
	for _, certID := range ids {
		out = append(out, s.byID[certID].Clone())
	}
	sortNewestFirst(out)
	return out
}

// Execute validates and mutates a certificate under the store's write lock.
func (s *InMemoryStore) Execute(_ context.Context, certID id.CertificateID, validate func(*models.Certificate) error, mutate func(*models.Certificate)) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.byID[certID] = working
	return working.Clone(), nil
}
