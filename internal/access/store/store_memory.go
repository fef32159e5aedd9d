package store

import (
	"context"
	"fmt"
	"sync"

	"credvault/internal/access/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/sentinel"
)

type pairKey struct {
	certificate id.CertificateID
	requester   id.SubjectID
}

// InMemoryStore keeps access requests in memory with by-certificate,
// by-requester, and by-status indexes.
type InMemoryStore struct {
	mu            sync.RWMutex
	byID          map[id.AccessRequestID]*models.Request
	byCertificate map[id.CertificateID][]id.AccessRequestID
	byRequester   map[id.SubjectID][]id.AccessRequestID
	byStatus      map[models.Status]map[id.AccessRequestID]struct{}
	pending       map[pairKey]id.AccessRequestID
}

func New() *InMemoryStore {
	return &InMemoryStore{
		byID:          make(map[id.AccessRequestID]*models.Request),
		byCertificate: make(map[id.CertificateID][]id.AccessRequestID),
		byRequester:   make(map[id.SubjectID][]id.AccessRequestID),
		byStatus:      make(map[models.Status]map[id.AccessRequestID]struct{}),
		pending:       make(map[pairKey]id.AccessRequestID),
	}
}

func (s *InMemoryStore) Save(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[req.ID]; ok {
		return sentinel.ErrConflict
	}
	key := pairKey{req.CertificateID, req.RequesterID}
	if req.IsPending() {
		if _, ok := s.pending[key]; ok {
			return sentinel.ErrConflict
		}
		s.pending[key] = req.ID
	}
	s.byID[req.ID] = req.Clone()
	s.byCertificate[req.CertificateID] = append(s.byCertificate[req.CertificateID], req.ID)
	s.byRequester[req.RequesterID] = append(s.byRequester[req.RequesterID], req.ID)
	s.indexStatus(req.ID, req.Status)
	return nil
}

func (s *InMemoryStore) indexStatus(reqID id.AccessRequestID, status models.Status) {
	set, ok := s.byStatus[status]
	if !ok {
		set = make(map[id.AccessRequestID]struct{})
		s.byStatus[status] = set
	}
	set[reqID] = struct{}{}
}

func (s *InMemoryStore) FindByID(_ context.Context, reqID id.AccessRequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.byID[reqID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return req.Clone(), nil
}

func (s *InMemoryStore) FindPending(_ context.Context, certID id.CertificateID, requesterID id.SubjectID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reqID, ok := s.pending[pairKey{certID, requesterID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[reqID].Clone(), nil
}

// HasApproved reports whether any approved request exists for the pair.
func (s *InMemoryStore) HasApproved(_ context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reqID := range s.byCertificate[certID] {
		req := s.byID[reqID]
		if req.RequesterID == requesterID && req.Status == models.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListByCertificate(_ context.Context, certID id.CertificateID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byCertificate[certID]), nil
}

func (s *InMemoryStore) ListByRequester(_ context.Context, requesterID id.SubjectID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byRequester[requesterID]), nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status models.Status) ([]*models.Request, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("list access requests: unknown status %q", status)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]id.AccessRequestID, 0, len(s.byStatus[status]))
	for reqID := range s.byStatus[status] {
		ids = append(ids, reqID)
	}
	return s.collect(ids), nil
}

func (s *InMemoryStore) collect(ids []id.AccessRequestID) []*models.Request {
	out := make([]*models.Request, 0, len(ids))
	for _, reqID := range ids {
		out = append(out, s.byID[reqID].Clone())
	}
	sortNewestFirst(out)
	return out
}

// Execute validates and mutates a request under the store's write lock,
// keeping the pending and status indexes in step.
func (s *InMemoryStore) Execute(_ context.Context, reqID id.AccessRequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[reqID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)

	if working.Status != current.Status {
		delete(s.byStatus[current.Status], reqID)
		s.indexStatus(reqID, working.Status)
		if current.IsPending() {
			delete(s.pending, pairKey{current.CertificateID, current.RequesterID})
		}
	}
	s.byID[reqID] = working
	return working.Clone(), nil
}
