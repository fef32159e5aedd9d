package store

import (
	"context"
	"sort"
	"sync"

	"credvault/internal/directory/models"
	id "credvault/pkg/domain"
	"credvault/pkg/platform/sentinel"
)

// Error Contract:
// - FindByID / FindByContact return sentinel.ErrNotFound when absent
// - Save returns sentinel.ErrConflict when the contact is bound to another subject

// InMemoryStore keeps subjects in memory for tests and single-node runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[id.SubjectID]*models.Subject
	byContact map[string]id.SubjectID
	byRole    map[id.Role]map[id.SubjectID]struct{}
}

// New constructs an empty in-memory subject store.
func New() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[id.SubjectID]*models.Subject),
		byContact: make(map[string]id.SubjectID),
		byRole:    make(map[id.Role]map[id.SubjectID]struct{}),
	}
}

func (s *InMemoryStore) Save(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byContact[subject.ContactID]; ok && existing != subject.ID {
		return sentinel.ErrConflict
	}
	if prev, ok := s.byID[subject.ID]; ok && prev.Role != subject.Role {
		delete(s.byRole[prev.Role], subject.ID)
	}
	cp := *subject
	s.byID[subject.ID] = &cp
	s.byContact[subject.ContactID] = subject.ID
	if s.byRole[subject.Role] == nil {
		s.byRole[subject.Role] = make(map[id.SubjectID]struct{})
	}
	s.byRole[subject.Role][subject.ID] = struct{}{}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.byID[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *subject
	return &cp, nil
}

func (s *InMemoryStore) FindByContact(_ context.Context, contactID string) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subjectID, ok := s.byContact[contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[subjectID]
	return &cp, nil
}

// ListByRole returns subjects of role ordered by display name.
func (s *InMemoryStore) ListByRole(_ context.Context, role id.Role) ([]*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Subject, 0, len(s.byRole[role]))
	for subjectID := range s.byRole[role] {
		cp := *s.byID[subjectID]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName == out[j].DisplayName {
			return out[i].ContactID < out[j].ContactID
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}
