package person

import (
	"context"
	"sync"

	id "gazette/pkg/domain"
	"gazette/pkg/platform/sentinel"
)

// InMemory implements Store for tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	persons map[id.PersonID]Person
}

func NewInMemory() *InMemory {
	return &InMemory{persons: make(map[id.PersonID]Person)}
}

// Seed inserts a person record. Test helper; the real registry owns writes.
func (s *InMemory) Seed(p Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons[p.ID] = p
}

func (s *InMemory) FindByID(ctx context.Context, personID id.PersonID) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) NamesByIDs(ctx context.Context, ids []id.PersonID) (map[id.PersonID]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.PersonID]string, len(ids))
	for _, pid := range ids {
		if p, ok := s.persons[pid]; ok {
			out[pid] = p.FullName
		}
	}
	return out, nil
}
