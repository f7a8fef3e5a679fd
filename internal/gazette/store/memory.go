package store

import (
	"context"
	"sync"

	"gazette/internal/gazette/models"
	id "gazette/pkg/domain"
	"gazette/pkg/platform/sentinel"
	"gazette/pkg/requestcontext"
)

// InMemory implements RecordStore with a mutex-guarded map. It backs unit
// tests and local runs without Postgres; records are cloned at the
// boundary so callers never alias store state.
type InMemory struct {
	mu       sync.RWMutex
	records  map[id.RecordID]*models.GazetteRecord
	families map[id.LinkageKey][]id.RecordID
	order    []id.RecordID
}

// NewInMemory creates an empty in-memory record store.
func NewInMemory() *InMemory {
	return &InMemory{
		records:  make(map[id.RecordID]*models.GazetteRecord),
		families: make(map[id.LinkageKey][]id.RecordID),
	}
}

func (s *InMemory) CreateFamily(ctx context.Context, family *models.IdentityFamily) error {
	if err := family.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := family.LinkageKey()
	if _, exists := s.families[key]; exists {
		return sentinel.ErrAlreadyUsed
	}

	members := family.All()
	ids := make([]id.RecordID, 0, len(members))
	for _, r := range members {
		clone := *r
		s.records[r.ID] = &clone
		s.order = append(s.order, r.ID)
		ids = append(ids, r.ID)
	}
	s.families[key] = ids
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, recordID id.RecordID) (*models.GazetteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *InMemory) FindFamily(ctx context.Context, key id.LinkageKey) ([]*models.GazetteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.families[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.GazetteRecord, 0, len(ids))
	for _, rid := range ids {
		clone := *s.records[rid]
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemory) List(ctx context.Context, f Filter) ([]*models.GazetteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.GazetteRecord, 0)
	for _, rid := range s.order {
		r := s.records[rid]
		if matches(r, f) {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *InMemory) UpdateFamilyShared(ctx context.Context, key id.LinkageKey, shared models.SharedAttributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.families[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	now := requestcontext.Now(ctx)
	// Single lock section keeps this all-or-nothing.
	for _, rid := range ids {
		s.records[rid].ApplyShared(shared, now)
	}
	return nil
}

func (s *InMemory) Update(ctx context.Context, record *models.GazetteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}
