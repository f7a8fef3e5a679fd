package store

import (
	"context"
	"sync"

	"gazette/internal/processing/models"
	id "gazette/pkg/domain"
	"gazette/pkg/platform/sentinel"
)

// InMemory implements JobStore for tests and single-node runs. Entries
// never expire; retention only matters for the redis-backed store.
type InMemory struct {
	mu   sync.RWMutex
	jobs map[id.JobID]models.JobStatus
}

func NewInMemory() *InMemory {
	return &InMemory{jobs: make(map[id.JobID]models.JobStatus)}
}

func (s *InMemory) Save(ctx context.Context, job *models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, jobID id.JobID) (*models.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &job, nil
}
