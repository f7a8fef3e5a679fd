// Package store persists processing job status records.
package store

import (
	"context"

	"gazette/internal/processing/models"
	id "gazette/pkg/domain"
)

// JobStore persists job status records. Records are small and expire
// after a retention window; the registry is operational state, not an
// archive.
type JobStore interface {
	Save(ctx context.Context, job *models.JobStatus) error
	FindByID(ctx context.Context, jobID id.JobID) (*models.JobStatus, error)
}
