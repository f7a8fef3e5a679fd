// Package service exposes the processing job registry. The extraction
// pipeline writes through it; the HTTP surface only reads.
package service

import (
	"context"
	"errors"
	"log/slog"

	"gazette/internal/processing/models"
	"gazette/internal/processing/store"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/platform/sentinel"
	"gazette/pkg/requestcontext"
)

// Service coordinates job status reads and writes over a JobStore.
type Service struct {
	jobs   store.JobStore
	logger *slog.Logger
}

func New(jobs store.JobStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// Register creates a queued job record for a source document.
func (s *Service) Register(ctx context.Context, sourceDocument string) (*models.JobStatus, error) {
	job, err := models.NewJob(sourceDocument, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "job store failure")
	}

	s.logger.Info("processing job registered",
		"job_id", job.ID.String(),
		"source_document", sourceDocument)
	return job, nil
}

// Transition moves a job to a new state and persists it.
func (s *Service) Transition(ctx context.Context, jobID id.JobID, to models.JobState, detail string) (*models.JobStatus, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.Transition(to, detail, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "job store failure")
	}

	s.logger.Info("processing job transitioned",
		"job_id", jobID.String(),
		"state", string(to))
	return job, nil
}

// Get retrieves a job status record.
func (s *Service) Get(ctx context.Context, jobID id.JobID) (*models.JobStatus, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "processing job not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "job store failure")
	}
	return job, nil
}
