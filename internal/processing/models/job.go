// Package models defines the extraction processing job records. Each job
// gets its own status row; there is no shared in-progress flag, so two
// concurrent extractions can never clobber each other's state.
package models

import (
	"time"

	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
)

// JobState is the lifecycle state of one extraction job.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Valid reports whether the state is a member of the closed set.
func (s JobState) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobDone, JobFailed:
		return true
	}
	return false
}

// terminal states accept no further transitions.
func (s JobState) terminal() bool {
	return s == JobDone || s == JobFailed
}

// JobStatus is the status record for one extraction job, keyed by job id.
type JobStatus struct {
	ID             id.JobID   `json:"id"`
	SourceDocument string     `json:"source_document"`
	State          JobState   `json:"state"`
	Detail         string     `json:"detail,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a queued job for a source document.
func NewJob(sourceDocument string, now time.Time) (*JobStatus, error) {
	if sourceDocument == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "source document is required")
	}
	return &JobStatus{
		ID:             id.NewJobID(),
		SourceDocument: sourceDocument,
		State:          JobQueued,
		StartedAt:      now,
	}, nil
}

// Transition moves the job to a new state. Terminal states are final and
// running can only be entered from queued.
func (j *JobStatus) Transition(to JobState, detail string, now time.Time) error {
	if !to.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown job state %q", to)
	}
	if j.State.terminal() {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"job is already %s", j.State)
	}
	if to == JobQueued {
		return dErrors.New(dErrors.CodeInvariantViolation, "job cannot return to queued")
	}
	if to == JobRunning && j.State != JobQueued {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"job cannot move from %s to running", j.State)
	}

	j.State = to
	j.Detail = detail
	if to.terminal() {
		j.FinishedAt = &now
	}
	return nil
}
