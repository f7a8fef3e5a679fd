// Package domain holds the typed identifiers shared across modules.
//
// IDs are distinct named types over uuid.UUID so a person id can never be
// passed where a record id is expected; the compiler enforces what the
// database schema only documents.
package domain

import (
	"github.com/google/uuid"

	dErrors "gazette/pkg/domain-errors"
)

// RecordID identifies one gazette record row.
type RecordID uuid.UUID

// PersonID identifies a person in the external person registry. The engine
// treats it as a weak reference; lifecycle is owned elsewhere.
type PersonID uuid.UUID

// JobID identifies one extraction processing job.
type JobID uuid.UUID

// LinkageKey groups a master record with its name-variant rows. The key is
// derived deterministically from the extraction source (see the linker
// package), so it is a plain string rather than a UUID.
type LinkageKey string

func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id PersonID) String() string { return uuid.UUID(id).String() }
func (id JobID) String() string    { return uuid.UUID(id).String() }

func (id RecordID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id PersonID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func (k LinkageKey) String() string { return string(k) }

// NewRecordID mints a fresh record id.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// NewJobID mints a fresh job id.
func NewJobID() JobID { return JobID(uuid.New()) }

// ParseRecordID parses an id string at a trust boundary. Empty strings,
// malformed UUIDs, and the nil UUID are all rejected.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record id")
	return RecordID(u), err
}

// ParsePersonID parses a person id string at a trust boundary.
func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s, "person id")
	return PersonID(u), err
}

// ParseJobID parses a job id string at a trust boundary.
func ParseJobID(s string) (JobID, error) {
	u, err := parseUUID(s, "job id")
	return JobID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", what)
	}
	return u, nil
}
