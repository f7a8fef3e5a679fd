// Package person is the engine's read-only view of the external person
// registry. Records here are owned by that registry; the engine only
// resolves ids to display names for cross-reference reports and never
// writes.
package person

import (
	"context"
	"time"

	id "gazette/pkg/domain"
)

// Person is the slice of a registry record the engine needs.
type Person struct {
	ID        id.PersonID `json:"id"`
	FullName  string      `json:"full_name"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store reads person records.
type Store interface {
	FindByID(ctx context.Context, personID id.PersonID) (*Person, error)
	// NamesByIDs resolves display names in bulk. Unknown ids are simply
	// absent from the result; a dangling person link is data to report,
	// not an error.
	NamesByIDs(ctx context.Context, ids []id.PersonID) (map[id.PersonID]string, error)
}
