package store

import (
	"context"

	"gazette/internal/gazette/models"
	id "gazette/pkg/domain"
)

// Filter scopes a record listing. Zero-valued fields match everything.
type Filter struct {
	IssueNumber    string
	NoticeType     models.NoticeType
	ItemNumber     string
	LinkedPersonID *id.PersonID
}

// RecordStore persists gazette records.
//
// CreateFamily is all-or-nothing: either every member row is written or
// none is, and a linkage-key collision surfaces as sentinel.ErrAlreadyUsed
// so the service can report "already linked" distinctly from a write
// failure. Lookups return sentinel.ErrNotFound when nothing matches.
// Listing order is unspecified; the service orders by numeric item number
// through the normalizer.
type RecordStore interface {
	CreateFamily(ctx context.Context, family *models.IdentityFamily) error
	FindByID(ctx context.Context, recordID id.RecordID) (*models.GazetteRecord, error)
	FindFamily(ctx context.Context, key id.LinkageKey) ([]*models.GazetteRecord, error)
	List(ctx context.Context, f Filter) ([]*models.GazetteRecord, error)
	// UpdateFamilyShared propagates the shared attributes to every member
	// of the family in one transaction.
	UpdateFamilyShared(ctx context.Context, key id.LinkageKey, shared models.SharedAttributes) error
	Update(ctx context.Context, record *models.GazetteRecord) error
}

func matches(r *models.GazetteRecord, f Filter) bool {
	if f.IssueNumber != "" && r.IssueNumber != f.IssueNumber {
		return false
	}
	if f.NoticeType != "" && r.NoticeType != f.NoticeType {
		return false
	}
	if f.ItemNumber != "" && r.ItemNumber != f.ItemNumber {
		return false
	}
	if f.LinkedPersonID != nil {
		if r.LinkedPersonID == nil || *r.LinkedPersonID != *f.LinkedPersonID {
			return false
		}
	}
	return true
}
