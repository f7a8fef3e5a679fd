package models

import (
	"time"

	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
)

// IdentityFamily is the master record plus its variant rows describing one
// notice's name history. All members share one linkage key.
type IdentityFamily struct {
	Master   *GazetteRecord
	Variants []*GazetteRecord
}

// All returns every member, master first.
func (f *IdentityFamily) All() []*GazetteRecord {
	out := make([]*GazetteRecord, 0, 1+len(f.Variants))
	if f.Master != nil {
		out = append(out, f.Master)
	}
	return append(out, f.Variants...)
}

// LinkageKey returns the family's shared key.
func (f *IdentityFamily) LinkageKey() id.LinkageKey {
	if f.Master == nil {
		return ""
	}
	return f.Master.LinkageKey
}

// Validate enforces the family invariants before any write:
// exactly one master, every member on the same linkage key, and agreement
// on the shared attributes (issue number, source document, current name).
func (f *IdentityFamily) Validate() error {
	if f.Master == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "identity family must have exactly one master record")
	}
	if !f.Master.IsMaster() {
		return dErrors.New(dErrors.CodeInvariantViolation, "family master record is not tagged master")
	}
	key := f.Master.LinkageKey
	if key == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "identity family has no linkage key")
	}
	for _, v := range f.Variants {
		if v.IsMaster() {
			return dErrors.New(dErrors.CodeInvariantViolation, "identity family has more than one master record")
		}
		if !v.NameRole.Valid() {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "variant carries unknown name role %q", v.NameRole)
		}
		if v.LinkageKey != key {
			return dErrors.New(dErrors.CodeInvariantViolation, "variant linkage key does not match master")
		}
		if v.IssueNumber != f.Master.IssueNumber {
			return dErrors.New(dErrors.CodeInvariantViolation, "variant issue number does not match master")
		}
		if v.SourceDocument != f.Master.SourceDocument {
			return dErrors.New(dErrors.CodeInvariantViolation, "variant source document does not match master")
		}
	}
	return nil
}

// SharedAttributes are the fields every family member must agree on. An
// update to any of them on the master propagates to the variants in the
// same transaction.
type SharedAttributes struct {
	CurrentName    string
	IssueNumber    string
	SourceDocument string
}

// ApplyShared writes the shared attributes onto a member row. Only the
// master carries the current name as its own name value.
func (r *GazetteRecord) ApplyShared(shared SharedAttributes, now time.Time) {
	if r.IsMaster() && shared.CurrentName != "" {
		r.NameValue = shared.CurrentName
	}
	if shared.IssueNumber != "" {
		r.IssueNumber = shared.IssueNumber
	}
	if shared.SourceDocument != "" {
		r.SourceDocument = shared.SourceDocument
	}
	r.UpdatedAt = now
}
