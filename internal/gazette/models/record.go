package models

import (
	"time"

	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
)

// NameRole tags a record's position inside an identity family. The set is
// closed; anything else is rejected at construction, never dispatched on
// as a free string.
type NameRole string

const (
	// NameRoleMaster carries the current name. Exactly one per family.
	NameRoleMaster NameRole = "master"
	// NameRoleOld carries a superseded name.
	NameRoleOld NameRole = "old"
	// NameRoleAlias carries an additional name still in use.
	NameRoleAlias NameRole = "alias"
	// NameRoleOther carries any other name value printed in the notice.
	NameRoleOther NameRole = "other"
)

func (r NameRole) Valid() bool {
	switch r {
	case NameRoleMaster, NameRoleOld, NameRoleAlias, NameRoleOther:
		return true
	}
	return false
}

// NoticeType categorizes a legal notice. Sequence verification scopes to
// one type when an issue interleaves several series.
type NoticeType string

const (
	NoticeTypeNameChange      NoticeType = "name_change"
	NoticeTypeDOBCorrection   NoticeType = "dob_correction"
	NoticeTypeMarriageOfficer NoticeType = "marriage_officer"
	NoticeTypeGeneral         NoticeType = "general"
)

func (n NoticeType) Valid() bool {
	switch n {
	case NoticeTypeNameChange, NoticeTypeDOBCorrection, NoticeTypeMarriageOfficer, NoticeTypeGeneral:
		return true
	}
	return false
}

// VerificationState tracks the manual review status of a record.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationVerified   VerificationState = "verified"
)

// GazetteRecord is one row produced from extracting a published legal
// notice.
//
// Invariants:
//   - ItemNumber and IssueNumber are required; ItemNumber is numeric text
//   - All records sharing a LinkageKey agree on the master name value,
//     IssueNumber, and SourceDocument
//   - Exactly one record per LinkageKey carries NameRoleMaster
//   - VerificationState moves unverified -> verified only through an explicit
//     reviewer action; there is no automatic transition and no rejected state
//
// Deletion is an administrative action outside this engine; nothing here
// removes records.
type GazetteRecord struct {
	ID               id.RecordID   `json:"id"`
	LinkageKey       id.LinkageKey `json:"linkage_key"`
	NameRole         NameRole      `json:"name_role"`
	NameValue        string        `json:"name_value"`
	IssueNumber      string        `json:"issue_number"`
	IssueDate        *time.Time    `json:"issue_date,omitempty"`
	IssuePage        *int          `json:"issue_page,omitempty"`
	ItemNumber       string        `json:"item_number"`
	SourceItemNumber string        `json:"source_item_number,omitempty"`
	NoticeType       NoticeType    `json:"notice_type"`
	SourceDocument   string        `json:"source_document"`
	LinkedPersonID   *id.PersonID  `json:"linked_person_id,omitempty"`

	VerificationState VerificationState `json:"verification_state"`
	VerificationNote  string            `json:"verification_note,omitempty"`
	VerifiedAt        *time.Time        `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *GazetteRecord) IsMaster() bool {
	return r.NameRole == NameRoleMaster
}

func (r *GazetteRecord) HasPersonLink() bool {
	return r.LinkedPersonID != nil && !r.LinkedPersonID.IsZero()
}

// Title is the display form shown to reviewers resolving duplicates.
func (r *GazetteRecord) Title() string {
	return r.NameValue
}

// CanVerify checks the record can move to the verified state.
func (r *GazetteRecord) CanVerify() error {
	if r.VerificationState == VerificationVerified {
		return dErrors.New(dErrors.CodeInvalidInput, "record is already verified")
	}
	return nil
}

// ApplyVerification moves the record to verified. Call CanVerify first.
func (r *GazetteRecord) ApplyVerification(note string, now time.Time) {
	r.VerificationState = VerificationVerified
	r.VerificationNote = note
	r.VerifiedAt = &now
	r.UpdatedAt = now
}

// ReconcileItemNumber replaces the item number, retaining the as-printed
// value so corrections stay auditable.
func (r *GazetteRecord) ReconcileItemNumber(corrected string, now time.Time) {
	if r.SourceItemNumber == "" {
		r.SourceItemNumber = r.ItemNumber
	}
	r.ItemNumber = corrected
	r.UpdatedAt = now
}
