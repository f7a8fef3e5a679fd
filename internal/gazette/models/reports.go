package models

import (
	"fmt"
	"time"

	id "gazette/pkg/domain"
)

// MissingRange is a derived value: one contiguous gap in the expected item
// number series, both boundaries inclusive. Boundaries keep the printed
// width of the surrounding captured numbers.
type MissingRange struct {
	Start string `json:"start_item_number"`
	End   string `json:"end_item_number"`
}

// Prompt renders the mandated correction prompt for this range. The
// wording is fixed; data-capture operators key off it verbatim.
func (m MissingRange) Prompt() string {
	return fmt.Sprintf("You missed from %s to %s. Please capture that data.", m.Start, m.End)
}

// SequenceReport is the result of verifying one (issue, notice type) scope.
//
// TotalItems and IsComplete are both always populated: an empty scope
// reports IsComplete=true with TotalItems=0, and callers are expected to
// treat the pair together so "complete" and "never extracted" stay
// distinguishable.
type SequenceReport struct {
	TotalItems        int            `json:"total_items"`
	ItemNumbers       []string       `json:"item_numbers"`
	MissingRanges     []MissingRange `json:"missing_ranges"`
	IsComplete        bool           `json:"is_complete"`
	CorrectionPrompts []string       `json:"correction_prompts"`
	// InvalidItemNumbers lists inputs that failed normalization. They are
	// excluded from gap analysis rather than failing the whole report.
	InvalidItemNumbers []string `json:"invalid_item_numbers,omitempty"`
}

// CaptureGapReport answers a report-missing request for one explicit range.
type CaptureGapReport struct {
	CorrectionPrompt     string       `json:"correction_prompt"`
	MissingRange         MissingRange `json:"missing_range"`
	ExistingItemsInRange []string     `json:"existing_items_in_range"`
	ItemsToCapture       []string     `json:"items_to_capture"`
	Note                 string       `json:"note,omitempty"`
}

// DuplicateEntry carries enough of a matched record for a reviewer to
// decide which family to discard.
type DuplicateEntry struct {
	ID         id.RecordID   `json:"id"`
	ItemNumber string        `json:"item_number"`
	Title      string        `json:"title"`
	NoticeType NoticeType    `json:"notice_type"`
	LinkageKey id.LinkageKey `json:"linkage_key"`
	CreatedAt  time.Time     `json:"created_at"`
}

// DuplicateReport lists captures sharing an (issue, item number) scope.
// A pair is only a true duplicate when its matches span more than one
// linkage key; ConflictingItemNumbers names exactly those pairs.
type DuplicateReport struct {
	DuplicateCount         int              `json:"duplicate_count"`
	Duplicates             []DuplicateEntry `json:"duplicates"`
	ConflictingItemNumbers []string         `json:"conflicting_item_numbers,omitempty"`
}

// CrossReferenceEntry annotates one captured record with its person link.
type CrossReferenceEntry struct {
	ID             id.RecordID  `json:"id"`
	ItemNumber     string       `json:"item_number"`
	Title          string       `json:"title"`
	LinkedPersonID *id.PersonID `json:"linked_person_id,omitempty"`
	PersonName     string       `json:"person_name,omitempty"`
	NoticeType     NoticeType   `json:"notice_type"`
	CreatedAt      time.Time    `json:"created_at"`
}

// CrossReferenceReport joins an issue's captures against linked person
// records and re-runs sequence verification over their item numbers.
type CrossReferenceReport struct {
	TotalEntries  int                   `json:"total_entries"`
	ItemNumbers   []string              `json:"item_numbers"`
	MissingRanges []MissingRange        `json:"missing_ranges"`
	Entries       []CrossReferenceEntry `json:"entries"`
}

// LinkResult reports a successful family construction.
type LinkResult struct {
	LinkageKey id.LinkageKey `json:"linkage_key"`
	MasterID   id.RecordID   `json:"master_id"`
	VariantIDs []id.RecordID `json:"variant_ids"`
}
