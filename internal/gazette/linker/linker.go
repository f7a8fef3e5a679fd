// Package linker builds identity families: one master record carrying the
// current name plus variant rows for superseded and alias names, all under
// one deterministic linkage key.
package linker

import (
	"fmt"
	"strings"
	"time"

	"gazette/internal/gazette/itemno"
	"gazette/internal/gazette/models"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
)

// VariantName is one non-master name row to attach to a family.
type VariantName struct {
	Role models.NameRole `json:"role"`
	Name string          `json:"name"`
}

// FamilyInput carries everything one extraction event contributes.
type FamilyInput struct {
	CurrentName    string
	Variants       []VariantName
	IssueNumber    string
	ItemNumber     string
	SourceDocument string
	NoticeType     models.NoticeType
	IssueDate      *time.Time
	IssuePage      *int
	LinkedPersonID *id.PersonID
}

// BuildLinkageKey derives the family key from the extraction source.
//
// The derivation is deterministic so re-running extraction over the same
// source yields the same key and re-ingestion cannot fork a family; the
// store's uniqueness constraint turns a repeat into a distinguishable
// collision instead. Sequence stays 1 unless multiple independent events
// genuinely share a source and item number, which is itself a signal for
// the duplicate detector.
//
// The key embeds the source document name. If the extraction pipeline ever
// renames source files, previously linked families become unreachable
// under the new key; that is an upstream stability contract, not something
// patched here.
func BuildLinkageKey(issueYear int, sourceDocument, itemNumber string, sequence int) id.LinkageKey {
	return id.LinkageKey(fmt.Sprintf("%d-%s-%s-%d", issueYear, slug(sourceDocument), itemNumber, sequence))
}

// NewFamily constructs the master and variant records for one extraction
// event. The family is validated before it is returned; a variant tagged
// master is a construction error, never silently coerced.
func NewFamily(in FamilyInput, issueYear int, sequence int, now time.Time) (*models.IdentityFamily, error) {
	if strings.TrimSpace(in.CurrentName) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "current name is required")
	}
	if in.IssueNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "issue number is required")
	}
	if in.SourceDocument == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "source document is required")
	}
	if _, err := itemno.Parse(in.ItemNumber); err != nil {
		return nil, err
	}
	noticeType := in.NoticeType
	if noticeType == "" {
		noticeType = models.NoticeTypeGeneral
	}
	if !noticeType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown notice type %q", in.NoticeType)
	}

	key := BuildLinkageKey(issueYear, in.SourceDocument, in.ItemNumber, sequence)

	master := newRecord(in, key, models.NameRoleMaster, strings.TrimSpace(in.CurrentName), noticeType, now)

	variants := make([]*models.GazetteRecord, 0, len(in.Variants))
	for _, v := range in.Variants {
		if v.Role == models.NameRoleMaster {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				"family would have more than one master record")
		}
		if !v.Role.Valid() {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown name role %q", v.Role)
		}
		if strings.TrimSpace(v.Name) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "variant name is required")
		}
		variants = append(variants, newRecord(in, key, v.Role, strings.TrimSpace(v.Name), noticeType, now))
	}

	family := &models.IdentityFamily{Master: master, Variants: variants}
	if err := family.Validate(); err != nil {
		return nil, err
	}
	return family, nil
}

func newRecord(in FamilyInput, key id.LinkageKey, role models.NameRole, name string, noticeType models.NoticeType, now time.Time) *models.GazetteRecord {
	return &models.GazetteRecord{
		ID:                id.NewRecordID(),
		LinkageKey:        key,
		NameRole:          role,
		NameValue:         name,
		IssueNumber:       in.IssueNumber,
		IssueDate:         in.IssueDate,
		IssuePage:         in.IssuePage,
		ItemNumber:        in.ItemNumber,
		NoticeType:        noticeType,
		SourceDocument:    in.SourceDocument,
		LinkedPersonID:    in.LinkedPersonID,
		VerificationState: models.VerificationUnverified,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// slug folds a source document name into a key-safe token.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
