package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gazette/internal/gazette/itemno"
	"gazette/internal/gazette/models"
	"gazette/internal/gazette/sequence"
	"gazette/internal/gazette/store"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/requestcontext"
)

// VerifySequence checks the item-number series captured for one issue,
// optionally scoped to a notice type, and reports every gap as a
// correction prompt.
//
// A zero-item scope comes back IsComplete=true with TotalItems=0; the
// caller decides whether that means "complete" or "extraction never ran".
func (s *Service) VerifySequence(ctx context.Context, issueNumber string, noticeType models.NoticeType) (*models.SequenceReport, error) {
	if err := requireIssueNumber(issueNumber); err != nil {
		return nil, err
	}
	if noticeType != "" && !noticeType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown notice type %q", noticeType)
	}

	start := time.Now()
	records, err := s.records.List(ctx, store.Filter{IssueNumber: issueNumber, NoticeType: noticeType})
	if err != nil {
		return nil, wrapStoreErr(err, "issue not found")
	}

	report := sequence.Verify(itemNumbersOf(records))
	s.metrics.ObserveSequenceCheck(time.Since(start).Seconds(), len(report.MissingRanges))

	if report.TotalItems == 0 {
		s.logger.Warn("sequence check over empty scope",
			"issue_number", issueNumber,
			"notice_type", string(noticeType),
			"request_id", requestcontext.RequestID(ctx))
	}
	return report, nil
}

// ReportMissing expands an explicit inclusive range into the item numbers
// still to capture, minus whatever already exists in the scope. Both
// boundaries must be numeric text; validation happens before the store is
// touched.
func (s *Service) ReportMissing(ctx context.Context, issueNumber, startItem, endItem string, noticeType models.NoticeType, note string) (*models.CaptureGapReport, error) {
	if err := requireIssueNumber(issueNumber); err != nil {
		return nil, err
	}
	if _, err := itemno.Parse(startItem); err != nil {
		return nil, err
	}
	if _, err := itemno.Parse(endItem); err != nil {
		return nil, err
	}
	if noticeType != "" && !noticeType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown notice type %q", noticeType)
	}

	records, err := s.records.List(ctx, store.Filter{IssueNumber: issueNumber, NoticeType: noticeType})
	if err != nil {
		return nil, wrapStoreErr(err, "issue not found")
	}

	report, err := sequence.ExpandRange(startItem, endItem, itemNumbersOf(records))
	if err != nil {
		return nil, err
	}
	report.Note = note
	return report, nil
}

// CheckDuplicates returns every record captured for the scope. Entries
// carry their linkage key; an item number whose matches span more than one
// key was captured twice into unrelated families and is listed in
// ConflictingItemNumbers for the reviewer to act on.
func (s *Service) CheckDuplicates(ctx context.Context, issueNumber, itemNumber string) (*models.DuplicateReport, error) {
	if err := requireIssueNumber(issueNumber); err != nil {
		return nil, err
	}
	if itemNumber != "" {
		if _, err := itemno.Parse(itemNumber); err != nil {
			return nil, err
		}
	}

	records, err := s.records.List(ctx, store.Filter{IssueNumber: issueNumber, ItemNumber: itemNumber})
	if err != nil {
		return nil, wrapStoreErr(err, "issue not found")
	}
	sortByItemNumber(records)

	entries := make([]models.DuplicateEntry, 0, len(records))
	keysByItem := make(map[string]map[id.LinkageKey]bool)
	for _, r := range records {
		entries = append(entries, models.DuplicateEntry{
			ID:         r.ID,
			ItemNumber: r.ItemNumber,
			Title:      r.Title(),
			NoticeType: r.NoticeType,
			LinkageKey: r.LinkageKey,
			CreatedAt:  r.CreatedAt,
		})
		if keysByItem[r.ItemNumber] == nil {
			keysByItem[r.ItemNumber] = make(map[id.LinkageKey]bool)
		}
		keysByItem[r.ItemNumber][r.LinkageKey] = true
	}

	conflicting := make([]string, 0)
	for item, keys := range keysByItem {
		if len(keys) > 1 {
			conflicting = append(conflicting, item)
		}
	}
	sort.Strings(conflicting)
	s.metrics.AddDuplicatesFound(len(conflicting))

	return &models.DuplicateReport{
		DuplicateCount:         len(entries),
		Duplicates:             entries,
		ConflictingItemNumbers: conflicting,
	}, nil
}

// CrossReference joins an issue's captures against linked person records
// and re-runs sequence verification over their item numbers. Never
// mutates state.
func (s *Service) CrossReference(ctx context.Context, issueNumber string, personID *id.PersonID) (*models.CrossReferenceReport, error) {
	if err := requireIssueNumber(issueNumber); err != nil {
		return nil, err
	}

	var records []*models.GazetteRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.records.List(gctx, store.Filter{IssueNumber: issueNumber, LinkedPersonID: personID})
		return wrapStoreErr(err, "issue not found")
	})
	if personID != nil && s.persons != nil {
		g.Go(func() error {
			if _, err := s.persons.FindByID(gctx, *personID); err != nil {
				return wrapStoreErr(err, "person not found")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortByItemNumber(records)

	names, err := s.resolveNames(ctx, records)
	if err != nil {
		return nil, err
	}

	seqReport := sequence.Verify(itemNumbersOf(records))

	entries := make([]models.CrossReferenceEntry, 0, len(records))
	for _, r := range records {
		entry := models.CrossReferenceEntry{
			ID:             r.ID,
			ItemNumber:     r.ItemNumber,
			Title:          r.Title(),
			LinkedPersonID: r.LinkedPersonID,
			NoticeType:     r.NoticeType,
			CreatedAt:      r.CreatedAt,
		}
		if r.LinkedPersonID != nil {
			entry.PersonName = names[*r.LinkedPersonID]
		}
		entries = append(entries, entry)
	}

	return &models.CrossReferenceReport{
		TotalEntries:  len(entries),
		ItemNumbers:   seqReport.ItemNumbers,
		MissingRanges: seqReport.MissingRanges,
		Entries:       entries,
	}, nil
}

func (s *Service) resolveNames(ctx context.Context, records []*models.GazetteRecord) (map[id.PersonID]string, error) {
	if s.persons == nil {
		return nil, nil
	}
	ids := make([]id.PersonID, 0)
	seen := make(map[id.PersonID]bool)
	for _, r := range records {
		if r.LinkedPersonID != nil && !seen[*r.LinkedPersonID] {
			seen[*r.LinkedPersonID] = true
			ids = append(ids, *r.LinkedPersonID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	names, err := s.persons.NamesByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "person registry failure")
	}
	return names, nil
}

func itemNumbersOf(records []*models.GazetteRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ItemNumber
	}
	return out
}

// sortByItemNumber orders records by integer item number; records whose
// item number fails normalization sink to the end in text order.
func sortByItemNumber(records []*models.GazetteRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, errA := itemno.Parse(records[i].ItemNumber)
		b, errB := itemno.Parse(records[j].ItemNumber)
		switch {
		case errA == nil && errB == nil:
			return a.Value < b.Value
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return records[i].ItemNumber < records[j].ItemNumber
		}
	})
}
