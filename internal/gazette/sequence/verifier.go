// Package sequence detects gaps in the item-number series captured for one
// gazette issue. A correctly captured issue is a contiguous run; every gap
// becomes a correction prompt for the data-capture team.
package sequence

import (
	"gazette/internal/gazette/itemno"
	"gazette/internal/gazette/models"
	dErrors "gazette/pkg/domain-errors"
)

// Verify computes the missing ranges over a scope's raw item numbers.
//
// Numbers that fail normalization are reported in InvalidItemNumbers and
// excluded from gap analysis. An empty validated set reports zero items
// and IsComplete=true; callers distinguish "complete" from "no data"
// through TotalItems.
func Verify(raw []string) *models.SequenceReport {
	items, invalid := itemno.Normalize(raw)
	itemno.SortAscending(items)

	width := itemno.PaddedWidth(items)
	missing := make([]models.MissingRange, 0)
	for i := 1; i < len(items); i++ {
		prev, next := items[i-1], items[i]
		if next.Value-prev.Value > 1 {
			missing = append(missing, models.MissingRange{
				Start: itemno.Format(prev.Value+1, width),
				End:   itemno.Format(next.Value-1, width),
			})
		}
	}

	prompts := make([]string, len(missing))
	for i, m := range missing {
		prompts[i] = m.Prompt()
	}

	return &models.SequenceReport{
		TotalItems:         len(items),
		ItemNumbers:        itemno.Texts(items),
		MissingRanges:      missing,
		IsComplete:         len(missing) == 0,
		CorrectionPrompts:  prompts,
		InvalidItemNumbers: invalid,
	}
}

// ExpandRange answers a report-missing request: which item numbers inside
// the inclusive [start, end] range still need capturing, given what was
// already captured. Both boundaries must be numeric text.
func ExpandRange(startText, endText string, existing []string) (*models.CaptureGapReport, error) {
	start, err := itemno.Parse(startText)
	if err != nil {
		return nil, err
	}
	end, err := itemno.Parse(endText)
	if err != nil {
		return nil, err
	}
	if start.Value > end.Value {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"range start %s exceeds range end %s", startText, endText)
	}

	captured, _ := itemno.Normalize(existing)
	itemno.SortAscending(captured)

	present := make(map[int]bool, len(captured))
	existingInRange := make([]string, 0)
	for _, it := range captured {
		if it.Value < start.Value || it.Value > end.Value {
			continue
		}
		present[it.Value] = true
		existingInRange = append(existingInRange, it.Text)
	}

	// Boundary strings dictate the rendered width of numbers to capture;
	// they are the operator's own notation for the range.
	width := itemno.PaddedWidth([]itemno.Item{start, end})
	toCapture := make([]string, 0)
	for v := start.Value; v <= end.Value; v++ {
		if !present[v] {
			toCapture = append(toCapture, itemno.Format(v, width))
		}
	}

	rng := models.MissingRange{Start: start.Text, End: end.Text}
	return &models.CaptureGapReport{
		CorrectionPrompt:     rng.Prompt(),
		MissingRange:         rng,
		ExistingItemsInRange: existingInRange,
		ItemsToCapture:       toCapture,
	}, nil
}
