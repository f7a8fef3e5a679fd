// Package itemno normalizes the item-number strings printed in gazette
// issues. Item numbers are numeric text, often zero-padded to a fixed
// width, and must be ordered by integer value ("9" before "10"), never
// lexicographically.
package itemno

import (
	"sort"
	"strconv"

	dErrors "gazette/pkg/domain-errors"
)

// Item pairs the as-printed form of an item number with its numeric value.
// Text keeps the source width so renderings of neighbouring numbers can
// match the printed padding.
type Item struct {
	Text  string
	Value int
}

// Parse validates that s is composed solely of ASCII digits and returns
// the parsed item. Anything else - empty strings, signs, spaces, unicode
// digits - is rejected with a validation error.
func Parse(s string) (Item, error) {
	if s == "" {
		return Item{}, dErrors.New(dErrors.CodeValidation, "item number is required")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Item{}, dErrors.Newf(dErrors.CodeValidation, "item number %q is not numeric", s)
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Item{}, dErrors.Newf(dErrors.CodeValidation, "item number %q is out of range", s)
	}
	return Item{Text: s, Value: v}, nil
}

// Normalize partitions raw item numbers into parsed items and
// normalization failures. Duplicated values are collapsed to their first
// occurrence; failures never abort the batch.
func Normalize(raw []string) (items []Item, invalid []string) {
	seen := make(map[int]bool, len(raw))
	for _, s := range raw {
		item, err := Parse(s)
		if err != nil {
			invalid = append(invalid, s)
			continue
		}
		if seen[item.Value] {
			continue
		}
		seen[item.Value] = true
		items = append(items, item)
	}
	return items, invalid
}

// SortAscending orders items by integer value.
func SortAscending(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Value < items[j].Value })
}

// Texts returns the as-printed forms in slice order.
func Texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// PaddedWidth reports the fixed print width of a captured series. Gazette
// item numbers are printed zero-padded, which shows up as every captured
// number sharing one width; only then is that width authoritative for
// rendering numbers absent from the series. Mixed widths return 0,
// meaning "render naturally".
func PaddedWidth(items []Item) int {
	if len(items) == 0 {
		return 0
	}
	w := len(items[0].Text)
	for _, it := range items[1:] {
		if len(it.Text) != w {
			return 0
		}
	}
	return w
}

// Format renders a numeric value zero-padded to width. Width 0, or a value
// wider than width, renders naturally.
func Format(value, width int) string {
	s := strconv.Itoa(value)
	if width <= len(s) {
		return s
	}
	pad := make([]byte, width-len(s))
	for i := range pad {
		pad[i] = '0'
	}
	return string(pad) + s
}
