package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gazette/internal/gazette/models"
	dErrors "gazette/pkg/domain-errors"
)

func TestVerify(t *testing.T) {
	t.Run("reports a single interior gap with the mandated prompt", func(t *testing.T) {
		report := Verify([]string{"24001", "24002", "24005", "24006"})

		assert.Equal(t, 4, report.TotalItems)
		assert.False(t, report.IsComplete)
		require.Equal(t, []models.MissingRange{{Start: "24003", End: "24004"}}, report.MissingRanges)
		assert.Equal(t,
			[]string{"You missed from 24003 to 24004. Please capture that data."},
			report.CorrectionPrompts)
	})

	t.Run("reports multiple gaps in order", func(t *testing.T) {
		report := Verify([]string{"24001", "24003", "24007"})

		require.Equal(t, []models.MissingRange{
			{Start: "24002", End: "24002"},
			{Start: "24004", End: "24006"},
		}, report.MissingRanges)
	})

	t.Run("single item scope is always complete", func(t *testing.T) {
		report := Verify([]string{"24050"})

		assert.True(t, report.IsComplete)
		assert.Equal(t, 1, report.TotalItems)
		assert.Empty(t, report.MissingRanges)
	})

	t.Run("orders numerically not lexicographically", func(t *testing.T) {
		report := Verify([]string{"10", "7", "9"})

		assert.Equal(t, []string{"7", "9", "10"}, report.ItemNumbers)
		require.Equal(t, []models.MissingRange{{Start: "8", End: "8"}}, report.MissingRanges)
	})

	t.Run("preserves zero padded width in gap boundaries", func(t *testing.T) {
		report := Verify([]string{"007", "010"})

		require.Equal(t, []models.MissingRange{{Start: "008", End: "009"}}, report.MissingRanges)
		assert.Equal(t,
			[]string{"You missed from 008 to 009. Please capture that data."},
			report.CorrectionPrompts)
	})

	t.Run("excludes normalization failures without aborting", func(t *testing.T) {
		report := Verify([]string{"24001", "24x02", "24003"})

		assert.Equal(t, []string{"24x02"}, report.InvalidItemNumbers)
		assert.Equal(t, 2, report.TotalItems)
		require.Equal(t, []models.MissingRange{{Start: "24002", End: "24002"}}, report.MissingRanges)
	})

	t.Run("empty scope reports complete with zero items", func(t *testing.T) {
		report := Verify(nil)

		assert.True(t, report.IsComplete)
		assert.Equal(t, 0, report.TotalItems)
		assert.Empty(t, report.MissingRanges)
	})

	t.Run("only invalid input leaves a vacuously complete empty scope", func(t *testing.T) {
		report := Verify([]string{"not-a-number"})

		assert.True(t, report.IsComplete)
		assert.Equal(t, 0, report.TotalItems)
		assert.Equal(t, []string{"not-a-number"}, report.InvalidItemNumbers)
	})

	t.Run("deduplicates repeated captures before gap analysis", func(t *testing.T) {
		report := Verify([]string{"24001", "24001", "24002"})

		assert.Equal(t, 2, report.TotalItems)
		assert.True(t, report.IsComplete)
	})

	t.Run("is deterministic across repeated invocations", func(t *testing.T) {
		in := []string{"24001", "24002", "24005", "24006"}
		first := Verify(in)
		second := Verify(in)
		assert.Equal(t, first, second)
	})
}

func TestExpandRange(t *testing.T) {
	t.Run("returns full inclusive range minus existing items", func(t *testing.T) {
		report, err := ExpandRange("100", "105", []string{"100", "105"})
		require.NoError(t, err)

		assert.Equal(t, []string{"101", "102", "103", "104"}, report.ItemsToCapture)
		assert.Equal(t, []string{"100", "105"}, report.ExistingItemsInRange)
		assert.Equal(t, "You missed from 100 to 105. Please capture that data.", report.CorrectionPrompt)
	})

	t.Run("includes absent boundaries themselves", func(t *testing.T) {
		report, err := ExpandRange("100", "105", []string{"102"})
		require.NoError(t, err)

		assert.Equal(t, []string{"100", "101", "103", "104", "105"}, report.ItemsToCapture)
		assert.Equal(t, []string{"102"}, report.ExistingItemsInRange)
	})

	t.Run("ignores captured items outside the range", func(t *testing.T) {
		report, err := ExpandRange("100", "102", []string{"099", "101", "200"})
		require.NoError(t, err)

		assert.Equal(t, []string{"101"}, report.ExistingItemsInRange)
		assert.Equal(t, []string{"100", "102"}, report.ItemsToCapture)
	})

	t.Run("keeps boundary padding in items to capture", func(t *testing.T) {
		report, err := ExpandRange("007", "010", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"007", "008", "009", "010"}, report.ItemsToCapture)
	})

	t.Run("rejects non numeric boundaries before touching the store", func(t *testing.T) {
		_, err := ExpandRange("10a", "105", nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		_, err := ExpandRange("105", "100", nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
