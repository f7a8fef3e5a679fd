package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches the code on a new error", func(t *testing.T) {
		err := New(CodeConflict, "linkage key already claimed")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("finds a code buried under wrapping", func(t *testing.T) {
		inner := New(CodeNotFound, "family not found")
		outer := Wrap(inner, CodeInternal, "load family")
		assert.True(t, HasCode(outer, CodeNotFound))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("is false for uncoded errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil cause yields nil", func(t *testing.T) {
		require.Nil(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("sentinel stays reachable through errors.Is", func(t *testing.T) {
		sentinel := errors.New("not found")
		err := Wrap(fmt.Errorf("find record: %w", sentinel), CodeNotFound, "record lookup failed")
		assert.True(t, errors.Is(err, sentinel))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad item number")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
