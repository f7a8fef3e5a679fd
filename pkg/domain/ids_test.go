package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gazette/pkg/domain-errors"
)

// TestParseIDs_Invariants validates the parsing invariant: ids must be
// valid, non-empty, non-nil UUIDs.
func TestParseIDs_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRecordID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePersonID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseJobID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseRecordID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, RecordID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety between id
// kinds. If this compiles, the invariant holds; the runtime check just
// documents it.
func TestTypeDistinction(t *testing.T) {
	recordID := RecordID(uuid.New())
	personID := PersonID(uuid.New())

	// These would fail to compile if the types were interchangeable:
	// var _ RecordID = personID // compile error
	// var _ PersonID = recordID // compile error

	assert.NotEqual(t, uuid.UUID(recordID), uuid.UUID(personID))
}
