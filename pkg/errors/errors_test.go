package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	original := Clone(ErrNotFound, "site not found")
	wrapped := fmt.Errorf("handler: %w", original)

	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "site not found", got.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Internal(fmt.Errorf("pq: relation \"site\" does not exist"), "failed to create site")
	assert.Equal(t, `failed to create site: pq: relation "site" does not exist`, err.Error())
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrConflict, "Cannot delete area: it has 2 sites")
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.True(t, Is(clone, ErrConflict))
	assert.False(t, Is(clone, ErrNotFound))
}
