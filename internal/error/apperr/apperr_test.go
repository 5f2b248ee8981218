package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("name is required")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("unit", "u-1")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("unit", "u-1"))))
	assert.Equal(t, KindStorage, KindOf(errors.New("connection refused")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestStorageErrorMessage(t *testing.T) {
	err := Storage("create", "invoice", "i-1", errors.New("disk full"))

	assert.Equal(t, "create invoice(i-1): disk full", err.Error())
	assert.True(t, Is(err, KindStorage))
	assert.EqualError(t, errors.Unwrap(err), "disk full")
}
