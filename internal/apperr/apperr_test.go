package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForbiddenKeepsReason(t *testing.T) {
	err := Forbidden("not owner")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "forbidden: not owner", err.Error())
	assert.False(t, Retryable(err))
}

func TestStorageWrapsCause(t *testing.T) {
	err := Storage(context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, Retryable(err))

	var se *StorageError
	assert.True(t, errors.As(err, &se))
}

func TestStorageLeavesDomainErrorsAlone(t *testing.T) {
	wrapped := fmt.Errorf("pay: %w", ErrAlreadyPaid)
	assert.Same(t, wrapped, Storage(wrapped))
	assert.Nil(t, Storage(nil))

	once := Storage(errors.New("conn reset"))
	assert.Same(t, once, Storage(once))
}
