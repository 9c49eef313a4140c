package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := NotFound("raffle not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("enter raffle: %w", Capacity("raffle is full"))
	assert.True(t, errors.Is(wrapped, ErrCapacityExceeded))
	assert.Equal(t, KindCapacityExceeded, KindOf(wrapped))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
	assert.Equal(t, "boom", DetailsOf(errors.New("boom")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to save submission", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Equal(t, "failed to save submission", MessageOf(err))
	assert.Equal(t, "connection refused", DetailsOf(err))
	assert.Equal(t, "failed to save submission: connection refused", err.Error())
}
