package apperr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailableKeepsKnownKinds(t *testing.T) {
	assert.Nil(t, Unavailable("get", nil))
	assert.ErrorIs(t, Unavailable("get", ErrNotFound), ErrNotFound)

	err := Unavailable("get", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPartialCompletionMatchesKind(t *testing.T) {
	var err error = &PartialCompletionError{
		OrderID: "o1",
		Failed:  []LineFailure{{ProductID: "A", Quantity: 2}, {ProductID: "B", Quantity: 1}},
	}
	assert.ErrorIs(t, err, ErrPartialCompletion)
	assert.Equal(t, "order o1: stock not decremented for A, B", err.Error())

	var pc *PartialCompletionError
	assert.True(t, errors.As(err, &pc))
	assert.Len(t, pc.Failed, 2)
}

func TestValidation(t *testing.T) {
	err := Validation("price %q is not numeric", "abc")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), `"abc"`)
}
