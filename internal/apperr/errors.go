// Package apperr holds the error kinds shared by the store, inventory and
// order packages. Callers match them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrPartialCompletion = errors.New("partial completion")
)

// Validation wraps a message as an ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Unavailable wraps a store failure. Errors already classified as
// ErrNotFound or ErrStoreUnavailable are returned as is.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// LineFailure names a single order line whose stock decrement did not apply.
type LineFailure struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// PartialCompletionError reports a completion whose status write succeeded
// while one or more stock decrements failed. Applied decrements are kept.
type PartialCompletionError struct {
	OrderID string
	Failed  []LineFailure
}

func (e *PartialCompletionError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		ids = append(ids, f.ProductID)
	}
	return fmt.Sprintf("order %s: stock not decremented for %s", e.OrderID, strings.Join(ids, ", "))
}

func (e *PartialCompletionError) Is(target error) bool { return target == ErrPartialCompletion }
