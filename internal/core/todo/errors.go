package todo

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when input is rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an entity id does not exist and the
	// operation cannot be treated as a no-op.
	ErrNotFound = errors.New("not found")
	// ErrDefaultList is returned when attempting to remove the default list.
	ErrDefaultList = errors.New("the default list cannot be removed")
	// ErrListNotFound is returned when a todo references a list that does not exist.
	ErrListNotFound = errors.New("list not found")
	// ErrPersist is returned when a collection could not be written.
	ErrPersist = errors.New("persist failed")
	// ErrPartialConversion is returned when an idea was copied into a todo
	// but could not be removed afterwards.
	ErrPartialConversion = errors.New("idea converted but not removed")
)

// Invalid wraps err as a validation failure. err is typically a
// criterio.FieldErrors value, which stays reachable through errors.As.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// ConversionError reports an idea conversion whose todo was written but whose
// source idea is still present.
type ConversionError struct {
	TodoID string
	IdeaID string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("idea %s converted to todo %s but not removed: %v", e.IdeaID, e.TodoID, e.Err)
}

// Unwrap exposes both ErrPartialConversion and the underlying write error.
func (e *ConversionError) Unwrap() []error {
	return []error{ErrPartialConversion, e.Err}
}
