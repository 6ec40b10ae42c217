package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrLastOwner  = errors.New("cannot remove or demote the room owner")
)

// WIPLimitError reports a column whose WIP limit would be exceeded by
// creating, moving, or restoring a card. It unwraps to ErrConflict so
// callers can handle it like any other conflict.
type WIPLimitError struct {
	ColumnTitle string
	Limit       int
}

func (e *WIPLimitError) Error() string {
	return fmt.Sprintf("WIP limit (%d) reached for column %q: move or complete an existing card first", e.Limit, e.ColumnTitle)
}

func (e *WIPLimitError) Unwrap() error { return ErrConflict }

// ValidationError carries a field-level message and unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a field-scoped validation error.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
