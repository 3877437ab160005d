// ABOUTME: Shared error values for the records layer
// ABOUTME: ValidationError carries per-field messages and unwraps to a sentinel

package records

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a looked-up entity does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is the default cause of a ValidationError
var ErrInvalidInput = errors.New("invalid input")

// ErrAlreadyBootstrapped is returned when setup runs while a headmaster exists
var ErrAlreadyBootstrapped = errors.New("school already set up")

// FieldError describes a problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

// NewValidationError builds a ValidationError. A nil err defaults to ErrInvalidInput.
func NewValidationError(err error, fields ...FieldError) error {
	if err == nil {
		err = ErrInvalidInput
	}
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return e.Err.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
