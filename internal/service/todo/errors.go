package todo

import (
	"errors"
	"fmt"
)

// Service errors
var (
	ErrNotFound     = errors.New("task not found")
	ErrTagNotFound  = errors.New("tag not found")
	ErrTagExists    = errors.New("tag with this name already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports a rejected input field. It matches ErrInvalidInput
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, msg string, value any) error {
	return &ValidationError{Field: field, Message: msg, Value: value}
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTagNotFound):
		return "not_found"
	case errors.Is(err, ErrTagExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal_error"
	}
}
