package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrIDMismatch   = errors.New("id does not match")
	ErrAlreadyOwned = errors.New("book already owned")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrFormat       = errors.New("unparsable book metadata")
	ErrTransport    = errors.New("book metadata provider unavailable")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string `json:"fields"`
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
