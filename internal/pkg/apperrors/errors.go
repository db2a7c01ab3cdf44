package apperrors

import (
	"errors"
	"fmt"
)

// Caller errors. Handlers answer these with a 4xx status.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrConflict        = errors.New("resource conflict")
)

// System errors.
var (
	ErrDatabase       = errors.New("database error")
	ErrInternalServer = errors.New("internal server error")
)

var clientErrors = []error{ErrValidation, ErrInvalidArgument, ErrNotFound, ErrConflict, ErrAlreadyExists}

// ValidationError names the request field that broke a rule. Field is empty
// when the whole body is at fault.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// FieldOf returns the offending field of a validation failure anywhere in
// err's chain.
func FieldOf(err error) (string, bool) {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		return "", false
	}
	return vErr.Field, true
}

// IsClientError reports whether err is caused by the caller rather than the system.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
