package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds shared by every layer. Transports map them to wire codes;
// anything else is reported as internal.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrConflict is a write against state that changed underneath it,
	// such as a stale base revision or a duplicate name.
	ErrConflict = errors.New("conflict")

	// ErrTransient marks store failures that may succeed when repeated.
	ErrTransient = errors.New("transient store failure")

	// ErrCommitUncertain means the commit was sent but its outcome is unknown.
	ErrCommitUncertain = errors.New("commit outcome unknown")
)

// IsRetryable reports whether err may be repeated safely. A commit with an
// unknown outcome is not, even when the cause was transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) && !errors.Is(err, ErrCommitUncertain)
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of one request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	fields := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		fields[i] = fe.Field
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message returns the first message recorded for field.
func (e *ValidationError) Message(field string) (string, bool) {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NewValidationErrors wraps errs, or returns nil when there are none.
func NewValidationErrors(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
