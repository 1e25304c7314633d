package errors

import (
	"errors"
	"fmt"
)

// SetupError indicates a failure before any resource was processed:
// missing credentials, unreachable prerequisite, bad profile. Fatal.
type SetupError struct {
	Stage string
	Err   error
}

// NewSetupError constructs a SetupError for the given setup stage.
func NewSetupError(stage string, err error) error {
	return &SetupError{Stage: stage, Err: err}
}

func (e *SetupError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stage != "" {
		return fmt.Sprintf("setup error (%s): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("setup error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *SetupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures a rejected parameter or option struct.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TransportError wraps a failed remote call. Fatal when raised during
// enumeration; recoverable per item during reconciliation.
type TransportError struct {
	Operation string
	Err       error
}

// NewTransportError constructs a TransportError for a remote operation.
func NewTransportError(operation string, err error) error {
	return &TransportError{Operation: operation, Err: err}
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Operation != "" {
		return fmt.Sprintf("transport error on %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsFatal reports whether err should abort the run and set a non-zero
// exit code. Per-item transport errors are handled at the call site and
// never reach this check.
func IsFatal(err error) bool {
	var setupErr *SetupError
	var validationErr *ValidationError
	var transportErr *TransportError
	return errors.As(err, &setupErr) ||
		errors.As(err, &validationErr) ||
		errors.As(err, &transportErr)
}
