package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a referenced graph entity being absent
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeStore represents backend connectivity or transient storage failures
	ErrorTypeStore ErrorType = "store_unavailable"
	// ErrorTypeInput represents malformed caller input
	ErrorTypeInput ErrorType = "malformed_input"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// ErrEntityNotFound is returned when a referenced node is absent from the graph
type ErrEntityNotFound struct {
	*BaseError
	Kind string
	Key  string
}

func NewEntityNotFound(kind, key string) *ErrEntityNotFound {
	return &ErrEntityNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, key), nil),
		Kind:      kind,
		Key:       key,
	}
}

// ErrStoreUnavailable is returned when the graph backend fails
type ErrStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewStoreUnavailable(operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("store operation failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrMalformedInput is returned for caller input the engine cannot act on
type ErrMalformedInput struct {
	*BaseError
	Reason string
}

func NewMalformedInput(reason string) *ErrMalformedInput {
	return &ErrMalformedInput{
		BaseError: NewBaseError(ErrorTypeInput, reason, nil),
		Reason:    reason,
	}
}

// Helper functions

// IsNotFound reports whether err is an entity-not-found condition
func IsNotFound(err error) bool {
	var notFound *ErrEntityNotFound
	return errors.As(err, &notFound)
}

// IsMalformedInput reports whether err is a malformed-input condition
func IsMalformedInput(err error) bool {
	var malformed *ErrMalformedInput
	return errors.As(err, &malformed)
}

// IsRetryable reports whether an operation may succeed if retried.
// Only transient store failures qualify; absent entities and bad input do not.
func IsRetryable(err error) bool {
	var unavailable *ErrStoreUnavailable
	return errors.As(err, &unavailable)
}
