package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the backflow library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidDemand indicates a non-positive Request(n) under the strict policy
	ErrInvalidDemand = errors.New("invalid demand")

	// ErrResourceOpen indicates the backing resource could not be opened
	ErrResourceOpen = errors.New("resource open failed")

	// ErrResourceRead indicates a mid-stream failure while reading the backing resource
	ErrResourceRead = errors.New("resource read failed")

	// ErrProtocolViolation indicates an internal contract breach, such as a
	// second terminal signal. It always points at a bug.
	ErrProtocolViolation = errors.New("protocol violation")
)

// ValidationError describes a rejected value. Kind selects the sentinel it
// matches with errors.Is; it defaults to ErrInvalidConfiguration.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
	Kind   error
}

// NewValidationError creates a ValidationError matching ErrInvalidConfiguration.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewDemandError creates a ValidationError for a rejected Request(n).
func NewDemandError(module string, n int64) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  "n",
		Value:  n,
		Reason: "demand must be positive",
		Hint:   "request at least one item",
		Kind:   ErrInvalidDemand,
	}
}

// WithHint sets the hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	if e.Kind != nil {
		return e.Kind
	}
	return ErrInvalidConfiguration
}

// ResourceError reports a failure of the backing resource. Err is the
// original cause; CloseErr records a best-effort close that failed while
// Err was being propagated and never replaces it.
type ResourceError struct {
	Op       string // "open", "read" or "close"
	Locator  string
	Err      error
	CloseErr error
}

// NewResourceError creates a ResourceError for the given operation.
func NewResourceError(op, locator string, err error) *ResourceError {
	return &ResourceError{Op: op, Locator: locator, Err: err}
}

// WithCloseErr records a secondary close failure and returns the same error.
func (e *ResourceError) WithCloseErr(err error) *ResourceError {
	e.CloseErr = err
	return e
}

func (e *ResourceError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Locator, e.Err)
	if e.CloseErr != nil {
		msg += fmt.Sprintf(" (close also failed: %v)", e.CloseErr)
	}
	return msg
}

// Unwrap exposes both the sentinel for Op and the original cause.
func (e *ResourceError) Unwrap() []error {
	switch e.Op {
	case "open":
		return []error{ErrResourceOpen, e.Err}
	case "read":
		return []error{ErrResourceRead, e.Err}
	default:
		return []error{e.Err}
	}
}

// ProtocolViolationError is the panic value raised when the demand engine
// catches itself breaking the subscription contract.
type ProtocolViolationError struct {
	Subscription string
	Detail       string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("subscription %s: %s", e.Subscription, e.Detail)
}

func (e *ProtocolViolationError) Unwrap() error {
	return ErrProtocolViolation
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsResourceFailure reports whether err came from the backing resource.
func IsResourceFailure(err error) bool {
	return errors.Is(err, ErrResourceOpen) || errors.Is(err, ErrResourceRead)
}
