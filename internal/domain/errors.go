package domain

import "fmt"

// ValidationError reports a structural invariant violation, such as a bridge
// referencing a region that does not exist. Operations that return it leave
// previous state untouched.
type ValidationError struct {
	Reason string
}

// NewValidationError creates a validation error
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NotFoundError reports an update targeting an unknown entity. Out-of-order
// delivery makes these expected; callers log and drop them.
type NotFoundError struct {
	Kind string
	ID   string
}

// NewNotFoundError creates a not-found error for an entity kind and id
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// TransportError wraps a network failure on a fetch or post. The next
// scheduled attempt is the recovery mechanism; these never surface as
// user-facing blocking errors.
type TransportError struct {
	Op  string
	Err error
}

// NewTransportError wraps err as a transport failure for the given operation
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
