package domain

import "fmt"

// ValidationError reports malformed input: a bad code pattern, a missing
// required field, or a duplicate value. Recoverable by the caller, never
// retried automatically.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) ValidationError {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports a wrong role or wrong owner. Never retried.
type AuthorizationError struct {
	Message string
}

func (e AuthorizationError) Error() string { return e.Message }

// Authorizationf builds an AuthorizationError from a format string.
func Authorizationf(format string, args ...any) AuthorizationError {
	return AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a dangling reference to a nonexistent entity.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StateConflictError reports a precondition violated because state moved
// between read and write. Surfaced to the caller as a refresh-and-retry
// condition; the core never retries on the caller's behalf.
type StateConflictError struct {
	Message string
}

func (e StateConflictError) Error() string { return e.Message }

// Conflictf builds a StateConflictError from a format string.
func Conflictf(format string, args ...any) StateConflictError {
	return StateConflictError{Message: fmt.Sprintf(format, args...)}
}
