package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the activity store has no record of the user.
	ErrNotFound = errors.New("user activity not found")

	// ErrUnavailable is a transient dependency failure. It is propagated
	// as-is; retry policy belongs to the caller.
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrResourceExhausted means the activity store access pool was full
	// and the request was not admitted within its timeout.
	ErrResourceExhausted = errors.New("activity pool exhausted")
)

// ComputationError is what waiters on a shared recommendation computation
// observe when it fails. It carries the user id and the underlying cause
// so monitoring can tell transient from permanent failures.
type ComputationError struct {
	UserID uint64
	Cause  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("recommendation computation for user %d: %v", e.UserID, e.Cause)
}

func (e *ComputationError) Unwrap() error {
	return e.Cause
}
