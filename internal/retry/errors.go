package retry

import (
	"errors"
	"fmt"
)

// ErrOperationFailed matches every OperationFailedError via errors.Is.
var ErrOperationFailed = errors.New("operation failed")

// OperationFailedError is returned when an operation exhausted its attempts.
// It unwraps to both ErrOperationFailed and the last underlying error.
type OperationFailedError struct {
	// Name identifies the operation in logs.
	Name string

	// Attempts is the number of attempts actually made.
	Attempts int

	// Err is the error returned by the last attempt.
	Err error
}

// Error implements error.
func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("%s: failed after %d attempt(s): %v", e.Name, e.Attempts, e.Err)
}

// Unwrap returns the sentinel and the last underlying error.
func (e *OperationFailedError) Unwrap() []error {
	return []error{ErrOperationFailed, e.Err}
}
