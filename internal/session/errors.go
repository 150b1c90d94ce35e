package session

import (
	"errors"
	"fmt"

	"github.com/nao1215/msefunds/internal/browser"
)

var (
	// ErrNavigate is returned when the portal page could not be loaded.
	ErrNavigate = errors.New("failed to load portal page")

	// ErrNotClaimed is returned when no export file could be claimed for
	// the window within the watcher's maximum wait.
	ErrNotClaimed = errors.New("export file was not claimed")
)

// StepError describes the workflow step that failed an attempt.
type StepError struct {
	// Step is a short name such as "from date" or "export".
	Step string

	// Selector is the element the step was acting on.
	Selector browser.Selector

	// Err is the driver error.
	Err error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Selector, e.Err)
}

// Unwrap returns the driver error.
func (e *StepError) Unwrap() error {
	return e.Err
}
