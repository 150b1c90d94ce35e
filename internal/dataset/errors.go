package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaDrift matches every SchemaDriftError via errors.Is.
var ErrSchemaDrift = errors.New("dataset schema drift")

// SchemaDriftError lists the expected columns missing from a dataset.
type SchemaDriftError struct {
	Missing []string
}

// Error implements error.
func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrSchemaDrift.
func (e *SchemaDriftError) Unwrap() error {
	return ErrSchemaDrift
}
