package assemble

import "errors"

var (
	// ErrNoData is returned when not a single export file could be parsed.
	// No artifact is written.
	ErrNoData = errors.New("no data was successfully processed")

	// ErrTooManyFailures is returned when more files failed to parse than
	// the configured threshold allows. No artifact is written.
	ErrTooManyFailures = errors.New("too many export files failed to parse")

	// ErrNoTable is returned for a file without a table element.
	ErrNoTable = errors.New("no table found in the HTML content")

	// ErrEmptyTable is returned for a table without data rows.
	ErrEmptyTable = errors.New("table has no data rows")
)
