package report

import (
	"io"
)

// Writer renders a Run to some destination.
type Writer interface {
	// Write renders run and returns the number of bytes written.
	Write(run *Run) (int, error)
}

// MultiWriter writes the same Run to several Writers, e.g. the terminal
// and a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// dateLayout is how window dates are printed.
const dateLayout = "2006-01-02"

// errText returns err's message or "-".
func errText(err error) string {
	if err == nil {
		return "-"
	}
	return err.Error()
}
