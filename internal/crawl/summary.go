package crawl

import (
	"time"

	"github.com/nao1215/msefunds/internal/window"
)

// Status is the outcome of one window.
type Status int

// Window outcomes.
const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusSkipped
)

// String returns the status as stored in the ledger.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "renamed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of one window.
type Outcome struct {
	Window   window.Month
	Target   string
	Status   Status
	Attempts int
	Err      error
}

// Summary aggregates the outcomes of a crawl.
type Summary struct {
	Outcomes []Outcome

	Succeeded int
	Failed    int
	Skipped   int

	// Interrupted is set when the run context was cancelled before every
	// window was processed.
	Interrupted bool

	Started  time.Time
	Finished time.Time
}

func (s *Summary) add(out Outcome) {
	s.Outcomes = append(s.Outcomes, out)
	switch out.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
}

// Total returns the number of processed windows.
func (s *Summary) Total() int {
	return len(s.Outcomes)
}

// FailedOutcomes returns the failed windows in crawl order.
func (s *Summary) FailedOutcomes() []Outcome {
	failed := make([]Outcome, 0, s.Failed)
	for _, out := range s.Outcomes {
		if out.Status == StatusFailed {
			failed = append(failed, out)
		}
	}
	return failed
}

// Elapsed returns the wall-clock duration of the crawl.
func (s *Summary) Elapsed() time.Duration {
	return s.Finished.Sub(s.Started)
}
