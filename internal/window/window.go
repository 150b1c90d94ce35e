// Package window partitions the crawl history into calendar-month export
// windows and defines the file naming contract that ties each window to
// its downloaded export.
package window

import (
	"fmt"
	"iter"
	"time"
)

// Month is one contiguous calendar-month export unit.
// Start and End are inclusive dates at UTC midnight.
type Month struct {
	Start     time.Time
	End       time.Time
	Iteration int
}

// String returns "2024-05-01..2024-05-15 #121".
func (m Month) String() string {
	return fmt.Sprintf("%s..%s #%d", m.Start.Format(time.DateOnly), m.End.Format(time.DateOnly), m.Iteration)
}

// Label returns the human month name, e.g. "May 2024".
func (m Month) Label() string {
	return m.Start.Format("January 2006")
}

// Filename returns the deterministic target file name of the window.
func (m Month) Filename() string {
	return Filename(m.Iteration, m.Start.Year(), m.Start.Month())
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Span returns the default crawl span for now: from the first day of the
// month years before now, up to now.
func Span(now time.Time, years int) (start, end time.Time) {
	end = Day(now)
	// AddDate would normalize Feb 29 into March.
	start = time.Date(end.Year()-years, end.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// monthEnd returns the last day of d's month, clamped to limit.
func monthEnd(d, limit time.Time) time.Time {
	next := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	last := next.AddDate(0, 0, -1)
	if last.After(limit) {
		return limit
	}
	return last
}

// Generate returns the lazy sequence of month windows covering start up
// to end. Every range over the sequence restarts at iteration 1.
func Generate(start, end time.Time) iter.Seq[Month] {
	return func(yield func(Month) bool) {
		g := NewGenerator(start, end)
		for {
			m, ok := g.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Generator is the pull form of Generate.
type Generator struct {
	current   time.Time
	end       time.Time
	iteration int
}

// NewGenerator creates a Generator over start up to end.
func NewGenerator(start, end time.Time) *Generator {
	return &Generator{
		current:   Day(start),
		end:       Day(end),
		iteration: 1,
	}
}

// Next returns the next window, or false once the start date reaches the
// run end.
func (g *Generator) Next() (Month, bool) {
	if !g.current.Before(g.end) {
		return Month{}, false
	}

	m := Month{
		Start:     g.current,
		End:       monthEnd(g.current, g.end),
		Iteration: g.iteration,
	}

	g.current = m.End.AddDate(0, 0, 1)
	g.iteration++

	return m, true
}
