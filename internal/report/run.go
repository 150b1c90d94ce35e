package report

import (
	"time"

	"github.com/nao1215/msefunds/internal/assemble"
	"github.com/nao1215/msefunds/internal/crawl"
	"github.com/nao1215/msefunds/internal/dataset"
)

// Mode is the operator's choice for a run.
type Mode string

// Run modes.
const (
	// ModeCrawl downloads fresh exports and then assembles them.
	ModeCrawl Mode = "crawl"

	// ModeAssemble assembles the exports already on disk.
	ModeAssemble Mode = "assemble"
)

// Run is everything a report needs about one run.
type Run struct {
	Mode     Mode
	Started  time.Time
	Finished time.Time

	// Crawl is nil in ModeAssemble.
	Crawl *crawl.Summary

	// Assembly is nil when assembly never started.
	Assembly    *assemble.Result
	AssemblyErr error

	// Artifact is nil when no dataset was written.
	Artifact *assemble.Artifact

	Coverage  []dataset.FundCoverage
	SchemaErr error
}

// Succeeded reports whether the run produced a dataset.
func (r *Run) Succeeded() bool {
	return r.AssemblyErr == nil && r.Artifact != nil
}

// Rows returns the number of rows in the merged dataset.
func (r *Run) Rows() int {
	if r.Assembly == nil || r.Assembly.Dataset == nil {
		return 0
	}
	return r.Assembly.Dataset.Len()
}

// FailedFiles returns the number of export files that could not be parsed.
func (r *Run) FailedFiles() int {
	if r.Assembly == nil {
		return 0
	}
	return len(r.Assembly.Failed())
}

// Elapsed returns the wall-clock duration of the run.
func (r *Run) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
