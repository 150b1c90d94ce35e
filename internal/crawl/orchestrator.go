package crawl

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/msefunds/internal/ledger"
	"github.com/nao1215/msefunds/internal/window"
)

// Exporter exports one window and claims its file.
// session.Session implements it.
type Exporter interface {
	Export(ctx context.Context, w window.Month) (*window.Task, error)
}

// Recorder persists window outcomes. ledger.Ledger implements it.
type Recorder interface {
	RecordWindow(ctx context.Context, rec ledger.WindowRecord) error
}

// Orchestrator walks the windows of a crawl.
type Orchestrator struct {
	exporter Exporter
	recorder Recorder

	// resumeDir enables resume: windows whose target already exists in it
	// are skipped.
	resumeDir string

	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder records every outcome in r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithResume skips windows whose target file is already present in dir.
func WithResume(dir string) Option {
	return func(o *Orchestrator) {
		o.resumeDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator around exporter.
func New(exporter Exporter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		exporter: exporter,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run exports every window of windows in order and returns the summary.
//
// Cancellation of ctx is observed between windows: the window in flight
// runs to completion (or to the end of its retry budget) first. A
// cancelled run is marked Interrupted.
func (o *Orchestrator) Run(ctx context.Context, windows iter.Seq[window.Month]) *Summary {
	summary := &Summary{Started: o.now()}

	o.logger.Info("starting crawl")

	for w := range windows {
		if ctx.Err() != nil {
			summary.Interrupted = true
			o.logger.Warn("crawl interrupted", "next", w.Label(), "error", ctx.Err())
			break
		}

		outcome := o.runWindow(ctx, w)
		summary.add(outcome)
		o.record(ctx, outcome)
	}

	summary.Finished = o.now()

	o.logger.Info("crawl complete",
		"windows", summary.Total(),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed(),
	)

	return summary
}

func (o *Orchestrator) runWindow(ctx context.Context, w window.Month) Outcome {
	o.logger.Info("processing month", "month", w.Label(), "iteration", w.Iteration)

	if o.exists(w.Filename()) {
		o.logger.Info("skipping month, file already present", "month", w.Label(), "target", w.Filename())
		return Outcome{Window: w, Target: w.Filename(), Status: StatusSkipped}
	}

	// The in-flight window is not interrupted by cancellation.
	task, err := o.exporter.Export(context.WithoutCancel(ctx), w)
	if err != nil {
		o.logger.Warn("failed to download data", "month", w.Label(), "error", err)
		out := Outcome{Window: w, Target: w.Filename(), Status: StatusFailed, Err: err}
		if task != nil {
			out.Attempts = task.Attempts
		}
		return out
	}

	o.logger.Info("successfully processed month", "month", w.Label())
	return Outcome{Window: w, Target: task.TargetFilename, Status: StatusSucceeded, Attempts: task.Attempts}
}

func (o *Orchestrator) exists(name string) bool {
	if o.resumeDir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(o.resumeDir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			o.logger.Warn("failed to check existing file", "target", name, "error", err)
		}
		return false
	}
	return info.Mode().IsRegular()
}

// record writes the outcome to the recorder; failures are only logged.
func (o *Orchestrator) record(ctx context.Context, out Outcome) {
	// A skip did no work; the ledger keeps the attempt that made the file.
	if o.recorder == nil || out.Status == StatusSkipped {
		return
	}

	rec := ledger.WindowRecord{
		Iteration: out.Window.Iteration,
		Start:     out.Window.Start,
		End:       out.Window.End,
		Target:    out.Target,
		State:     out.Status.String(),
		Attempts:  out.Attempts,
	}
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}

	if err := o.recorder.RecordWindow(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Warn("failed to record window outcome", "target", out.Target, "error", err)
	}
}
