package crawl

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/msefunds/internal/ledger"
	"github.com/nao1215/msefunds/internal/window"
)

// fakeExporter fails the windows whose iteration is in fail.
type fakeExporter struct {
	fail     map[int]bool
	exported []int

	// onExport runs after each export, e.g. to cancel the run.
	onExport func(w window.Month)
}

func (f *fakeExporter) Export(ctx context.Context, w window.Month) (*window.Task, error) {
	f.exported = append(f.exported, w.Iteration)
	if f.onExport != nil {
		f.onExport(w)
	}

	task := window.NewTask(w)
	task.Attempts = 1
	if f.fail[w.Iteration] {
		task.Attempts = 3
		task.State = window.Failed
		return task, errors.New("element not found")
	}
	if err := ctx.Err(); err != nil {
		return task, err
	}
	task.State = window.Renamed
	return task, nil
}

type fakeRecorder struct {
	records []ledger.WindowRecord
	err     error
}

func (f *fakeRecorder) RecordWindow(_ context.Context, rec ledger.WindowRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fiveMonths() iter.Seq[window.Month] {
	return window.Generate(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC),
	)
}

// TestRun tests the sequential crawl.
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("a failed window does not stop the crawl", func(t *testing.T) {
		t.Parallel()

		exporter := &fakeExporter{fail: map[int]bool{2: true}}
		recorder := &fakeRecorder{}
		o := New(exporter, WithRecorder(recorder), WithLogger(discardLogger()))

		summary := o.Run(context.Background(), fiveMonths())

		if summary.Total() != 5 {
			t.Fatalf("expected 5 windows, got %d", summary.Total())
		}
		if summary.Succeeded != 4 || summary.Failed != 1 {
			t.Errorf("expected 4 succeeded and 1 failed, got %d and %d", summary.Succeeded, summary.Failed)
		}
		failed := summary.FailedOutcomes()
		if len(failed) != 1 || failed[0].Window.Iteration != 2 || failed[0].Attempts != 3 {
			t.Errorf("unexpected failed outcomes %+v", failed)
		}
		for i, it := range exporter.exported {
			if it != i+1 {
				t.Errorf("expected windows in order, got %v", exporter.exported)
				break
			}
		}
		if len(recorder.records) != 5 {
			t.Fatalf("expected 5 records, got %d", len(recorder.records))
		}
		if recorder.records[1].State != "failed" || recorder.records[1].Error != "element not found" {
			t.Errorf("unexpected failed record %+v", recorder.records[1])
		}
		if recorder.records[0].Target != "mse-funds-data-1-2024-01.xls" {
			t.Errorf("unexpected target %q", recorder.records[0].Target)
		}
	})

	t.Run("recorder errors are not fatal", func(t *testing.T) {
		t.Parallel()

		exporter := &fakeExporter{}
		recorder := &fakeRecorder{err: errors.New("database is locked")}
		o := New(exporter, WithRecorder(recorder), WithLogger(discardLogger()))

		summary := o.Run(context.Background(), fiveMonths())
		if summary.Succeeded != 5 {
			t.Errorf("expected 5 succeeded, got %d", summary.Succeeded)
		}
	})

	t.Run("cancellation is observed between windows only", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		exporter := &fakeExporter{}
		exporter.onExport = func(w window.Month) {
			if w.Iteration == 2 {
				cancel()
			}
		}
		o := New(exporter, WithLogger(discardLogger()))

		summary := o.Run(ctx, fiveMonths())

		if !summary.Interrupted {
			t.Error("expected interrupted summary")
		}
		if summary.Total() != 2 {
			t.Fatalf("expected 2 processed windows, got %d", summary.Total())
		}
		// The window in flight when the signal arrived still completes.
		if summary.Outcomes[1].Status != StatusSucceeded {
			t.Errorf("expected in-flight window to succeed, got %s", summary.Outcomes[1].Status)
		}
	})

	t.Run("resume skips existing targets", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := filepath.Join(dir, "mse-funds-data-3-2024-03.xls")
		if err := os.WriteFile(existing, []byte("<table></table>"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		exporter := &fakeExporter{}
		recorder := &fakeRecorder{}
		o := New(exporter, WithResume(dir), WithRecorder(recorder), WithLogger(discardLogger()))

		summary := o.Run(context.Background(), fiveMonths())

		if summary.Skipped != 1 || summary.Succeeded != 4 {
			t.Errorf("expected 1 skipped and 4 succeeded, got %d and %d", summary.Skipped, summary.Succeeded)
		}
		if len(recorder.records) != 4 {
			t.Fatalf("expected 4 records, got %d", len(recorder.records))
		}
		for _, rec := range recorder.records {
			if rec.Iteration == 3 || rec.State == "skipped" {
				t.Errorf("skipped window must not be recorded, got %+v", rec)
			}
		}
		for _, it := range exporter.exported {
			if it == 3 {
				t.Error("skipped window must not be exported")
			}
		}
	})

	t.Run("empty sequence", func(t *testing.T) {
		t.Parallel()

		o := New(&fakeExporter{}, WithLogger(discardLogger()))
		summary := o.Run(context.Background(), func(func(window.Month) bool) {})
		if summary.Total() != 0 || summary.Interrupted {
			t.Errorf("unexpected summary %+v", summary)
		}
	})
}

// TestStatusString tests the ledger names of outcomes.
func TestStatusString(t *testing.T) {
	t.Parallel()

	tests := map[Status]string{
		StatusSucceeded: "renamed",
		StatusFailed:    "failed",
		StatusSkipped:   "skipped",
		Status(9):       "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
