package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/msefunds/internal/ledger"
)

// newTestLedger creates a ledger with one good and one failed month.
func newTestLedger(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	led, err := ledger.Open(dir, ledger.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer led.Close()

	ctx := context.Background()
	apr := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	may := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	records := []ledger.WindowRecord{
		{Iteration: 1, Start: apr, End: apr.AddDate(0, 1, -1), Target: "mse-funds-data-1-2024-04.xls", State: "renamed", Attempts: 1},
		{Iteration: 2, Start: may, End: may.AddDate(0, 1, -1), Target: "mse-funds-data-2-2024-05.xls", State: "failed", Attempts: 3, Error: "download timed out"},
	}
	for _, rec := range records {
		if err := led.RecordWindow(ctx, rec); err != nil {
			t.Fatalf("failed to record window: %v", err)
		}
	}

	if err := led.RecordAssembly(ctx, ledger.AssemblyRecord{Output: "combined.tsv", FilesParsed: 1, Rows: 42, Digest: "ab12"}); err != nil {
		t.Fatalf("failed to record assembly: %v", err)
	}

	return dir
}

func runStatus(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	cmd := NewStatusCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

// TestRunStatusCmd tests the status command.
func TestRunStatusCmd(t *testing.T) {
	t.Parallel()

	dbDir := newTestLedger(t)

	t.Run("lists months and assemblies", func(t *testing.T) {
		t.Parallel()

		out, err := runStatus(t, "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Months (2):",
			"2024-04-01..2024-04-30",
			"download timed out",
			"Assemblies (1):",
			"combined.tsv",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("failed only", func(t *testing.T) {
		t.Parallel()

		out, err := runStatus(t, "--db-dir", dbDir, "--failed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Failed months (1):") {
			t.Errorf("expected one failed month\n%s", out)
		}
		if strings.Contains(out, "mse-funds-data-1-2024-04.xls") {
			t.Errorf("expected succeeded month to be hidden\n%s", out)
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		out, err := runStatus(t, "--db-dir", dbDir, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc statusJSON
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(doc.Windows) != 2 || doc.Windows[1].State != "failed" {
			t.Errorf("unexpected windows %+v", doc.Windows)
		}
		if len(doc.Assemblies) != 1 || doc.Assemblies[0].Rows != 42 {
			t.Errorf("unexpected assemblies %+v", doc.Assemblies)
		}
	})

	t.Run("missing history", func(t *testing.T) {
		t.Parallel()

		_, err := runStatus(t, "--db-dir", t.TempDir())
		if !errors.Is(err, ledger.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
