package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/msefunds/internal/config"
	"github.com/nao1215/msefunds/internal/ledger"
	mlog "github.com/nao1215/msefunds/internal/log"
)

// NewStatusCmd creates the status command.
// This command shows the run history stored in the ledger database.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the crawl and assembly history",
		Long: `Status displays what earlier runs recorded in the history database:
the latest outcome of every month and the most recent assemblies.

Use it to see which months are still missing before running
'msefunds crawl --resume'.

Examples:
  # Show every month and the last 5 assemblies
  msefunds status

  # Show only the months whose last attempt failed
  msefunds status --failed

  # Output the history in JSON format
  msefunds status --json`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Directory holding the history database (default: XDG data directory)")
	cmd.Flags().BoolP("failed", "f", false,
		"List only months whose latest attempt failed")
	cmd.Flags().IntP("limit", "n", 5,
		"Number of assemblies to show (0 for all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the history in JSON format")

	return cmd
}

// statusJSON is the document printed by status --json.
type statusJSON struct {
	Windows    []windowJSON   `json:"windows"`
	Assemblies []assemblyJSON `json:"assemblies"`
}

type windowJSON struct {
	Iteration int    `json:"iteration"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Target    string `json:"target"`
	State     string `json:"state"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
	Recorded  string `json:"recorded"`
}

type assemblyJSON struct {
	ID          int64    `json:"id"`
	Output      string   `json:"output"`
	FilesParsed int      `json:"filesParsed"`
	FilesFailed int      `json:"filesFailed"`
	Rows        int      `json:"rows"`
	Duplicates  int      `json:"duplicates"`
	Digest      string   `json:"sha3_256,omitempty"`
	FailedFiles []string `json:"failedFiles,omitempty"`
	Recorded    string   `json:"recorded"`
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	failedOnly, err := cmd.Flags().GetBool("failed")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	led, err := ledger.Open(dbDir, ledger.Options{CreateIfNotExists: false})
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("no run history yet (%w); run 'msefunds crawl' first", err)
		}
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer led.Close()

	logger := mlog.NewQuietLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	logger.Debug("reading run history", "path", led.Path())

	ctx := context.Background()

	var windows []ledger.WindowRecord
	if failedOnly {
		windows, err = led.FailedWindows(ctx)
	} else {
		windows, err = led.Windows(ctx)
	}
	if err != nil {
		return err
	}

	assemblies, err := led.Assemblies(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printStatusJSON(out, windows, assemblies)
	}

	printWindows(out, windows, failedOnly)
	printAssemblies(out, assemblies)
	return nil
}

// printWindows prints the window history as a text table.
func printWindows(out io.Writer, windows []ledger.WindowRecord, failedOnly bool) {
	title := "Months"
	if failedOnly {
		title = "Failed months"
	}

	if len(windows) == 0 {
		fmt.Fprintf(out, "%s: none recorded\n\n", title)
		return
	}

	fmt.Fprintf(out, "%s (%d):\n\n", title, len(windows))
	fmt.Fprintf(out, "  %-4s  %-23s  %-10s  %-8s  %s\n", "#", "Range", "State", "Attempts", "Target")
	fmt.Fprintf(out, "  %s\n", strings.Repeat("-", 80))

	for _, w := range windows {
		fmt.Fprintf(out, "  %-4d  %-23s  %-10s  %-8d  %s\n",
			w.Iteration,
			w.Start.Format(time.DateOnly)+".."+w.End.Format(time.DateOnly),
			w.State,
			w.Attempts,
			w.Target,
		)
		if w.Error != "" {
			fmt.Fprintf(out, "        %s\n", w.Error)
		}
	}
	fmt.Fprintln(out)
}

// printAssemblies prints the assembly history as a text table.
func printAssemblies(out io.Writer, assemblies []ledger.AssemblyRecord) {
	if len(assemblies) == 0 {
		fmt.Fprintln(out, "Assemblies: none recorded")
		return
	}

	fmt.Fprintf(out, "Assemblies (%d):\n\n", len(assemblies))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %-7s  %-8s  %s\n", "ID", "Date", "Parsed", "Failed", "Rows", "Output")
	fmt.Fprintf(out, "  %s\n", strings.Repeat("-", 80))

	for _, a := range assemblies {
		output := a.Output
		if output == "" {
			output = "(not written)"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-7d  %-7d  %-8d  %s\n",
			a.ID,
			a.Timestamp.Format(time.DateTime),
			a.FilesParsed,
			a.FilesFailed,
			a.Rows,
			output,
		)
	}
}

func printStatusJSON(out io.Writer, windows []ledger.WindowRecord, assemblies []ledger.AssemblyRecord) error {
	doc := statusJSON{
		Windows:    make([]windowJSON, 0, len(windows)),
		Assemblies: make([]assemblyJSON, 0, len(assemblies)),
	}

	for _, w := range windows {
		doc.Windows = append(doc.Windows, windowJSON{
			Iteration: w.Iteration,
			Start:     w.Start.Format(time.DateOnly),
			End:       w.End.Format(time.DateOnly),
			Target:    w.Target,
			State:     w.State,
			Attempts:  w.Attempts,
			Error:     w.Error,
			Recorded:  w.Timestamp.Format(time.RFC3339),
		})
	}

	for _, a := range assemblies {
		doc.Assemblies = append(doc.Assemblies, assemblyJSON{
			ID:          a.ID,
			Output:      a.Output,
			FilesParsed: a.FilesParsed,
			FilesFailed: a.FilesFailed,
			Rows:        a.Rows,
			Duplicates:  a.Duplicates,
			Digest:      a.Digest,
			FailedFiles: a.FailedFiles,
			Recorded:    a.Timestamp.Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(data))
	return nil
}
