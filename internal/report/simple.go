package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/msefunds/internal/crawl"
)

// SimpleWriter outputs a plain text run summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every window, not only the failed ones.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every window outcome.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeCrawl(&sb, run)
	w.writeAssembly(&sb, run)
	w.writeFunds(&sb, run)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *Run) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       MSE FUND DATA RUN\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Mode:     %s\n", run.Mode)
	fmt.Fprintf(sb, "Started:  %s\n", run.Started.Format("2006-01-02 15:04:05 MST"))
	if d := run.Elapsed(); d > 0 {
		fmt.Fprintf(sb, "Duration: %s\n", d.Round(time.Second))
	}

	if run.Succeeded() {
		sb.WriteString("Status:   Complete\n")
	} else {
		fmt.Fprintf(sb, "Status:   FAILED - %s\n", errText(run.AssemblyErr))
	}
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeCrawl(sb *strings.Builder, run *Run) {
	s := run.Crawl
	if s == nil {
		return
	}

	section(sb, "CRAWL")

	fmt.Fprintf(sb, "  Windows:   %d\n", s.Total())
	fmt.Fprintf(sb, "  Succeeded: %d\n", s.Succeeded)
	fmt.Fprintf(sb, "  Failed:    %d\n", s.Failed)
	fmt.Fprintf(sb, "  Skipped:   %d\n", s.Skipped)
	if s.Interrupted {
		sb.WriteString("  Interrupted before the last window\n")
	}
	sb.WriteString("\n")

	outcomes := s.FailedOutcomes()
	if w.verbose {
		outcomes = s.Outcomes
	}
	for _, out := range outcomes {
		fmt.Fprintf(sb, "  [%s] %s (%s..%s) %s",
			statusMark(out.Status),
			out.Window.Label(),
			out.Window.Start.Format(dateLayout),
			out.Window.End.Format(dateLayout),
			out.Target,
		)
		if out.Err != nil {
			fmt.Fprintf(sb, " after %d attempt(s): %v", out.Attempts, out.Err)
		}
		sb.WriteString("\n")
	}
	if len(outcomes) > 0 {
		sb.WriteString("\n")
	}
}

func statusMark(s crawl.Status) string {
	switch s {
	case crawl.StatusSucceeded:
		return "+"
	case crawl.StatusSkipped:
		return "="
	default:
		return "!"
	}
}

func (w *SimpleWriter) writeAssembly(sb *strings.Builder, run *Run) {
	section(sb, "ASSEMBLY")

	a := run.Assembly
	if a == nil {
		fmt.Fprintf(sb, "  Not assembled: %s\n\n", errText(run.AssemblyErr))
		return
	}

	fmt.Fprintf(sb, "  Files:      %d\n", len(a.Files))
	fmt.Fprintf(sb, "  Parsed:     %d\n", a.Parsed())
	fmt.Fprintf(sb, "  Failed:     %d\n", len(a.Failed()))
	fmt.Fprintf(sb, "  Rows:       %d\n", run.Rows())
	fmt.Fprintf(sb, "  Duplicates: %d\n", a.Duplicates)

	if art := run.Artifact; art != nil {
		fmt.Fprintf(sb, "  Output:     %s (%d bytes)\n", art.Path, art.Bytes)
		fmt.Fprintf(sb, "  SHA3-256:   %s\n", art.Digest)
	}
	sb.WriteString("\n")

	for _, f := range a.Failed() {
		fmt.Fprintf(sb, "  [!] %s (%d bytes): %v\n", f.Ref.Name, f.Size, f.Err)
	}
	if len(a.Failed()) > 0 {
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFunds(sb *strings.Builder, run *Run) {
	if len(run.Coverage) == 0 && run.SchemaErr == nil {
		return
	}

	section(sb, "FUNDS")

	if run.SchemaErr != nil {
		fmt.Fprintf(sb, "  WARNING: %v\n\n", run.SchemaErr)
	}

	for _, c := range run.Coverage {
		price := "-"
		if c.HasPrice {
			price = c.LastPrice.String()
		}
		fmt.Fprintf(sb, "  %-50s %6d rows  %s..%s  last %s\n",
			c.Fund, c.Rows, c.FirstDate, c.LastDate, price)
	}
	if len(run.Coverage) > 0 {
		sb.WriteString("\n")
	}
}
