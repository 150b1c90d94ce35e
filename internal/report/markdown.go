package report

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/msefunds/internal/assemble"
	"github.com/nao1215/msefunds/internal/crawl"
)

// MarkdownWriter outputs a run report in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeCrawl(md, run)
	w.writeAssembly(md, run)
	w.writeFunds(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *Run) {
	md.H1("MSE Fund Data Run")
	md.PlainText("")

	rows := [][]string{
		{"Mode", string(run.Mode)},
		{"Started", run.Started.Format("2006-01-02 15:04:05 MST")},
	}
	if d := run.Elapsed(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Second).String()})
	}
	rows = append(rows, []string{"Status", statusText(run)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, run)
}

func statusText(run *Run) string {
	if run.Succeeded() {
		return "✅ Complete"
	}
	return "❌ Failed - " + errText(run.AssemblyErr)
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *Run) {
	switch {
	case errors.Is(run.AssemblyErr, assemble.ErrNoData):
		md.Caution("No export file could be parsed. No dataset was written.")
	case errors.Is(run.AssemblyErr, assemble.ErrTooManyFailures):
		md.Cautionf("Too many export files failed to parse (%d). No dataset was written.", run.FailedFiles())
	case run.AssemblyErr != nil:
		md.Cautionf("Assembly failed: %v", run.AssemblyErr)
	case run.SchemaErr != nil:
		md.Warningf("The dataset no longer matches the expected columns: %v", run.SchemaErr)
	case run.Crawl != nil && run.Crawl.Failed > 0:
		md.Warningf("%d month(s) could not be downloaded. The dataset has gaps.", run.Crawl.Failed)
	case run.Crawl != nil && run.Crawl.Interrupted:
		md.Importantf("The crawl was interrupted after %d month(s).", run.Crawl.Total())
	default:
		md.Tip("Every month was downloaded and every file was parsed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCrawl(md *markdown.Markdown, run *Run) {
	s := run.Crawl
	if s == nil {
		return
	}

	md.H2("Crawl")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Windows"},
		Rows: [][]string{
			{"✅ Downloaded", strconv.Itoa(s.Succeeded)},
			{"❌ Failed", strconv.Itoa(s.Failed)},
			{"⏭️ Skipped", strconv.Itoa(s.Skipped)},
			{"**Total**", "**" + strconv.Itoa(s.Total()) + "**"},
		},
	})
	md.PlainText("")

	if s.Total() > 0 {
		w.writePieChart(md, s)
	}

	failed := s.FailedOutcomes()
	if len(failed) == 0 {
		return
	}

	md.H3("Failed months")
	md.PlainText("")

	rows := make([][]string, len(failed))
	for i, out := range failed {
		rows[i] = []string{
			strconv.Itoa(out.Window.Iteration),
			out.Window.Label(),
			out.Window.Start.Format(dateLayout) + " .. " + out.Window.End.Format(dateLayout),
			strconv.Itoa(out.Attempts),
			truncateString(errText(out.Err), 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Month", "Range", "Attempts", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *crawl.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Window Outcomes"),
		piechart.WithShowData(true),
	)

	if s.Succeeded > 0 {
		chart.LabelAndIntValue("Downloaded", uint64(s.Succeeded)) //nolint:gosec // counts are never negative
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.Failed)) //nolint:gosec // counts are never negative
	}
	if s.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(s.Skipped)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAssembly(md *markdown.Markdown, run *Run) {
	md.H2("Assembly")
	md.PlainText("")

	a := run.Assembly
	if a == nil {
		md.PlainTextf("Not assembled: %s", errText(run.AssemblyErr))
		md.PlainText("")
		return
	}

	rows := [][]string{
		{"Files found", strconv.Itoa(len(a.Files))},
		{"Files parsed", strconv.Itoa(a.Parsed())},
		{"Files failed", strconv.Itoa(len(a.Failed()))},
		{"Rows", strconv.Itoa(run.Rows())},
		{"Duplicates removed", strconv.Itoa(a.Duplicates)},
	}
	if art := run.Artifact; art != nil {
		rows = append(rows,
			[]string{"Output", "`" + art.Path + "`"},
			[]string{"Size", strconv.FormatInt(art.Bytes, 10) + " bytes"},
			[]string{"SHA3-256", "`" + art.Digest + "`"},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	failed := a.Failed()
	if len(failed) == 0 {
		return
	}

	md.H3("Unparsable files")
	md.PlainText("")

	frows := make([][]string, len(failed))
	for i, f := range failed {
		frows[i] = []string{
			"`" + f.Ref.Name + "`",
			strconv.FormatInt(f.Size, 10),
			truncateString(errText(f.Err), 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Bytes", "Error"},
		Rows:   frows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFunds(md *markdown.Markdown, run *Run) {
	if len(run.Coverage) == 0 {
		return
	}

	md.H2("Fund Coverage")
	md.PlainText("")

	rows := make([][]string, len(run.Coverage))
	bad := 0
	for i, c := range run.Coverage {
		price := "-"
		if c.HasPrice {
			price = c.LastPrice.String()
		}
		rows[i] = []string{
			truncateString(c.Fund, 60),
			strconv.Itoa(c.Rows),
			c.FirstDate,
			c.LastDate,
			price,
		}
		bad += c.BadPrices
	}
	md.Table(markdown.TableSet{
		Header: []string{"Fund", "Rows", "First", "Last", "Last price"},
		Rows:   rows,
	})
	md.PlainText("")

	if bad > 0 {
		md.Notef("%d price value(s) could not be read as numbers.", bad)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [msefunds](https://github.com/nao1215/msefunds)*")
}

// truncateString shortens s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
