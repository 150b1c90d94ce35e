package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSONWriter outputs a run in JSON format for other tools.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is stamped into every document when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion stamps the tool version into the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(run *Run) (int, error) {
	return w.writeJSON(newJSONRun(run, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONRun is the JSON document written by JSONWriter.
type JSONRun struct {
	Version     string        `json:"version,omitempty"`
	Mode        Mode          `json:"mode"`
	Started     time.Time     `json:"started"`
	Finished    time.Time     `json:"finished"`
	Succeeded   bool          `json:"succeeded"`
	Error       string        `json:"error,omitempty"`
	Crawl       *JSONCrawl    `json:"crawl,omitempty"`
	Assembly    *JSONAssembly `json:"assembly,omitempty"`
	Funds       []JSONFund    `json:"funds,omitempty"`
	SchemaError string        `json:"schemaError,omitempty"`
}

// JSONCrawl summarizes the crawl phase.
type JSONCrawl struct {
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	Interrupted bool         `json:"interrupted"`
	Windows     []JSONWindow `json:"windows"`
}

// JSONWindow is one window outcome.
type JSONWindow struct {
	Iteration int    `json:"iteration"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Target    string `json:"target"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}

// JSONAssembly summarizes the assembly phase.
type JSONAssembly struct {
	Files       int        `json:"files"`
	Parsed      int        `json:"parsed"`
	FailedFiles []JSONFile `json:"failedFiles,omitempty"`
	Rows        int        `json:"rows"`
	Duplicates  int        `json:"duplicates"`
	Output      string     `json:"output,omitempty"`
	Bytes       int64      `json:"bytes,omitempty"`
	Digest      string     `json:"sha3_256,omitempty"`
}

// JSONFile is an export file that could not be parsed.
type JSONFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Error string `json:"error"`
}

// JSONFund is the coverage of one fund.
type JSONFund struct {
	Fund      string `json:"fund"`
	Rows      int    `json:"rows"`
	FirstDate string `json:"firstDate"`
	LastDate  string `json:"lastDate"`
	LastPrice string `json:"lastPrice,omitempty"`
	BadPrices int    `json:"badPrices,omitempty"`
}

func newJSONRun(run *Run, version string) *JSONRun {
	doc := &JSONRun{
		Version:   version,
		Mode:      run.Mode,
		Started:   run.Started,
		Finished:  run.Finished,
		Succeeded: run.Succeeded(),
	}
	if run.AssemblyErr != nil {
		doc.Error = run.AssemblyErr.Error()
	}
	if run.SchemaErr != nil {
		doc.SchemaError = run.SchemaErr.Error()
	}

	if s := run.Crawl; s != nil {
		c := &JSONCrawl{
			Succeeded:   s.Succeeded,
			Failed:      s.Failed,
			Skipped:     s.Skipped,
			Interrupted: s.Interrupted,
			Windows:     make([]JSONWindow, 0, len(s.Outcomes)),
		}
		for _, out := range s.Outcomes {
			jw := JSONWindow{
				Iteration: out.Window.Iteration,
				Start:     out.Window.Start.Format(dateLayout),
				End:       out.Window.End.Format(dateLayout),
				Target:    out.Target,
				Status:    out.Status.String(),
				Attempts:  out.Attempts,
			}
			if out.Err != nil {
				jw.Error = out.Err.Error()
			}
			c.Windows = append(c.Windows, jw)
		}
		doc.Crawl = c
	}

	if a := run.Assembly; a != nil {
		ja := &JSONAssembly{
			Files:      len(a.Files),
			Parsed:     a.Parsed(),
			Rows:       run.Rows(),
			Duplicates: a.Duplicates,
		}
		for _, f := range a.Failed() {
			ja.FailedFiles = append(ja.FailedFiles, JSONFile{Name: f.Ref.Name, Size: f.Size, Error: f.Err.Error()})
		}
		if art := run.Artifact; art != nil {
			ja.Output = art.Path
			ja.Bytes = art.Bytes
			ja.Digest = art.Digest
		}
		doc.Assembly = ja
	}

	for _, c := range run.Coverage {
		jf := JSONFund{
			Fund:      c.Fund,
			Rows:      c.Rows,
			FirstDate: c.FirstDate,
			LastDate:  c.LastDate,
			BadPrices: c.BadPrices,
		}
		if c.HasPrice {
			jf.LastPrice = c.LastPrice.String()
		}
		doc.Funds = append(doc.Funds, jf)
	}

	return doc
}
