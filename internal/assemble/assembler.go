package assemble

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/msefunds/internal/dataset"
	"github.com/nao1215/msefunds/internal/window"
)

// DefaultConcurrency is the number of files parsed at once.
const DefaultConcurrency = 4

// prefixLen is how much of an unparsable file is logged.
const prefixLen = 50

// Assembler builds a dataset from a download directory.
type Assembler struct {
	// concurrency bounds parallel file parsing.
	concurrency int

	// maxFailed is the number of failed files tolerated; negative means
	// unlimited.
	maxFailed int

	logger *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithConcurrency sets how many files are parsed at once.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithMaxFailedFiles sets how many unparsable files are tolerated before
// assembly fails. A negative value disables the limit.
func WithMaxFailedFiles(n int) Option {
	return func(a *Assembler) {
		a.maxFailed = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		concurrency: DefaultConcurrency,
		maxFailed:   -1,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// FileResult is the outcome of one export file.
type FileResult struct {
	Ref  window.FileRef
	Size int64
	Rows int
	Err  error
}

// Result is the outcome of one assembly.
type Result struct {
	// Files lists every discovered file in merge order.
	Files []FileResult

	// Dataset is nil when no file could be parsed.
	Dataset *dataset.Dataset

	// Duplicates is the number of rows dropped as exact duplicates.
	Duplicates int
}

// Parsed returns the number of files that contributed rows.
func (r *Result) Parsed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the files that could not be parsed.
func (r *Result) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// FailedNames returns the names of the files that could not be parsed.
func (r *Result) FailedNames() []string {
	failed := r.Failed()
	names := make([]string, 0, len(failed))
	for _, f := range failed {
		names = append(names, f.Ref.Name)
	}
	return names
}

// Discover lists the claimed export files of dir ordered by iteration,
// then by name. Any other file is ignored.
func Discover(dir string) ([]window.FileRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	refs := make([]window.FileRef, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if ref, ok := window.ParseFilename(entry.Name()); ok {
			refs = append(refs, ref)
		}
	}

	slices.SortFunc(refs, func(a, b window.FileRef) int {
		if c := cmp.Compare(a.Iteration, b.Iteration); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return refs, nil
}

// Assemble parses every export file of dir and merges them.
//
// Files are parsed concurrently but merged strictly in discovery order.
// The returned Result is never nil. The error is ErrNoData when nothing
// could be parsed and ErrTooManyFailures when the failure threshold was
// exceeded; in both cases Result.Dataset is nil.
func (a *Assembler) Assemble(ctx context.Context, dir string) (*Result, error) {
	refs, err := Discover(dir)
	if err != nil {
		return &Result{}, err
	}

	a.logger.Info("found files to process", "count", len(refs), "dir", dir)

	result := &Result{Files: make([]FileResult, len(refs))}
	tables := make([]*Table, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(dir, ref.Name)
			table, size, err := parseFile(path)
			result.Files[i] = FileResult{Ref: ref, Size: size, Err: err}
			if err != nil {
				a.logFailure(path, size, err)
				return nil
			}

			result.Files[i].Rows = len(table.Rows)
			tables[i] = table
			a.logger.Debug("processed file", "file", ref.Name, "rows", len(table.Rows))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	parsed := slices.DeleteFunc(tables, func(t *Table) bool { return t == nil })
	if len(parsed) == 0 {
		a.logger.Error("no data was successfully processed", "dir", dir)
		return result, ErrNoData
	}

	failed := len(result.Failed())
	if a.maxFailed >= 0 && failed > a.maxFailed {
		a.logger.Error("too many files failed to parse", "failed", failed, "allowed", a.maxFailed)
		return result, fmt.Errorf("%w: %d failed, %d allowed", ErrTooManyFailures, failed, a.maxFailed)
	}

	result.Dataset, result.Duplicates = Merge(parsed)

	a.logger.Info("assembled dataset",
		"files", len(parsed),
		"failed", failed,
		"rows", result.Dataset.Len(),
		"columns", len(result.Dataset.Columns),
		"duplicates", result.Duplicates,
	)

	return result, nil
}

func parseFile(path string) (*Table, int64, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from Discover
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read file: %w", err)
	}

	table, err := ParseTable(data)
	return table, int64(len(data)), err
}

// logFailure logs a per-file failure with the file's leading bytes.
func (a *Assembler) logFailure(path string, size int64, cause error) {
	prefix := ""
	if f, err := os.Open(path); err == nil { //nolint:gosec // path comes from Discover
		buf := make([]byte, prefixLen)
		n, _ := f.Read(buf) //nolint:errcheck // best effort diagnostics
		prefix = fmt.Sprintf("%q", buf[:n])
		_ = f.Close()
	}

	a.logger.Error("error processing file",
		"file", filepath.Base(path),
		"error", cause,
		"starts_with", prefix,
		"size", size,
	)
}
