// Package download detects a completed browser download by polling the
// download directory and claims it under a deterministic name.
//
// There is no completion event to subscribe to: the file is written by the
// browser process, possibly in several stages (a ".crdownload" temporary
// first, then the final name). The watcher therefore polls with a bounded
// wait and only considers files carrying the final suffix.
package download

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default polling values.
const (
	DefaultSuffix       = ".xls"
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxWait      = 10 * time.Second
)

// Watcher polls a directory for a finished export.
type Watcher struct {
	// dir is the browser download directory.
	dir string

	// suffix is the extension of finished downloads.
	suffix string

	// interval is the time between two directory listings.
	interval time.Duration

	// maxWait bounds one AwaitAndClaim call.
	maxWait time.Duration

	// claimed is the run-scoped set of already claimed names.
	claimed *ClaimSet

	// logger for claim diagnostics.
	logger *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSuffix sets the extension of finished downloads.
func WithSuffix(suffix string) Option {
	return func(w *Watcher) {
		w.suffix = suffix
	}
}

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMaxWait sets the maximum wait per claim.
func WithMaxWait(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.maxWait = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a Watcher over dir that records claims in claimed.
func NewWatcher(dir string, claimed *ClaimSet, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		suffix:   DefaultSuffix,
		interval: DefaultPollInterval,
		maxWait:  DefaultMaxWait,
		claimed:  claimed,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.claimed == nil {
		w.claimed = NewClaimSet()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// AwaitAndClaim waits for an unclaimed file accepted by match and renames
// it to target inside the watched directory.
//
// It returns false when nothing matched within the maximum wait, when ctx
// is done, or when the rename failed. None of these abort the run, so no
// error is returned; the cause is logged.
func (w *Watcher) AwaitAndClaim(ctx context.Context, target string, match Matcher) bool {
	deadline := time.Now().Add(w.maxWait)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if source, ok := w.poll(match); ok {
			return w.claim(source, target)
		}

		if !time.Now().Before(deadline) {
			break
		}

		select {
		case <-ctx.Done():
			w.logger.Warn("download wait cancelled", "target", target, "error", ctx.Err())
			return false
		case <-ticker.C:
		}
	}

	w.logger.Error("no matching download found",
		"target", target,
		"dir", w.dir,
		"waited", w.maxWait,
	)
	return false
}

// poll lists the directory once and returns the first candidate in
// listing order.
func (w *Watcher) poll(match Matcher) (string, bool) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("failed to list download directory", "dir", w.dir, "error", err)
		return "", false
	}

	names := make([]string, 0, len(entries))
	found := ""
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), w.suffix) {
			continue
		}
		names = append(names, entry.Name())

		if found != "" || w.claimed.Has(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed or renamed between listing and stat.
			continue
		}
		if match(entry, info) {
			found = entry.Name()
		}
	}

	w.logger.Debug("polled download directory", "dir", w.dir, "files", names)

	return found, found != ""
}

// claim renames source to target and records target as claimed. The
// source name is not recorded: the portal reuses it for every export.
func (w *Watcher) claim(source, target string) bool {
	w.logger.Info("claiming download", "source", source, "target", target)

	from := filepath.Join(w.dir, source)
	to := filepath.Join(w.dir, target)
	if err := os.Rename(from, to); err != nil {
		w.logger.Error("failed to rename download",
			"source", source,
			"target", target,
			"error", err,
		)
		return false
	}

	w.claimed.Add(target)

	w.logger.Info("download claimed", "target", target)
	return true
}
