package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// OpenRunLog opens path for appending, creating it and its directory if
// needed. Existing content is never truncated.
func OpenRunLog(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create run log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // user-chosen log path
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return f, nil
}

// NewRunLogger returns a text logger writing to terminal and, when runLog
// is non-nil, to runLog.
//
// Parameters:
//   - terminal: usually os.Stderr; Info and above, Debug when verbose
//   - runLog: the append-only run log; always Info and above
//   - verbose: enables Debug output on terminal
func NewRunLogger(terminal, runLog io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(terminal, &slog.HandlerOptions{Level: level}),
	}
	if runLog != nil {
		handlers = append(handlers, slog.NewTextHandler(runLog, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return slog.New(NewFanoutHandler(handlers...))
}

// NewQuietLogger returns a logger for commands that only print results:
// warnings and errors on w, Debug and above when verbose.
func NewQuietLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
