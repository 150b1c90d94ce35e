package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while still printing a readable message.
var (
	// ErrNoDownloadDir is returned when the download directory is empty.
	ErrNoDownloadDir = errors.New("no download directory specified")

	// ErrNoOutputFile is returned when the merged dataset path is empty.
	ErrNoOutputFile = errors.New("no output file specified")

	// ErrInvalidHistory is returned when the crawl history is not positive.
	ErrInvalidHistory = errors.New("invalid history: years must be positive")

	// ErrInvalidAttempts is returned when the number of attempts is not positive.
	// At least one attempt is needed to export anything.
	ErrInvalidAttempts = errors.New("invalid attempts: must be positive")

	// ErrInvalidBackoff is returned when the retry backoff is negative.
	ErrInvalidBackoff = errors.New("invalid retry backoff: must be non-negative")

	// ErrInvalidTimeout is returned when a poll interval or wait bound is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when parse concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid parse concurrency: must be positive")

	// ErrInvalidPortal is returned when the portal section is incomplete.
	ErrInvalidPortal = errors.New("invalid portal configuration")
)
