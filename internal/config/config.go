package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the pace of a human operator driving the portal; the portal
// is slow to render large date ranges, so waits are generous.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "msefunds"

	// DefaultDownloadDir is where the browser saves exports and where the
	// assembler later looks for them.
	DefaultDownloadDir = "fund_data"

	// DefaultOutputFile is the merged tab-separated dataset.
	DefaultOutputFile = "combined_mutual_fund_data.csv"

	// DefaultRunLogFile is the append-only run log.
	DefaultRunLogFile = "crawler.log"

	// DefaultHistoryYears is how far back the crawl starts.
	DefaultHistoryYears = 10

	// DefaultMaxAttempts is the total number of tries per window.
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff is the fixed delay between window attempts.
	DefaultRetryBackoff = 5 * time.Second

	// DefaultPollInterval is how often the download directory is listed.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultClaimTimeout bounds the wait for an export file to appear.
	DefaultClaimTimeout = 10 * time.Second

	// DefaultElementTimeout bounds each element lookup on the portal page.
	DefaultElementTimeout = 20 * time.Second

	// DefaultPageLoadTimeout bounds the initial navigation.
	DefaultPageLoadTimeout = 30 * time.Second

	// DefaultMaxFailedFiles disables the failed-file threshold.
	DefaultMaxFailedFiles = -1

	// DefaultParseConcurrency is the number of export files parsed at once.
	DefaultParseConcurrency = 4
)

// Config holds all configuration options for a run.
// It is populated from the YAML config file first and CLI flags second,
// then passed down explicitly; nothing reads global state.
type Config struct {
	// DownloadDir is the browser download directory and the assembler's
	// input directory.
	DownloadDir string

	// OutputFile is the path of the merged TSV artifact.
	OutputFile string

	// RunLogFile is the append-only run log. Empty disables it.
	RunLogFile string

	// ReportFile is an optional Markdown run report path.
	ReportFile string

	// HistoryYears is the length of the crawl window ending today.
	HistoryYears int

	// MaxAttempts is the total number of tries per window (not retries).
	MaxAttempts int

	// RetryBackoff is the fixed delay between attempts.
	RetryBackoff time.Duration

	// PollInterval is the download directory polling interval.
	PollInterval time.Duration

	// ClaimTimeout bounds the wait for a download to appear.
	ClaimTimeout time.Duration

	// ElementTimeout bounds each element lookup.
	ElementTimeout time.Duration

	// PageLoadTimeout bounds the initial page navigation.
	PageLoadTimeout time.Duration

	// Headless runs Chrome without a window.
	Headless bool

	// ChromePath overrides the Chrome executable.
	ChromePath string

	// Resume skips windows whose target file is already on disk.
	Resume bool

	// MaxFailedFiles is the number of unparsable files tolerated during
	// assembly. A negative value means unlimited.
	MaxFailedFiles int

	// ParseConcurrency bounds concurrent file parsing during assembly.
	ParseConcurrency int

	// StrictSchema turns a downstream schema mismatch into a run failure.
	StrictSchema bool

	// Verbose enables debug-level output on stderr.
	Verbose bool

	// ConfigFilePath is the explicitly requested configuration file.
	ConfigFilePath string

	// Portal holds the portal URL, selectors and delays.
	Portal Portal

	// DBDir is the directory holding the run ledger database.
	// Empty disables the ledger.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DownloadDir:      DefaultDownloadDir,
		OutputFile:       DefaultOutputFile,
		RunLogFile:       DefaultRunLogFile,
		HistoryYears:     DefaultHistoryYears,
		MaxAttempts:      DefaultMaxAttempts,
		RetryBackoff:     DefaultRetryBackoff,
		PollInterval:     DefaultPollInterval,
		ClaimTimeout:     DefaultClaimTimeout,
		ElementTimeout:   DefaultElementTimeout,
		PageLoadTimeout:  DefaultPageLoadTimeout,
		Headless:         true,
		MaxFailedFiles:   DefaultMaxFailedFiles,
		ParseConcurrency: DefaultParseConcurrency,
		Portal:           DefaultPortal(),
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for msefunds.
// On Linux: ~/.local/share/msefunds
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for msefunds.
// On Linux: ~/.config/msefunds
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.DownloadDir == "" {
		return ErrNoDownloadDir
	}

	if c.OutputFile == "" {
		return ErrNoOutputFile
	}

	if c.HistoryYears <= 0 {
		return ErrInvalidHistory
	}

	if c.MaxAttempts <= 0 {
		return ErrInvalidAttempts
	}

	if c.RetryBackoff < 0 {
		return ErrInvalidBackoff
	}

	if c.PollInterval <= 0 || c.ClaimTimeout <= 0 || c.ElementTimeout <= 0 || c.PageLoadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ParseConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	return c.Portal.Validate()
}
