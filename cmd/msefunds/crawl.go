package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/msefunds/internal/browser"
	"github.com/nao1215/msefunds/internal/config"
	"github.com/nao1215/msefunds/internal/crawl"
	"github.com/nao1215/msefunds/internal/download"
	"github.com/nao1215/msefunds/internal/ledger"
	"github.com/nao1215/msefunds/internal/report"
	"github.com/nao1215/msefunds/internal/retry"
	"github.com/nao1215/msefunds/internal/session"
	"github.com/nao1215/msefunds/internal/window"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Download every monthly export and merge them",
		Long: `Crawl drives the MSE open-end investment funds page in Chrome, one
calendar month at a time, from today back the configured number of years.

Each month's export is saved as mse-funds-data-<n>-<yyyy>-<mm>.xls in the
download directory. A month that fails is retried a fixed number of times
and then skipped; the crawl always continues with the next month.

When the crawl ends (or is interrupted with Ctrl+C), every export in the
download directory is merged into one tab-separated dataset.

Examples:
  # Crawl the last 10 years with default settings
  msefunds crawl

  # Crawl 2 years into a custom directory, watching the browser
  msefunds crawl --years 2 -d ./exports --headless=false

  # Continue an interrupted crawl without downloading months again
  msefunds crawl --resume

  # Write a Markdown report alongside the dataset
  msefunds crawl -r report.md`,
		RunE: runCrawlCmd,
	}

	addCommonFlags(cmd)

	cmd.Flags().IntP("years", "y", config.DefaultHistoryYears,
		"Number of years of history to download")
	cmd.Flags().Bool("resume", false,
		"Skip months whose export is already in the download directory")
	cmd.Flags().Bool("headless", true,
		"Run Chrome without a window")
	cmd.Flags().String("chrome-path", "",
		"Path to the Chrome executable (default: auto-detect)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, finishing the current month...")
			cancel()
		case <-ctx.Done():
		}
	}()

	led := openLedger(cfg, logger)
	if led != nil {
		defer led.Close()
	}

	run := &report.Run{Mode: report.ModeCrawl, Started: time.Now()}

	summary, err := runCrawl(ctx, cfg, led, logger)
	if err != nil {
		return err
	}
	run.Crawl = summary

	return assembleRun(ctx, cmd, cfg, led, logger, run)
}

// runCrawl starts the browser and downloads every month of the configured
// span. Only setup problems are returned; window failures end up in the
// summary.
func runCrawl(ctx context.Context, cfg *config.Config, led *ledger.Ledger, logger *slog.Logger) (*crawl.Summary, error) {
	if err := os.MkdirAll(cfg.DownloadDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	chrome := browser.NewChrome(
		browser.WithDownloadDir(cfg.DownloadDir),
		browser.WithHeadless(cfg.Headless),
		browser.WithExecPath(cfg.ChromePath),
		browser.WithPageLoadTimeout(cfg.PageLoadTimeout),
	)
	if err := chrome.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := chrome.Close(); err != nil {
			logger.Warn("failed to stop browser", "error", err)
		}
	}()

	watcher := download.NewWatcher(cfg.DownloadDir, download.NewClaimSet(),
		download.WithPollInterval(cfg.PollInterval),
		download.WithMaxWait(cfg.ClaimTimeout),
		download.WithLogger(logger),
	)
	policy := retry.New(
		retry.WithAttempts(cfg.MaxAttempts),
		retry.WithBackoff(cfg.RetryBackoff),
		retry.WithLogger(logger),
	)
	sess := session.New(chrome, watcher, policy, cfg.Portal,
		session.WithElementTimeout(cfg.ElementTimeout),
		session.WithLogger(logger),
	)

	opts := []crawl.Option{crawl.WithLogger(logger)}
	if led != nil {
		opts = append(opts, crawl.WithRecorder(led))
	}
	if cfg.Resume {
		opts = append(opts, crawl.WithResume(cfg.DownloadDir))
	}

	start, end := window.Span(time.Now(), cfg.HistoryYears)
	logger.Info("starting crawl",
		"from", start.Format(time.DateOnly),
		"to", end.Format(time.DateOnly),
		"dir", cfg.DownloadDir,
	)

	return crawl.New(sess, opts...).Run(ctx, window.Generate(start, end)), nil
}
