package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/msefunds/internal/report"
)

// NewAssembleCmd creates the assemble command.
func NewAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Merge the exports already on disk into one dataset",
		Long: `Assemble merges every mse-funds-data-<n>-<yyyy>-<mm>.xls file in the
download directory into one tab-separated dataset without starting a browser.

Files are read in crawl order. A file that cannot be parsed is reported and
skipped; the run fails only when no file could be parsed or more files failed
than --max-failed-files allows.

Examples:
  # Rebuild the dataset from ./fund_data
  msefunds assemble

  # Use another directory and output path
  msefunds assemble -d ./exports -o funds.tsv

  # Fail when more than 3 files are broken, print JSON
  msefunds assemble --max-failed-files 3 --json`,
		RunE: runAssembleCmd,
	}

	addCommonFlags(cmd)

	return cmd
}

// runAssembleCmd executes the assemble command.
func runAssembleCmd(cmd *cobra.Command, _ []string) error {
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

	led := openLedger(cfg, logger)
	if led != nil {
		defer led.Close()
	}

	run := &report.Run{Mode: report.ModeAssemble, Started: time.Now()}
	return assembleRun(context.Background(), cmd, cfg, led, logger, run)
}
