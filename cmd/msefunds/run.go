package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/msefunds/internal/assemble"
	"github.com/nao1215/msefunds/internal/config"
	"github.com/nao1215/msefunds/internal/dataset"
	"github.com/nao1215/msefunds/internal/ledger"
	mlog "github.com/nao1215/msefunds/internal/log"
	"github.com/nao1215/msefunds/internal/report"
)

// addCommonFlags registers the flags shared by crawl and assemble.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("download-dir", "d", config.DefaultDownloadDir,
		"Directory holding the downloaded exports")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Path of the merged tab-separated dataset")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .msefunds in current or home directory)")
	cmd.Flags().StringP("report", "r", "",
		"Also write a Markdown run report to this path")
	cmd.Flags().String("log-file", config.DefaultRunLogFile,
		"Append-only run log (empty disables it)")
	cmd.Flags().Int("max-failed-files", config.DefaultMaxFailedFiles,
		"Unparsable files tolerated before assembly fails (-1 for unlimited)")
	cmd.Flags().Bool("strict-schema", false,
		"Fail the run when the dataset is missing an expected column")
	cmd.Flags().Bool("no-ledger", false,
		"Do not record the run in the history database")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file and the
// flags, in increasing priority. Only flags set on the command line
// override the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file means defaults.
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if err := applyStringFlags(flags, []stringFlag{
		{"download-dir", &cfg.DownloadDir},
		{"output", &cfg.OutputFile},
		{"report", &cfg.ReportFile},
		{"log-file", &cfg.RunLogFile},
		{"chrome-path", &cfg.ChromePath},
	}); err != nil {
		return nil, err
	}

	if flags.Changed("max-failed-files") {
		if cfg.MaxFailedFiles, err = flags.GetInt("max-failed-files"); err != nil {
			return nil, err
		}
	}
	if cfg.StrictSchema, err = flags.GetBool("strict-schema"); err != nil {
		return nil, err
	}

	noLedger, err := flags.GetBool("no-ledger")
	if err != nil {
		return nil, err
	}
	if noLedger {
		cfg.DBDir = ""
	}

	if flags.Lookup("years") != nil && flags.Changed("years") {
		if cfg.HistoryYears, err = flags.GetInt("years"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("resume") != nil {
		if cfg.Resume, err = flags.GetBool("resume"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("headless") != nil && flags.Changed("headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return cfg, nil
}

// stringFlag binds a string flag to a configuration field.
type stringFlag struct {
	name string
	dst  *string
}

// applyStringFlags copies every flag set on the command line into its
// field and stops at the first flag that cannot be read. Flags the
// command does not define are left alone.
func applyStringFlags(flags *pflag.FlagSet, binds []stringFlag) error {
	for _, b := range binds {
		if flags.Lookup(b.name) == nil || !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetString(b.name)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", b.name, err)
		}
		*b.dst = v
	}
	return nil
}

// setupLogger returns the run logger and a function closing the run log.
func setupLogger(stderr io.Writer, cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.RunLogFile == "" {
		return mlog.NewRunLogger(stderr, nil, cfg.Verbose), func() {}, nil
	}

	f, err := mlog.OpenRunLog(cfg.RunLogFile)
	if err != nil {
		return nil, nil, err
	}

	closeLog := func() {
		_ = f.Close() //nolint:errcheck // Best effort on exit
	}
	return mlog.NewRunLogger(stderr, f, cfg.Verbose), closeLog, nil
}

// openLedger opens the run history. A ledger that cannot be opened is
// logged and skipped; it never stops a run.
func openLedger(cfg *config.Config, logger *slog.Logger) *ledger.Ledger {
	if cfg.DBDir == "" {
		return nil
	}

	led, err := ledger.Open(cfg.DBDir, ledger.DefaultOptions())
	if err != nil {
		logger.Warn("run history disabled", "dir", cfg.DBDir, "error", err)
		return nil
	}

	logger.Debug("run history opened", "path", led.Path())
	return led
}

// assembleRun merges the exports of the download directory, writes the
// dataset and the reports, and records the assembly. It returns the error
// that should fail the run, if any.
func assembleRun(ctx context.Context, cmd *cobra.Command, cfg *config.Config, led *ledger.Ledger, logger *slog.Logger, run *report.Run) error {
	// Assembly is quick and local; it also runs after an interrupted crawl.
	ctx = context.WithoutCancel(ctx)

	asm := assemble.New(
		assemble.WithConcurrency(cfg.ParseConcurrency),
		assemble.WithMaxFailedFiles(cfg.MaxFailedFiles),
		assemble.WithLogger(logger),
	)

	run.Assembly, run.AssemblyErr = asm.Assemble(ctx, cfg.DownloadDir)
	if run.AssemblyErr == nil {
		writeDataset(cfg, logger, run)
	}
	run.Finished = time.Now()

	recordAssembly(ctx, led, logger, run)

	if err := writeReports(cmd, cfg, run); err != nil {
		logger.Error("failed to write report", "error", err)
	}

	if run.AssemblyErr != nil {
		return run.AssemblyErr
	}
	if cfg.StrictSchema && run.SchemaErr != nil {
		return run.SchemaErr
	}
	return nil
}

func writeDataset(cfg *config.Config, logger *slog.Logger, run *report.Run) {
	ds := run.Assembly.Dataset

	art, err := assemble.WriteTSV(cfg.OutputFile, ds)
	if err != nil {
		run.AssemblyErr = err
		logger.Error("failed to save combined data", "output", cfg.OutputFile, "error", err)
		return
	}
	run.Artifact = art

	logger.Info("combined data saved",
		"output", art.Path,
		"rows", ds.Len(),
		"bytes", art.Bytes,
		"sha3_256", art.Digest,
	)

	schema := dataset.DefaultSchema()
	if err := schema.Check(ds); err != nil {
		run.SchemaErr = err
		logger.Warn("dataset does not match the expected columns", "error", err)
	}

	coverage, err := dataset.Summarize(ds, schema)
	if err != nil {
		return
	}
	run.Coverage = coverage
}

func recordAssembly(ctx context.Context, led *ledger.Ledger, logger *slog.Logger, run *report.Run) {
	if led == nil || run.Assembly == nil {
		return
	}

	rec := ledger.AssemblyRecord{
		FilesParsed: run.Assembly.Parsed(),
		FilesFailed: run.FailedFiles(),
		Rows:        run.Rows(),
		Duplicates:  run.Assembly.Duplicates,
		FailedFiles: run.Assembly.FailedNames(),
	}
	if run.Artifact != nil {
		rec.Output = run.Artifact.Path
		rec.Digest = run.Artifact.Digest
	}

	if err := led.RecordAssembly(ctx, rec); err != nil {
		logger.Warn("failed to record assembly", "error", err)
	}
}

// writeReports prints the run summary and writes the Markdown report file
// when one was requested.
func writeReports(cmd *cobra.Command, cfg *config.Config, run *report.Run) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var terminal report.Writer = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose))
	if jsonOut {
		terminal = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint(), report.WithVersion(getVersion()))
	}

	writers := []report.Writer{terminal}

	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()

		writers = append(writers, report.NewMarkdownWriter(f))
	}

	_, err = report.NewMultiWriter(writers...).Write(run)
	return err
}
