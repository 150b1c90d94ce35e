package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/nao1215/msefunds/internal/config"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl" {
			t.Errorf("expected use 'crawl', got %q", cmd.Use)
		}
	})

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "download-dir", shorthand: "d", defValue: config.DefaultDownloadDir},
		{name: "output", shorthand: "o", defValue: config.DefaultOutputFile},
		{name: "config", shorthand: "c", defValue: ""},
		{name: "report", shorthand: "r", defValue: ""},
		{name: "years", shorthand: "y", defValue: "10"},
		{name: "max-failed-files", defValue: "-1"},
		{name: "resume", defValue: "false"},
		{name: "headless", defValue: "true"},
		{name: "no-ledger", defValue: "false"},
		{name: "json", shorthand: "j", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// writeConfigFile writes a .msefunds file to a temporary directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".msefunds")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// TestBuildConfig tests the precedence of defaults, config file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
downloadDir: from-file
output: file.tsv
years: 3
maxAttempts: 5
maxFailedFiles: 2
portal:
  loadDelay: 1s
`)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "file overrides defaults",
			args: []string{"-c", cfgPath},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.DownloadDir != "from-file" || cfg.OutputFile != "file.tsv" {
					t.Errorf("expected paths from file, got %q %q", cfg.DownloadDir, cfg.OutputFile)
				}
				if cfg.HistoryYears != 3 || cfg.MaxAttempts != 5 || cfg.MaxFailedFiles != 2 {
					t.Errorf("unexpected values %+v", cfg)
				}
				if cfg.Portal.URL != config.DefaultPortalURL {
					t.Errorf("expected default portal URL, got %q", cfg.Portal.URL)
				}
				if cfg.DBDir == "" {
					t.Error("expected the ledger to be enabled")
				}
			},
		},
		{
			name: "flags override file",
			args: []string{"-c", cfgPath, "-d", "from-flag", "--years", "2", "--max-failed-files", "-1"},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.DownloadDir != "from-flag" {
					t.Errorf("expected download dir from flag, got %q", cfg.DownloadDir)
				}
				if cfg.HistoryYears != 2 {
					t.Errorf("expected 2 years, got %d", cfg.HistoryYears)
				}
				if cfg.MaxFailedFiles != -1 {
					t.Errorf("expected unlimited failures, got %d", cfg.MaxFailedFiles)
				}
				if cfg.OutputFile != "file.tsv" {
					t.Errorf("expected unset flag to keep file value, got %q", cfg.OutputFile)
				}
			},
		},
		{
			name: "boolean flags",
			args: []string{"-c", cfgPath, "--resume", "--headless=false", "--strict-schema", "--no-ledger", "--log-file="},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if !cfg.Resume || cfg.Headless || !cfg.StrictSchema {
					t.Errorf("unexpected booleans resume=%v headless=%v strict=%v", cfg.Resume, cfg.Headless, cfg.StrictSchema)
				}
				if cfg.DBDir != "" {
					t.Errorf("expected ledger disabled, got %q", cfg.DBDir)
				}
				if cfg.RunLogFile != "" {
					t.Errorf("expected run log disabled, got %q", cfg.RunLogFile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewCrawlCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}

			cfg, err := buildConfig(cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		_, err := buildConfig(cmd)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath, "--years", "0"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		_, err := buildConfig(cmd)
		if !errors.Is(err, config.ErrInvalidHistory) {
			t.Errorf("expected ErrInvalidHistory, got %v", err)
		}
	})

	t.Run("assemble has no crawl flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewAssembleCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HistoryYears != 3 || cfg.Resume {
			t.Errorf("expected crawl settings from file only, got %+v", cfg)
		}
	})
}

// TestApplyStringFlags tests copying string flags into configuration fields.
func TestApplyStringFlags(t *testing.T) {
	t.Parallel()

	newFlags := func(t *testing.T, args ...string) *pflag.FlagSet {
		t.Helper()

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String("download-dir", "", "")
		fs.Int("output", 0, "")
		fs.String("log-file", "", "")
		if err := fs.Parse(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		return fs
	}

	t.Run("unreadable flag is not masked by later flags", func(t *testing.T) {
		t.Parallel()

		var output, logFile string
		fs := newFlags(t, "--output", "3", "--log-file", "run.log")

		err := applyStringFlags(fs, []stringFlag{
			{"output", &output},
			{"log-file", &logFile},
		})
		if err == nil {
			t.Fatal("expected an error for the non-string flag")
		}
		if logFile != "" {
			t.Errorf("expected to stop at the first error, got log file %q", logFile)
		}
	})

	t.Run("only changed and defined flags are copied", func(t *testing.T) {
		t.Parallel()

		dir, logFile, chrome := "keep", "keep.log", "/usr/bin/chrome"
		fs := newFlags(t, "--download-dir", "exports")

		err := applyStringFlags(fs, []stringFlag{
			{"download-dir", &dir},
			{"log-file", &logFile},
			{"chrome-path", &chrome},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != "exports" || logFile != "keep.log" || chrome != "/usr/bin/chrome" {
			t.Errorf("unexpected values %q %q %q", dir, logFile, chrome)
		}
	})
}
