package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/msefunds/internal/browser"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail otherwise.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default DownloadDir is fund_data", func(t *testing.T) {
		t.Parallel()
		if cfg.DownloadDir != "fund_data" {
			t.Errorf("expected DownloadDir to be 'fund_data', got '%s'", cfg.DownloadDir)
		}
	})

	t.Run("default OutputFile is combined_mutual_fund_data.csv", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputFile != "combined_mutual_fund_data.csv" {
			t.Errorf("unexpected OutputFile %q", cfg.OutputFile)
		}
	})

	t.Run("default MaxAttempts is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxAttempts != 3 {
			t.Errorf("expected MaxAttempts to be 3, got %d", cfg.MaxAttempts)
		}
	})

	t.Run("default RetryBackoff is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryBackoff != 5*time.Second {
			t.Errorf("expected RetryBackoff to be 5s, got %v", cfg.RetryBackoff)
		}
	})

	t.Run("default download waits are 500ms polling for 10s", func(t *testing.T) {
		t.Parallel()
		if cfg.PollInterval != 500*time.Millisecond {
			t.Errorf("expected PollInterval 500ms, got %v", cfg.PollInterval)
		}
		if cfg.ClaimTimeout != 10*time.Second {
			t.Errorf("expected ClaimTimeout 10s, got %v", cfg.ClaimTimeout)
		}
	})

	t.Run("default ElementTimeout is 20 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ElementTimeout != 20*time.Second {
			t.Errorf("expected ElementTimeout 20s, got %v", cfg.ElementTimeout)
		}
	})

	t.Run("default history is ten years", func(t *testing.T) {
		t.Parallel()
		if cfg.HistoryYears != 10 {
			t.Errorf("expected HistoryYears 10, got %d", cfg.HistoryYears)
		}
	})

	t.Run("failed file threshold is disabled by default", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxFailedFiles >= 0 {
			t.Errorf("expected negative MaxFailedFiles, got %d", cfg.MaxFailedFiles)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty download dir returns ErrNoDownloadDir",
			mutate:  func(c *Config) { c.DownloadDir = "" },
			wantErr: ErrNoDownloadDir,
		},
		{
			name:    "empty output returns ErrNoOutputFile",
			mutate:  func(c *Config) { c.OutputFile = "" },
			wantErr: ErrNoOutputFile,
		},
		{
			name:    "zero years returns ErrInvalidHistory",
			mutate:  func(c *Config) { c.HistoryYears = 0 },
			wantErr: ErrInvalidHistory,
		},
		{
			name:    "zero attempts returns ErrInvalidAttempts",
			mutate:  func(c *Config) { c.MaxAttempts = 0 },
			wantErr: ErrInvalidAttempts,
		},
		{
			name:    "negative backoff returns ErrInvalidBackoff",
			mutate:  func(c *Config) { c.RetryBackoff = -time.Second },
			wantErr: ErrInvalidBackoff,
		},
		{
			name:    "zero backoff is valid",
			mutate:  func(c *Config) { c.RetryBackoff = 0 },
			wantErr: nil,
		},
		{
			name:    "zero poll interval returns ErrInvalidTimeout",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero element timeout returns ErrInvalidTimeout",
			mutate:  func(c *Config) { c.ElementTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero parse concurrency returns ErrInvalidConcurrency",
			mutate:  func(c *Config) { c.ParseConcurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "missing export selector returns ErrInvalidPortal",
			mutate:  func(c *Config) { c.Portal.Export = browser.Selector{} },
			wantErr: ErrInvalidPortal,
		},
		{
			name:    "empty match patterns returns ErrInvalidPortal",
			mutate:  func(c *Config) { c.Portal.MatchPatterns = nil },
			wantErr: ErrInvalidPortal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestPortalMerge tests overriding parts of the portal description.
func TestPortalMerge(t *testing.T) {
	t.Parallel()

	base := DefaultPortal()

	t.Run("empty override keeps defaults", func(t *testing.T) {
		t.Parallel()
		got := base.Merge(Portal{})
		if got.URL != DefaultPortalURL || got.Export != base.Export {
			t.Errorf("expected defaults to be kept, got %+v", got)
		}
	})

	t.Run("override replaces set fields only", func(t *testing.T) {
		t.Parallel()
		got := base.Merge(Portal{
			URL:         "http://localhost:8080/funds",
			Export:      browser.CSS("a.export"),
			SettleDelay: 3 * time.Second,
		})
		if got.URL != "http://localhost:8080/funds" {
			t.Errorf("expected URL override, got %q", got.URL)
		}
		if got.Export != browser.CSS("a.export") {
			t.Errorf("expected export override, got %v", got.Export)
		}
		if got.SettleDelay != 3*time.Second {
			t.Errorf("expected settle delay override, got %v", got.SettleDelay)
		}
		if got.FromDate != browser.ID("FromDate") {
			t.Errorf("expected FromDate default, got %v", got.FromDate)
		}
		if got.LoadDelay != DefaultLoadDelay {
			t.Errorf("expected LoadDelay default, got %v", got.LoadDelay)
		}
	})
}

// TestLoadConfigFile tests loading configuration from YAML files.
func TestLoadConfigFile(t *testing.T) {
	t.Run("returns ErrConfigNotFound for missing file", func(t *testing.T) {
		_, err := LoadConfigFile("/nonexistent/path/.msefunds")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads and applies valid config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".msefunds")

		content := `downloadDir: /data/exports
output: merged.tsv
years: 3
maxAttempts: 5
retryBackoff: 1s
maxFailedFiles: 0
portal:
  url: http://localhost:9000/funds
  settleDelay: 500ms
  export:
    by: css
    value: "#export"
  matchPatterns:
    - "Funds-Export"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		file.Apply(cfg)

		if cfg.DownloadDir != "/data/exports" {
			t.Errorf("expected download dir override, got %q", cfg.DownloadDir)
		}
		if cfg.OutputFile != "merged.tsv" {
			t.Errorf("expected output override, got %q", cfg.OutputFile)
		}
		if cfg.HistoryYears != 3 {
			t.Errorf("expected 3 years, got %d", cfg.HistoryYears)
		}
		if cfg.MaxAttempts != 5 {
			t.Errorf("expected 5 attempts, got %d", cfg.MaxAttempts)
		}
		if cfg.RetryBackoff != time.Second {
			t.Errorf("expected 1s backoff, got %v", cfg.RetryBackoff)
		}
		if cfg.MaxFailedFiles != 0 {
			t.Errorf("expected explicit 0 max failed files, got %d", cfg.MaxFailedFiles)
		}
		if cfg.Portal.URL != "http://localhost:9000/funds" {
			t.Errorf("expected portal url override, got %q", cfg.Portal.URL)
		}
		if cfg.Portal.SettleDelay != 500*time.Millisecond {
			t.Errorf("expected 500ms settle delay, got %v", cfg.Portal.SettleDelay)
		}
		if cfg.Portal.Export != browser.CSS("#export") {
			t.Errorf("expected css export selector, got %v", cfg.Portal.Export)
		}
		if len(cfg.Portal.MatchPatterns) != 1 || cfg.Portal.MatchPatterns[0] != "Funds-Export" {
			t.Errorf("unexpected match patterns %v", cfg.Portal.MatchPatterns)
		}
		if cfg.Portal.FromDate != browser.ID("FromDate") {
			t.Errorf("expected default FromDate, got %v", cfg.Portal.FromDate)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected merged config to be valid, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".msefunds")

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("years: 1"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("expected non-empty XDG data dir")
	}
	if XDGConfigDir() == "" {
		t.Error("expected non-empty XDG config dir")
	}
	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
	}
}
