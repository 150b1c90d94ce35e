package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".msefunds"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .msefunds configuration file.
// Every field is optional; zero values leave the defaults untouched.
type File struct {
	DownloadDir    string        `yaml:"downloadDir,omitempty"`
	Output         string        `yaml:"output,omitempty"`
	LogFile        string        `yaml:"logFile,omitempty"`
	Report         string        `yaml:"report,omitempty"`
	Years          int           `yaml:"years,omitempty"`
	MaxAttempts    int           `yaml:"maxAttempts,omitempty"`
	RetryBackoff   time.Duration `yaml:"retryBackoff,omitempty"`
	ClaimTimeout   time.Duration `yaml:"claimTimeout,omitempty"`
	ElementTimeout time.Duration `yaml:"elementTimeout,omitempty"`

	// MaxFailedFiles is a pointer so that an explicit 0 is distinguishable
	// from an absent key.
	MaxFailedFiles *int `yaml:"maxFailedFiles,omitempty"`

	// ChromePath overrides the Chrome executable.
	ChromePath string `yaml:"chromePath,omitempty"`

	// Portal overrides parts of the portal description.
	Portal Portal `yaml:"portal,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	if cf.DownloadDir != "" {
		cfg.DownloadDir = cf.DownloadDir
	}
	if cf.Output != "" {
		cfg.OutputFile = cf.Output
	}
	if cf.LogFile != "" {
		cfg.RunLogFile = cf.LogFile
	}
	if cf.Report != "" {
		cfg.ReportFile = cf.Report
	}
	if cf.Years > 0 {
		cfg.HistoryYears = cf.Years
	}
	if cf.MaxAttempts > 0 {
		cfg.MaxAttempts = cf.MaxAttempts
	}
	if cf.RetryBackoff > 0 {
		cfg.RetryBackoff = cf.RetryBackoff
	}
	if cf.ClaimTimeout > 0 {
		cfg.ClaimTimeout = cf.ClaimTimeout
	}
	if cf.ElementTimeout > 0 {
		cfg.ElementTimeout = cf.ElementTimeout
	}
	if cf.MaxFailedFiles != nil {
		cfg.MaxFailedFiles = *cf.MaxFailedFiles
	}
	if cf.ChromePath != "" {
		cfg.ChromePath = cf.ChromePath
	}
	cfg.Portal = cfg.Portal.Merge(cf.Portal)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .msefunds in the current directory
// 3. Look for .msefunds in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
