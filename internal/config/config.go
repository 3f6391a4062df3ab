package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTargetKey is the JSON key whose string values are counted.
	// "model" matches the inventory dumps this tool was written for.
	DefaultTargetKey = "model"

	// DefaultProgressInterval throttles the stderr status line.
	// Five seconds keeps multi-hour scans quiet without going silent.
	DefaultProgressInterval = 5 * time.Second

	// DefaultBatchSize is the number of input files scanned concurrently
	// when more than one file is given. Each file is still scanned by a
	// single goroutine; the limit only bounds how many files are in
	// flight at once.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "modelcount"
)

// Format selects the report output format.
type Format string

// Supported report formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Config holds the effective settings for one scan run.
// It is assembled from defaults, the optional YAML config file, and CLI
// flags, in that order of precedence (flags win).
type Config struct {
	// Inputs are the file paths to scan.
	Inputs []string

	// TargetKey is the JSON key whose string values are counted.
	TargetKey string

	// ProgressInterval throttles the status line. Zero or negative
	// falls back to the default.
	ProgressInterval time.Duration

	// NoProgress disables the status line entirely.
	NoProgress bool

	// Format selects the report output format.
	Format Format

	// OutputPath writes the report to a file instead of stdout.
	OutputPath string

	// BatchSize bounds how many inputs are scanned concurrently.
	BatchSize int

	// SaveHistory stores the finished report in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		TargetKey:        DefaultTargetKey,
		ProgressInterval: DefaultProgressInterval,
		Format:           FormatText,
		BatchSize:        DefaultBatchSize,
		SaveHistory:      true,
		DBDir:            XDGDataDir(),
	}
}

// ErrNoInput is returned when no input file was given.
var ErrNoInput = errors.New("no input file provided")

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.TargetKey == "" {
		return errors.New("target key must not be empty")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("unknown report format %q", c.Format)
	}
	return nil
}

// XDGDataDir returns the XDG data directory for modelcount.
// The scan history database lives here.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG configuration directory for modelcount.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
