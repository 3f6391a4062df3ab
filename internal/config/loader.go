package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".modelcount"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file shape. Every field is optional;
// zero values leave the corresponding Config default untouched.
type File struct {
	// TargetKey overrides the default JSON key to count.
	TargetKey string `yaml:"target_key"`

	// ProgressInterval overrides the status line throttle as a Go
	// duration string, e.g. "10s" or "1m". YAML cannot decode into
	// time.Duration directly, so the value is parsed in Apply.
	ProgressInterval string `yaml:"progress_interval"`

	// Format overrides the default report format.
	Format string `yaml:"format"`

	// SaveHistory controls whether finished scans are stored in the
	// history database.
	SaveHistory *bool `yaml:"save_history"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
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

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .modelcount in the current directory
// 3. Look for .modelcount in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply overlays the file's settings onto cfg. Only fields that were set
// in the file change cfg; flag handling in the cmd layer runs afterwards
// and takes precedence over both.
func (f *File) Apply(cfg *Config) error {
	if f.TargetKey != "" {
		cfg.TargetKey = f.TargetKey
	}
	if f.ProgressInterval != "" {
		d, err := time.ParseDuration(f.ProgressInterval)
		if err != nil {
			return fmt.Errorf("invalid progress_interval: %w", err)
		}
		cfg.ProgressInterval = d
	}
	if f.Format != "" {
		cfg.Format = Format(f.Format)
	}
	if f.SaveHistory != nil {
		cfg.SaveHistory = *f.SaveHistory
	}
	return nil
}
