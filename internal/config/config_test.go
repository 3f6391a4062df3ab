package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig verifies the default values. This serves as living
// documentation of the defaults; changes to them must be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default TargetKey is model", func(t *testing.T) {
		t.Parallel()
		if cfg.TargetKey != "model" {
			t.Errorf("expected TargetKey to be 'model', got %q", cfg.TargetKey)
		}
	})

	t.Run("default ProgressInterval is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ProgressInterval != 5*time.Second {
			t.Errorf("expected ProgressInterval to be 5s, got %v", cfg.ProgressInterval)
		}
	})

	t.Run("default Format is text", func(t *testing.T) {
		t.Parallel()
		if cfg.Format != FormatText {
			t.Errorf("expected Format to be text, got %q", cfg.Format)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default SaveHistory is true", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
	})

	t.Run("default DBDir is under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Inputs = []string{"input.json"}
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("no inputs", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.Inputs = nil
		if err := cfg.Validate(); !errors.Is(err, ErrNoInput) {
			t.Errorf("expected ErrNoInput, got %v", err)
		}
	})

	t.Run("empty target key", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.TargetKey = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty target key")
		}
	})

	t.Run("batch size below one", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.BatchSize = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero batch size")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.Format = Format("xml")
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("XDGDataDir returned empty path")
	}
	if XDGConfigDir() == "" {
		t.Error("XDGConfigDir returned empty path")
	}
}
