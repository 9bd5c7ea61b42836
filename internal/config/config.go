// Package config loads filescout configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the run-history store.
type HistoryConfig struct {
	// Enabled turns run-history recording on or off.
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database.
	DBPath string `yaml:"db_path"`
}

// Config represents filescout configuration options.
type Config struct {
	// Extensions is the closed set of target file extensions.
	Extensions []string `yaml:"extensions"`

	// PatternKeywords is the closed vocabulary of recognized pattern
	// keywords.
	PatternKeywords []string `yaml:"pattern_keywords"`

	// ConfirmThreshold is the match count above which the operator is asked
	// to confirm before copying starts.
	ConfirmThreshold int `yaml:"confirm_threshold"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// History configures the run-history store.
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with the shipped defaults.
func DefaultConfig() *Config {
	return &Config{
		Extensions:       []string{".xlsx", ".dxd", ".d7d"},
		PatternKeywords:  []string{"of", "uf", "if"},
		ConfirmThreshold: 20,
		LogLevel:         "info",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(".filescout", "history.db"),
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is not an
// error; defaults are returned. Values absent from the file keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if len(c.PatternKeywords) == 0 {
		return fmt.Errorf("pattern_keywords must not be empty")
	}
	if c.ConfirmThreshold < 1 {
		return fmt.Errorf("confirm_threshold must be at least 1, got %d", c.ConfirmThreshold)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}
