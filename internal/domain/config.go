package domain

import (
	"fmt"
	"time"
)

// ConfigFileName is the project configuration file at a theme root.
const ConfigFileName = ".liquidlint.yaml"

// StateDir holds the cache and run history under a theme root.
const StateDir = ".liquidlint"

// DefaultFileTimeout bounds the wall-clock time spent on one file.
const DefaultFileTimeout = 10 * time.Second

// LintConfig holds project-level configuration loaded from .liquidlint.yaml.
type LintConfig struct {
	Level             ValidationLevel `yaml:"level"              json:"level,omitempty"`
	ExcludePaths      []string        `yaml:"exclude_paths"      json:"exclude_paths,omitempty"`
	MaxFiles          int             `yaml:"max_files"          json:"max_files,omitempty"`
	FileTimeout       string          `yaml:"file_timeout"       json:"file_timeout,omitempty"`
	Concurrency       int             `yaml:"concurrency"        json:"concurrency,omitempty"`
	DisabledRules     []string        `yaml:"disabled_rules"     json:"disabled_rules,omitempty"`
	ExperimentalRules bool            `yaml:"experimental_rules" json:"experimental_rules,omitempty"`
	Cache             *bool           `yaml:"cache,omitempty"    json:"cache,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() LintConfig {
	return LintConfig{Level: LevelProduction}
}

// EffectiveLevel returns the configured level, defaulting to production.
func (c LintConfig) EffectiveLevel() ValidationLevel {
	if c.Level == "" {
		return LevelProduction
	}
	return c.Level
}

// Timeout parses FileTimeout. Callers should Validate first.
func (c LintConfig) Timeout() time.Duration {
	if c.FileTimeout == "" {
		return DefaultFileTimeout
	}
	d, err := time.ParseDuration(c.FileTimeout)
	if err != nil || d <= 0 {
		return DefaultFileTimeout
	}
	return d
}

// CacheEnabled reports whether the result cache is on. It defaults to true.
func (c LintConfig) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// IsDisabled reports whether findings of the given issue type are suppressed.
func (c LintConfig) IsDisabled(issueType string) bool {
	for _, r := range c.DisabledRules {
		if r == issueType {
			return true
		}
	}
	return false
}

// Fingerprint identifies the settings that change per-file scan output.
// It keys the result cache. The level is not part of it: per-file results
// are unfiltered and the level only applies at aggregation.
func (c LintConfig) Fingerprint() string {
	return fmt.Sprintf("experimental=%t", c.ExperimentalRules)
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c LintConfig) Validate() error {
	// 1. level must be known or empty
	if c.Level != "" {
		if _, err := ParseLevel(string(c.Level)); err != nil {
			return err
		}
	}

	// 2. counts cannot be negative
	if c.MaxFiles < 0 {
		return fmt.Errorf("max_files must be >= 0, got %d", c.MaxFiles)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}

	// 3. file_timeout must parse as a positive duration
	if c.FileTimeout != "" {
		d, err := time.ParseDuration(c.FileTimeout)
		if err != nil {
			return fmt.Errorf("file_timeout %q: %w", c.FileTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("file_timeout must be positive, got %s", d)
		}
	}

	// 4. disabled rules cannot be blank
	for _, r := range c.DisabledRules {
		if r == "" {
			return fmt.Errorf("disabled_rules contains an empty entry")
		}
	}

	return nil
}
