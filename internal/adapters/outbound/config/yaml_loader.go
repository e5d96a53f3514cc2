package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"gopkg.in/yaml.v3"
)

// YAMLLoader implements domain.ConfigLoader by reading .liquidlint.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .liquidlint.yaml from rootPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(rootPath string) (domain.LintConfig, error) {
	data, err := os.ReadFile(filepath.Join(rootPath, domain.ConfigFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.LintConfig{}, err
	}

	cfg := domain.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.LintConfig{}, fmt.Errorf("parsing %s: %w", domain.ConfigFileName, err)
	}

	// Validate the raw input so typos surface with the file name attached.
	if err := cfg.Validate(); err != nil {
		return domain.LintConfig{}, fmt.Errorf("invalid %s: %w", domain.ConfigFileName, err)
	}

	if cfg.Level == "" {
		cfg.Level = domain.LevelProduction
	}
	return cfg, nil
}
