package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, domain.LevelProduction, cfg.Level)
	assert.Empty(t, cfg.ExcludePaths)
	assert.Empty(t, cfg.DisabledRules)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, domain.DefaultFileTimeout, cfg.Timeout())
	assert.NoError(t, cfg.Validate())
}

func TestLintConfig_EffectiveLevel(t *testing.T) {
	assert.Equal(t, domain.LevelProduction, domain.LintConfig{}.EffectiveLevel())
	assert.Equal(t, domain.LevelUltimate, domain.LintConfig{Level: domain.LevelUltimate}.EffectiveLevel())
}

func TestLintConfig_Timeout(t *testing.T) {
	assert.Equal(t, 2*time.Second, domain.LintConfig{FileTimeout: "2s"}.Timeout())
	assert.Equal(t, domain.DefaultFileTimeout, domain.LintConfig{FileTimeout: "soon"}.Timeout())
}

func TestLintConfig_CacheEnabled(t *testing.T) {
	off := false
	on := true
	assert.False(t, domain.LintConfig{Cache: &off}.CacheEnabled())
	assert.True(t, domain.LintConfig{Cache: &on}.CacheEnabled())
}

func TestLintConfig_IsDisabled(t *testing.T) {
	cfg := domain.LintConfig{DisabledRules: []string{"hardcoded_route"}}
	assert.True(t, cfg.IsDisabled("hardcoded_route"))
	assert.False(t, cfg.IsDisabled("invalid_tag"))
}

func TestLintConfig_Fingerprint(t *testing.T) {
	base := domain.LintConfig{}
	assert.Equal(t, base.Fingerprint(), domain.LintConfig{Level: domain.LevelProduction, MaxFiles: 3}.Fingerprint())
	assert.Equal(t, base.Fingerprint(), domain.LintConfig{Level: domain.LevelUltimate}.Fingerprint())
	assert.NotEqual(t, base.Fingerprint(), domain.LintConfig{ExperimentalRules: true}.Fingerprint())
}

func TestLintConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.LintConfig
		want string
	}{
		{"unknown level", domain.LintConfig{Level: "strict"}, "unknown level"},
		{"negative max files", domain.LintConfig{MaxFiles: -1}, "max_files"},
		{"negative concurrency", domain.LintConfig{Concurrency: -2}, "concurrency"},
		{"bad timeout", domain.LintConfig{FileTimeout: "ten"}, "file_timeout"},
		{"zero timeout", domain.LintConfig{FileTimeout: "0s"}, "file_timeout"},
		{"blank rule", domain.LintConfig{DisabledRules: []string{""}}, "disabled_rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.cfg.Validate(), tt.want)
		})
	}
}
