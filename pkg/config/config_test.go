package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	def := cfg.Oracle.Models["default"]
	assert.Equal(t, "openai", def.Provider)
	assert.Equal(t, "gpt-4o-mini", def.Model)
	assert.Equal(t, 3, cfg.Oracle.MaxRetries)

	assert.Equal(t, 5, cfg.Explorer.MaxDepth)
	assert.Equal(t, 4, cfg.Explorer.Concurrency)
	assert.Equal(t, 0, cfg.Explorer.MaxNodes)

	assert.Equal(t, "./animations", cfg.Output.Dir)
	assert.False(t, cfg.Checkpoint.Enabled)
	assert.False(t, cfg.CircuitBreaker.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ORACLE_MODEL", "gpt-4o")
	t.Setenv("ORACLE_BASE_URL", "http://localhost:8000")
	t.Setenv("PEDAGOGUE_OUTPUT_DIR", "/tmp/out")
	t.Setenv("TELEMETRY_SQL_DSN", "user:pass@tcp(localhost:3306)/telemetry")

	cfg, err := Load()
	require.NoError(t, err)

	def := cfg.Oracle.Models["default"]
	assert.Equal(t, "sk-test", def.APIKey)
	assert.Equal(t, "gpt-4o", def.Model)
	assert.Equal(t, "http://localhost:8000", def.BaseURL)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/telemetry", cfg.Telemetry.SQLDSN)
}

func TestModelForFallsBackToDefault(t *testing.T) {
	cfg := &Config{
		Oracle: OracleConfig{
			Models: map[string]OracleModelConfig{
				"default":  {Provider: "openai", Model: "gpt-4o-mini"},
				"composer": {Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
			},
		},
	}

	assert.Equal(t, "claude-sonnet-4-20250514", cfg.ModelFor("composer").Model)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelFor("classifier").Model)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelFor("default").Model)
}
