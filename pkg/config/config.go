package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Oracle (language model) configuration
	Oracle OracleConfig `mapstructure:"oracle"`

	// Explorer configuration
	Explorer ExplorerConfig `mapstructure:"explorer"`

	// Enrichment configuration
	Enrich EnrichConfig `mapstructure:"enrich"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Checkpoint configuration
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`

	// DiagnosticThreshold triggers an alert when a run degrades at least
	// this many concepts. 0 disables the check.
	DiagnosticThreshold int `mapstructure:"diagnostic_threshold"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration.
// ParquetPath enables the file-based error sink; SQLDSN additionally mirrors
// error records into a MySQL-compatible database when set.
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
	SQLDSN      string `mapstructure:"sql_dsn"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OracleConfig holds oracle configuration.
// Models maps a pipeline role ("default", "classifier", "resolver",
// "enricher", "designer", "composer") to a model configuration; roles
// without an entry fall back to "default".
type OracleConfig struct {
	Models map[string]OracleModelConfig `mapstructure:"models"`

	// MaxRetries bounds transport-level retries per oracle call
	MaxRetries int `mapstructure:"max_retries"`
}

// OracleModelConfig holds configuration for a specific model
type OracleModelConfig struct {
	Provider    string  `mapstructure:"provider"` // openai, anthropic, google, openai_compatible
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ExplorerConfig holds knowledge tree exploration limits
type ExplorerConfig struct {
	// MaxDepth bounds recursion depth (root is depth 0)
	MaxDepth int `mapstructure:"max_depth"`
	// MaxNodes bounds the total node count of a tree; 0 means unlimited
	MaxNodes int `mapstructure:"max_nodes"`
	// Concurrency bounds sibling fan-out during exploration
	Concurrency int `mapstructure:"concurrency"`
	// WallClockSeconds bounds total exploration time; 0 means unlimited
	WallClockSeconds int `mapstructure:"wall_clock_seconds"`
}

// EnrichConfig holds enrichment settings
type EnrichConfig struct {
	// Concurrency bounds parallel mathematical enrichment calls
	Concurrency int `mapstructure:"concurrency"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// CheckpointConfig holds checkpoint settings
type CheckpointConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Oracle defaults
	viper.SetDefault("oracle.models.default.provider", "openai")
	viper.SetDefault("oracle.models.default.model", "gpt-4o-mini")
	viper.SetDefault("oracle.models.default.temperature", 0.7)
	viper.SetDefault("oracle.models.default.max_tokens", 4096)
	viper.SetDefault("oracle.max_retries", 3)

	// Explorer defaults
	viper.SetDefault("explorer.max_depth", 5)
	viper.SetDefault("explorer.max_nodes", 0)
	viper.SetDefault("explorer.concurrency", 4)
	viper.SetDefault("explorer.wall_clock_seconds", 0)

	// Enrichment defaults
	viper.SetDefault("enrich.concurrency", 4)

	// Output defaults
	viper.SetDefault("output.dir", "./animations")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 120)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("checkpoint.dir", fmt.Sprintf("%s/.pedagogue/checkpoints", home))
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.pedagogue/telemetry", home))
	}
	viper.SetDefault("checkpoint.enabled", false)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if config.Oracle.Models == nil {
		config.Oracle.Models = make(map[string]OracleModelConfig)
	}

	getModel := func(name string) OracleModelConfig {
		if c, ok := config.Oracle.Models[name]; ok {
			return c
		}
		return OracleModelConfig{}
	}

	// Update default model credentials from env
	defaultModel := getModel("default")
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && (defaultModel.Provider == "openai" || defaultModel.Provider == "") {
		defaultModel.APIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" && defaultModel.Provider == "anthropic" {
		defaultModel.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" && defaultModel.Provider == "google" {
		defaultModel.APIKey = apiKey
	}
	if baseURL := os.Getenv("ORACLE_BASE_URL"); baseURL != "" {
		defaultModel.BaseURL = baseURL
	}
	if model := os.Getenv("ORACLE_MODEL"); model != "" {
		defaultModel.Model = model
	}
	config.Oracle.Models["default"] = defaultModel

	// Output settings
	if dir := os.Getenv("PEDAGOGUE_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}

	// Checkpoint settings
	if dir := os.Getenv("PEDAGOGUE_CHECKPOINT_DIR"); dir != "" {
		config.Checkpoint.Dir = dir
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
	if dsn := os.Getenv("TELEMETRY_SQL_DSN"); dsn != "" {
		config.Telemetry.SQLDSN = dsn
	}
}

// ModelFor returns the model configuration for a pipeline role, falling back
// to the "default" entry when the role has no dedicated configuration.
func (c *Config) ModelFor(role string) OracleModelConfig {
	if m, ok := c.Oracle.Models[role]; ok && m.Model != "" {
		return m
	}
	return c.Oracle.Models["default"]
}
