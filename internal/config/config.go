package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Default locations of the key-value client binary and its service config
// inside the ResilientDB container image.
const (
	DefaultKVToolPath   = "/app/bazel-bin/service/tools/kv/api_tools/kv_service_tools"
	DefaultKVConfigPath = "/app/service/tools/config/interface/service.config"
)

// Config holds the configuration for the middleware.
// Environment variables are parsed from the RESLENS_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Key-value tool invocation
	KVToolPath   string `envconfig:"KV_TOOL_PATH" default:""`
	KVConfigPath string `envconfig:"KV_CONFIG_PATH" default:""`

	// Gemini analysis
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`

	// Health monitoring cadence
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults fills tool paths and falls back to the unprefixed
// GEMINI_API_KEY variable when the prefixed one is absent.
func (c *Config) ResolveDefaults() error {
	if c.KVToolPath == "" {
		c.KVToolPath = DefaultKVToolPath
	}
	if c.KVConfigPath == "" {
		c.KVConfigPath = DefaultKVConfigPath
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.HealthIntervalSeconds <= 0 {
		c.HealthIntervalSeconds = 30
	}
	if c.HealthProbeTimeoutSeconds <= 0 {
		c.HealthProbeTimeoutSeconds = 5
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with RESLENS_, e.g. RESLENS_HTTP_PORT,
// RESLENS_KV_TOOL_PATH.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("RESLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("kv_tool_path", cfg.KVToolPath).
		Str("kv_config_path", cfg.KVConfigPath).
		Bool("gemini_key_present", cfg.GeminiAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		KVToolPath:                DefaultKVToolPath,
		KVConfigPath:              DefaultKVConfigPath,
		GeminiBaseURL:             "https://generativelanguage.googleapis.com/v1beta",
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 5,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
