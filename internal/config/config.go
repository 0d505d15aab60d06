// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (OPENL_* overrides)
//  2. Config file (~/.openl-mcp/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - OpenL: base URL, credentials (basic auth or personal access token)
//   - Transport: per-call timeout, outbound rate limit
//   - Session: allow-list of response headers captured for test-session affinity
//   - Otel: optional OTLP trace export
//
// Security: credentials are never logged; MarshalJSON and String mask them.
// Validation is fail-fast with sentinel errors usable via errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultTimeoutSeconds is the transport timeout applied to every
	// remote call. The wait/poll loop layers its own deadline above it.
	DefaultTimeoutSeconds = 30

	// DefaultRateLimitRPS bounds outbound requests to the OpenL service.
	DefaultRateLimitRPS = 5

	// DefaultExecutionIDHeader is the response header OpenL uses to hand
	// out the test execution correlation id.
	DefaultExecutionIDHeader = "X-Test-Execution-Id"
)

var (
	// ErrMissingBaseURL indicates base_url is not configured.
	ErrMissingBaseURL = errors.New("missing OpenL base URL")

	// ErrInvalidBaseURL indicates base_url is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid OpenL base URL")

	// ErrIncompleteBasicAuth indicates one of username/password is set without the other.
	ErrIncompleteBasicAuth = errors.New("incomplete basic auth credentials")

	// ErrInvalidTimeout indicates timeout_seconds is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidRateLimit indicates rate_limit_rps is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrNoSessionHeaders indicates the session header allow-list is empty.
	ErrNoSessionHeaders = errors.New("empty session header allow-list")
)

// OtelConfig configures optional OTLP trace export. Tracing is disabled
// when Endpoint is empty.
type OtelConfig struct {
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, tokens), update MarshalJSON.
type Config struct {
	// OpenL Studio connection
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"` // SENSITIVE: masked in MarshalJSON
	Token    string `mapstructure:"token" json:"token"`       // SENSITIVE: masked in MarshalJSON

	// Transport behavior
	TimeoutSeconds int     `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`

	// SessionHeaders is the allow-list of response header names captured
	// from a test-start response and replayed on every poll. Set-Cookie is
	// listed here too; captured cookies are replayed via the Cookie header.
	SessionHeaders []string `mapstructure:"session_headers" json:"session_headers"`

	// Observability
	Otel OtelConfig `mapstructure:"otel" json:"otel"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".openl-mcp")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; env vars and defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("rate_limit_rps", DefaultRateLimitRPS)
	v.SetDefault("session_headers", []string{DefaultExecutionIDHeader, "Set-Cookie"})

	v.SetDefault("otel.service_name", "openl-mcp")
	v.SetDefault("otel.environment", "dev")
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a
	// runtime condition.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("base_url", "OPENL_BASE_URL")
	mustBind("username", "OPENL_USERNAME")
	mustBind("password", "OPENL_PASSWORD")
	mustBind("token", "OPENL_PERSONAL_ACCESS_TOKEN")
	mustBind("otel.endpoint", "OPENL_MCP_OTEL_ENDPOINT")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Short secrets are
// fully masked to prevent substring matching; longer ones keep the first
// and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.Password = maskSecret(a.Password)
	a.Token = maskSecret(a.Token)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
