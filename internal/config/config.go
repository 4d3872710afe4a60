// Package config provides configuration types for the PolicyAI CLI.
//
// The core library (internal/domain, internal/service) takes no
// dependency on this package — it is driven entirely through exported
// Go constructors. Config exists only to let the CLI load a Manager's
// knobs, its LLM adapter credentials, and telemetry toggles from a YAML
// file or environment variables, the way the teacher's OSS config layer
// loads its own server settings.
package config

// Config is the top-level configuration for the policyai CLI.
type Config struct {
	// Manager configures the consistency-loop budget shared by every
	// Manager the CLI constructs.
	Manager ManagerConfig `yaml:"manager" mapstructure:"manager"`

	// Anthropic configures the concrete LLM adapter.
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`

	// Telemetry configures the OTel/Prometheus stdout exporters.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// LogLevel sets the minimum slog level.
	// Valid values: "debug", "info", "warn" (or "warning"), "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// DevMode enables verbose logging and pretty-printed telemetry output.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ManagerConfig configures the consistency loop (spec §4.7, §7).
type ManagerConfig struct {
	// MaxAttempts bounds the consistency loop's LLM round trips.
	// Defaults to 5.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,min=1"`

	// MaxTokens is the per-request completion token ceiling passed to
	// the LLM client. Defaults to 2048.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens" validate:"omitempty,min=1"`
}

// AnthropicConfig configures the anthropic-sdk-go adapter.
type AnthropicConfig struct {
	// APIKey authenticates against the Anthropic Messages API.
	// Falls back to the ANTHROPIC_API_KEY environment variable the SDK
	// itself reads if left empty here.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Model is the Claude model name to request (e.g. "claude-sonnet-4-5").
	Model string `yaml:"model" mapstructure:"model"`

	// BaseURL overrides the API endpoint, for testing against a local
	// stand-in or a proxy.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
}

// TelemetryConfig configures the OTel tracer/meter stdout exporters.
type TelemetryConfig struct {
	// Enabled turns on the stdout trace/metric exporters. Default false:
	// the CLI is silent unless asked for telemetry.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// ServiceName tags the exported resource. Defaults to "policyai".
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Manager.MaxAttempts == 0 {
		c.Manager.MaxAttempts = 5
	}
	if c.Manager.MaxTokens == 0 {
		c.Manager.MaxTokens = 2048
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "policyai"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// SetDevDefaults applies permissive defaults for development mode,
// applied before validation so a bare `policyai apply` works without a
// config file beyond an API key. Mirrors the teacher's dev-mode
// convenience defaults, narrowed to what this CLI actually needs.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.LogLevel = "debug"
	c.Telemetry.Enabled = true
}
