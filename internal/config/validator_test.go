package config

import (
	"os"
	"testing"
)

func minimalValidConfig() *Config {
	cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-test"}}
	cfg.SetDefaults()
	return cfg
}

func TestValidateValidConfig(t *testing.T) {
	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	os.Unsetenv("ANTHROPIC_API_KEY")
	cfg := &Config{}
	cfg.SetDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing anthropic.api_key")
	}
}

func TestValidateAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
	cfg := &Config{}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error with ANTHROPIC_API_KEY set: %v", err)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for invalid log_level")
	}
}

func TestValidateRejectsNegativeMaxAttempts(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Manager.MaxAttempts = 0
	// Zero passes validation: the omitempty tag treats it as unset, and
	// SetDefaults replaces an unset value with 5 before a loaded Config is
	// validated.
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	cfg.Manager.MaxAttempts = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for negative max_attempts")
	}
}

func TestValidateRejectsBadBaseURL(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Anthropic.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for malformed anthropic.base_url")
	}
}
