package config

import "testing"

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Manager.MaxAttempts != 5 {
		t.Errorf("Manager.MaxAttempts = %d, want 5", cfg.Manager.MaxAttempts)
	}
	if cfg.Manager.MaxTokens != 2048 {
		t.Errorf("Manager.MaxTokens = %d, want 2048", cfg.Manager.MaxTokens)
	}
	if cfg.Anthropic.Model == "" {
		t.Error("Anthropic.Model = \"\", want a non-empty default")
	}
	if cfg.Telemetry.ServiceName != "policyai" {
		t.Errorf("Telemetry.ServiceName = %q, want %q", cfg.Telemetry.ServiceName, "policyai")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestSetDefaultsPreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Manager:   ManagerConfig{MaxAttempts: 3, MaxTokens: 512},
		Anthropic: AnthropicConfig{Model: "claude-haiku-4-5"},
		LogLevel:  "debug",
	}
	cfg.SetDefaults()

	if cfg.Manager.MaxAttempts != 3 {
		t.Errorf("Manager.MaxAttempts = %d, want 3 (explicit value overwritten)", cfg.Manager.MaxAttempts)
	}
	if cfg.Anthropic.Model != "claude-haiku-4-5" {
		t.Errorf("Anthropic.Model = %q, want %q", cfg.Anthropic.Model, "claude-haiku-4-5")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestSetDevDefaultsNoopUnlessDevMode(t *testing.T) {
	t.Parallel()

	cfg := Config{LogLevel: "info"}
	cfg.SetDevDefaults()
	if cfg.LogLevel != "info" || cfg.Telemetry.Enabled {
		t.Errorf("SetDevDefaults changed a non-dev-mode Config: %+v", cfg)
	}
}

func TestSetDevDefaultsEnablesTelemetryAndDebugLogging(t *testing.T) {
	t.Parallel()

	cfg := Config{DevMode: true}
	cfg.SetDevDefaults()
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true in dev mode")
	}
}
