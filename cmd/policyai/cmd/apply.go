package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/policyai/policyai-go/internal/adapter/outbound/anthropic"
	"github.com/policyai/policyai-go/internal/config"
	"github.com/policyai/policyai-go/internal/domain/report"
	"github.com/policyai/policyai-go/internal/service"
	"github.com/policyai/policyai-go/internal/telemetry"
)

var (
	bundlePath string
	textPath   string
	devMode    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a policy bundle against a piece of text",
	Long: `Apply loads a YAML policy bundle (a PolicyType schema plus a list of
natural-language policies), runs the consistency-checked LLM loop against
the given text, and prints the reduced report as JSON.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&bundlePath, "bundle", "", "path to a policy bundle YAML file (required)")
	applyCmd.Flags().StringVar(&textPath, "text", "", "path to the text file to evaluate (default: stdin)")
	applyCmd.Flags().BoolVar(&devMode, "dev", false, "enable development mode (debug logging, stdout telemetry)")
	_ = applyCmd.MarkFlagRequired("bundle")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var providers *telemetry.Providers
	if cfg.Telemetry.Enabled {
		providers, err = telemetry.Setup(ctx, cfg.Telemetry.ServiceName, os.Stderr)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		defer func() {
			if err := providers.Shutdown(ctx); err != nil {
				logger.Warn("telemetry shutdown", "error", err)
			}
		}()
	}

	policies, err := loadBundle(bundlePath)
	if err != nil {
		return err
	}
	if len(policies) == 0 {
		return fmt.Errorf("bundle %s declares no policies", bundlePath)
	}

	text, err := readText(textPath)
	if err != nil {
		return err
	}

	llm := anthropic.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL)

	manager := service.NewManager(llm,
		service.WithMaxAttempts(cfg.Manager.MaxAttempts),
		service.WithMaxTokens(cfg.Manager.MaxTokens),
		service.WithLogger(logger),
	)
	for i, p := range policies {
		if err := manager.Add(p); err != nil {
			return fmt.Errorf("add policy %d: %w", i, err)
		}
	}

	usage := service.NewUsage()
	rpt, err := manager.Apply(ctx, text, usage)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	logger.Info("apply complete",
		"rules_matched", rpt.RulesMatched,
		"conflicts", len(rpt.Conflicts()),
		"errors", len(rpt.Errors()),
		"iterations", usage.Iterations(),
		"input_tokens", usage.InputTokens(),
		"output_tokens", usage.OutputTokens(),
	)

	return printReport(rpt)
}

func readText(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func printReport(rpt *report.Report) error {
	encoded, err := json.MarshalIndent(map[string]any{
		"value":         rpt.Value(),
		"rules_matched": rpt.RulesMatched,
		"conflicts":     rpt.Conflicts(),
		"errors":        rpt.Errors(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
