// Package cmd provides the CLI commands for PolicyAI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/policyai/policyai-go/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "policyai",
	Short: "PolicyAI - LLM-backed policy composition engine",
	Long: `PolicyAI applies a set of natural-language policies against a piece of
unstructured text and reduces the result into a single typed report,
driving an LLM through a masked, self-consistency-checked tool call so
its output can be trusted without the LLM ever seeing field names.

Quick start:
  1. Describe your schema: policyai policytype parse schema.policytype
  2. Write a policy bundle: policies.yaml (policy_type_file + policies)
  3. Run: policyai apply --bundle policies.yaml --text input.txt

Configuration:
  Config is loaded from policyai.yaml in the current directory,
  $HOME/.policyai/, or /etc/policyai/.

  Environment variables can override config values with the POLICYAI_ prefix.
  Example: POLICYAI_ANTHROPIC_API_KEY=sk-ant-...

Commands:
  apply              Apply a policy bundle against a piece of text
  policytype parse   Parse a .policytype schema file and print it back
  policytype render  Render a schema back into its canonical grammar
  version            Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./policyai.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
