package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/policyai/policyai-go/internal/domain/policytype/parser"
)

var policytypeCmd = &cobra.Command{
	Use:   "policytype",
	Short: "Inspect PolicyType schema files",
}

var policytypeParseCmd = &cobra.Command{
	Use:   "parse <file.policytype>",
	Short: "Parse a .policytype grammar file and print its JSON form",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolicytypeParse,
}

var policytypeRenderCmd = &cobra.Command{
	Use:   "render <file.json>",
	Short: "Decode a PolicyType's self-describing JSON form and print its canonical grammar",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolicytypeRender,
}

func init() {
	policytypeCmd.AddCommand(policytypeParseCmd, policytypeRenderCmd)
	rootCmd.AddCommand(policytypeCmd)
}

func runPolicytypeParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	pt, err := parser.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	encoded, err := json.MarshalIndent(pt, "", "  ")
	if err != nil {
		return fmt.Errorf("encode policy type: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func runPolicytypeRender(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	// PolicyType.MarshalJSON encodes a PolicyType as its rendered grammar
	// wrapped in a JSON string, so decoding here is just unquoting.
	var grammar string
	if err := json.Unmarshal(data, &grammar); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	pt, err := parser.Parse(grammar)
	if err != nil {
		return fmt.Errorf("render %s: %w", args[0], err)
	}
	fmt.Println(pt.Render())
	return nil
}
