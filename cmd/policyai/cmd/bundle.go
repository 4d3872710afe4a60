package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/policyai/policyai-go/internal/domain/policy"
	"github.com/policyai/policyai-go/internal/domain/policytype/parser"
)

// policyBundle is the on-disk shape the apply command reads: a reference
// to a .policytype schema file plus the natural-language policies to
// compose against it. File I/O and bundle formats are explicitly a CLI
// concern, not the core library's (spec.md §1 Non-goals) — the core
// takes a []policy.Policy built however the caller likes.
type policyBundle struct {
	PolicyTypeFile string        `yaml:"policy_type_file"`
	Policies       []bundleEntry `yaml:"policies"`
}

type bundleEntry struct {
	Prompt string         `yaml:"prompt"`
	Action map[string]any `yaml:"action"`
}

// loadBundle reads a YAML policy bundle and resolves it into a slice of
// policy.Policy values sharing a single parsed PolicyType. Paths inside
// the bundle are resolved relative to the bundle file's own directory.
func loadBundle(path string) ([]policy.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}

	var bundle policyBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", path, err)
	}
	if bundle.PolicyTypeFile == "" {
		return nil, fmt.Errorf("bundle %s: policy_type_file is required", path)
	}

	typeFile := bundle.PolicyTypeFile
	if !filepath.IsAbs(typeFile) {
		typeFile = filepath.Join(filepath.Dir(path), typeFile)
	}
	typeData, err := os.ReadFile(typeFile)
	if err != nil {
		return nil, fmt.Errorf("read policy type %s: %w", typeFile, err)
	}

	policyType, err := parser.Parse(string(typeData))
	if err != nil {
		return nil, fmt.Errorf("parse policy type %s: %w", typeFile, err)
	}

	policies := make([]policy.Policy, 0, len(bundle.Policies))
	for i, entry := range bundle.Policies {
		p := policy.Policy{
			Type:   *policyType,
			Prompt: entry.Prompt,
			Action: entry.Action,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("bundle %s: policy %d: %w", path, i, err)
		}
		policies = append(policies, p)
	}

	return policies, nil
}
