package service

import (
	"context"
	"fmt"

	"github.com/policyai/policyai-go/internal/domain/policy"
	"github.com/policyai/policyai-go/internal/domain/policytype"
	"github.com/policyai/policyai-go/internal/port/outbound"
)

// NaiveApplier is Manager's scientific control: it asks the same LLM
// collaborator to populate the PolicyType's native field names directly,
// using the raw (unmasked) policy prompts as its only instructions, with
// no masking, no reduction, and no consistency loop. It exists to measure
// what Manager's masking buys over a naive single tool call; the CLI does
// not use it.
type NaiveApplier struct {
	policyType policytype.PolicyType
	policies   []policy.Policy
	llm        outbound.LLMClient
	maxTokens  int
}

// NewNaiveApplier builds a NaiveApplier over policies, all of which must
// share policyType; callers are responsible for that invariant since,
// unlike Manager, NaiveApplier has no Add method to enforce it.
func NewNaiveApplier(policyType policytype.PolicyType, policies []policy.Policy, llm outbound.LLMClient) *NaiveApplier {
	return &NaiveApplier{policyType: policyType, policies: policies, llm: llm, maxTokens: defaultMaxTokens}
}

// Apply sends one unmasked tool-use request and returns its arguments as
// the LLM produced them, aside from stripping the __rule_numbers__
// book-keeping key a naive caller has no use for.
func (n *NaiveApplier) Apply(ctx context.Context, text string) (map[string]any, error) {
	messages := make([]outbound.ChatMessage, 0, len(n.policies)+1)
	for i, p := range n.policies {
		messages = append(messages, outbound.ChatMessage{
			Role: outbound.RoleUser,
			Text: fmt.Sprintf("Rule %d: %s", i+1, p.Prompt),
		})
	}
	messages = append(messages, outbound.ChatMessage{Role: outbound.RoleUser, Text: fmt.Sprintf("<text>%s</text>", text)})

	req := outbound.ChatRequest{
		System:     "Judge the text below against the numbered rules and report the resulting field values with a single output_json tool call.",
		Messages:   messages,
		ToolName:   outputToolName,
		ToolSchema: n.schema(),
		MaxTokens:  n.maxTokens,
	}
	resp, err := n.llm.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(resp.Arguments))
	for k, v := range resp.Arguments {
		if k == ruleNumbersKey {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// schema mirrors the PolicyType's own field names and kinds, unlike
// ReportBuilder.Schema, which speaks only in opaque mask tokens.
func (n *NaiveApplier) schema() map[string]any {
	properties := make(map[string]any, len(n.policyType.Fields))
	required := make([]string, 0, len(n.policyType.Fields))
	for _, f := range n.policyType.Fields {
		switch f.Kind {
		case policytype.KindBool:
			properties[f.Name] = map[string]any{"type": "boolean"}
			required = append(required, f.Name)
		case policytype.KindNumber:
			properties[f.Name] = map[string]any{"type": "number"}
		case policytype.KindString, policytype.KindStringEnum:
			properties[f.Name] = map[string]any{"type": "string"}
		case policytype.KindStringArray:
			properties[f.Name] = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		}
	}
	return map[string]any{"type": "object", "properties": properties, "required": required}
}
