package anthropic

import (
	"testing"

	"github.com/policyai/policyai-go/internal/port/outbound"
)

func TestToolParamBuildsRequiredFromStringSlice(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"fpXHcCM": map[string]any{"type": "boolean"},
		},
		"required": []string{"fpXHcCM"},
	}

	tool, err := toolParam("output_json", schema)
	if err != nil {
		t.Fatalf("toolParam() error = %v", err)
	}
	if tool.Name != "output_json" {
		t.Errorf("Name = %q, want %q", tool.Name, "output_json")
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "fpXHcCM" {
		t.Errorf("Required = %v, want [fpXHcCM]", tool.InputSchema.Required)
	}
}

func TestToolParamBuildsRequiredFromAnySlice(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{},
		"required":   []any{"a", "b"},
	}

	tool, err := toolParam("output_json", schema)
	if err != nil {
		t.Fatalf("toolParam() error = %v", err)
	}
	if len(tool.InputSchema.Required) != 2 {
		t.Errorf("Required = %v, want 2 entries", tool.InputSchema.Required)
	}
}

func TestToolParamRejectsNonStringRequiredEntry(t *testing.T) {
	schema := map[string]any{
		"required": []any{1},
	}
	if _, err := toolParam("output_json", schema); err == nil {
		t.Error("toolParam() = nil error, want error for non-string required entry")
	}
}

func TestToMessageParamsPreservesOrderAndRole(t *testing.T) {
	messages := []outbound.ChatMessage{
		{Role: outbound.RoleUser, Text: "<default>{}</default>"},
		{Role: outbound.RoleAssistant, Text: `{"ok":true}`},
		{Role: outbound.RoleUser, Text: "<text>hello</text>"},
	}

	params := toMessageParams(messages)
	if len(params) != 3 {
		t.Fatalf("len(params) = %d, want 3", len(params))
	}
	if params[0].Role != "user" || params[1].Role != "assistant" || params[2].Role != "user" {
		t.Errorf("roles = %v, %v, %v; want user, assistant, user", params[0].Role, params[1].Role, params[2].Role)
	}
}
