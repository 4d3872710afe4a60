package policy

import (
	"encoding/json"
	"testing"

	"github.com/policyai/policyai-go/internal/domain/policytype"
	// Registers the parser package's Parse function as the hook
	// policytype.UnmarshalJSON needs.
	_ "github.com/policyai/policyai-go/internal/domain/policytype/parser"
)

func examplePolicyType() policytype.PolicyType {
	return policytype.PolicyType{
		Name: "policyai::EmailPolicy",
		Fields: []policytype.Field{
			{Name: "is_spam", Kind: policytype.KindBool, OnConflict: policytype.ConflictAgreement},
			{Name: "priority", Kind: policytype.KindStringEnum, EnumValues: []string{"low", "high"}},
		},
	}
}

func TestPolicyValidateAcceptsDeclaredFields(t *testing.T) {
	p := Policy{
		Type:   examplePolicyType(),
		Prompt: "flag unsolicited marketing email",
		Action: map[string]any{"is_spam": true, "priority": "high"},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestPolicyValidateIgnoresUnknownField(t *testing.T) {
	p := Policy{
		Type:   examplePolicyType(),
		Action: map[string]any{"not_a_field": true},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil: an action key naming no field is ignored, not rejected", err)
	}
}

func TestPolicyValidateRejectsUndeclaredEnumValue(t *testing.T) {
	p := Policy{
		Type:   examplePolicyType(),
		Action: map[string]any{"priority": "critical"},
	}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for undeclared enum value")
	}
}

func TestPolicyJSONInlinesPolicyType(t *testing.T) {
	p := Policy{Type: examplePolicyType(), Prompt: "x", Action: map[string]any{"is_spam": true}}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["type"].(string); !ok {
		t.Errorf("expected inlined type to be a rendered string, got %T", decoded["type"])
	}
}

func TestPolicyJSONRoundTrip(t *testing.T) {
	want := Policy{
		Type:   examplePolicyType(),
		Prompt: "flag unsolicited marketing email",
		Action: map[string]any{"is_spam": true, "priority": "high"},
	}

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Policy
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !got.Type.Equal(want.Type) {
		t.Errorf("round-tripped Type = %+v, want %+v", got.Type, want.Type)
	}
	if got.Prompt != want.Prompt {
		t.Errorf("round-tripped Prompt = %q, want %q", got.Prompt, want.Prompt)
	}
	if got.Action["is_spam"] != true || got.Action["priority"] != "high" {
		t.Errorf("round-tripped Action = %v, want %v", got.Action, want.Action)
	}
}
