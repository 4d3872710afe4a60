// Package policy contains the domain types for a single composable
// policy: the typed schema it extracts into, the natural-language prompt
// an LLM judges a policy's match criteria against, and the structured
// action it contributes when it matches.
package policy

import (
	"fmt"

	"github.com/policyai/policyai-go/internal/domain/policytype"
)

// Policy pairs a PolicyType with the natural-language prompt that decides
// whether it applies to a given piece of unstructured data, and the
// action (a JSON object shaped by the PolicyType's fields) it contributes
// when it does. Every Policy a single Manager owns must share an
// identical PolicyType; Manager.Add enforces this.
type Policy struct {
	Type   policytype.PolicyType `json:"type"`
	Prompt string                `json:"prompt"`
	Action map[string]any        `json:"action"`
}

// Validate checks that, for every Action key that names a declared field,
// a string-enum action only selects a declared value. Action keys that
// don't match any field on the type are ignored, not rejected: a policy
// targets one of several PolicyTypes a caller juggles at once, and an
// action written for a sibling type should compose harmlessly rather than
// fail fast.
func (p Policy) Validate() error {
	for name, value := range p.Action {
		field, ok := p.Type.FieldByName(name)
		if !ok {
			continue
		}
		if field.Kind == policytype.KindStringEnum {
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("policy action for enum field %q must be a string, got %T", name, value)
			}
			if !containsString(field.EnumValues, s) {
				return fmt.Errorf("policy action for enum field %q selects %q, which is not one of %v", name, s, field.EnumValues)
			}
		}
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
