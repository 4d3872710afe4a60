package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/policyai/policyai-go/internal/domain/mask"
	"github.com/policyai/policyai-go/internal/domain/policy"
	"github.com/policyai/policyai-go/internal/domain/policytype"
	"github.com/policyai/policyai-go/internal/domain/report"
)

// ruleNumbersKey is the IR's mandatory book-keeping property: the LLM's
// own account of which 1-based policy indices it judged to match.
const ruleNumbersKey = "__rule_numbers__"

// ReportBuilder assembles, for one Manager.Apply call, the mask set, the
// output JSON schema, and the masked rule prose for every owned policy,
// then reduces a tool-use response (the IR) through those masks into a
// Report. It is built once per call and discarded afterward; ConsumeIR
// may be called more than once against the same builder state (the
// consistency loop calls it once per attempt).
type ReportBuilder struct {
	policyType policytype.PolicyType

	boolMasks        []mask.BoolMask
	numberMasks      []mask.NumberMask
	stringMasks      []mask.StringMask
	stringArrayMasks []mask.StringArrayMask
	stringEnumMasks  []mask.StringEnumMask

	masksByIndex map[int][]string
	ruleMessages []string
	defaultReturn map[string]any
	required      map[string]bool
	properties    map[string]any
}

// NewReportBuilder allocates masks for every policy in policies (1-based
// rule numbering, matching the order policies are supplied in) using gen
// to draw mask tokens. All policies must share an identical PolicyType;
// Manager enforces this before calling NewReportBuilder.
func NewReportBuilder(policyType policytype.PolicyType, policies []policy.Policy, gen *mask.Generator) (*ReportBuilder, error) {
	b := &ReportBuilder{
		policyType:    policyType,
		masksByIndex:  make(map[int][]string),
		defaultReturn: make(map[string]any),
		required:      map[string]bool{ruleNumbersKey: true},
		properties:    map[string]any{ruleNumbersKey: map[string]any{"type": "array", "items": map[string]any{"type": "number"}}},
	}
	for i, p := range policies {
		ruleNumber := i + 1
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("policy %d: %w", ruleNumber, err)
		}
		if err := b.addPolicy(ruleNumber, p, gen); err != nil {
			return nil, fmt.Errorf("policy %d: %w", ruleNumber, err)
		}
	}
	return b, nil
}

func (b *ReportBuilder) addPolicy(ruleNumber int, p policy.Policy, gen *mask.Generator) error {
	prompt := p.Prompt

	// Walk the type's fields, not the action map: field order is fixed
	// (mask tokens must be assigned deterministically), and a field with
	// no corresponding action entry is simply skipped, the same as an
	// action entry naming no field is simply ignored.
	for _, field := range p.Type.Fields {
		name := field.Name
		value, ok := p.Action[name]
		if !ok {
			continue
		}
		token := gen.Generate()
		b.masksByIndex[ruleNumber] = append(b.masksByIndex[ruleNumber], token)
		prompt = strings.ReplaceAll(prompt, strconv.Quote(name), strconv.Quote(token))

		switch field.Kind {
		case policytype.KindBool:
			isTrue, ok := value.(bool)
			if !ok {
				return fmt.Errorf("field %q expects a bool action value, got %T", name, value)
			}
			b.boolMasks = append(b.boolMasks, mask.BoolMask{
				PolicyIndex: ruleNumber, Name: name, Mask: token,
				Default: field.BoolDefault, IsTrue: isTrue, OnConflict: field.OnConflict,
			})
			b.addProperty(token, "boolean", true)
			b.defaultReturn[token] = !isTrue

		case policytype.KindNumber:
			n, ok := toFloat(value)
			if !ok {
				return fmt.Errorf("field %q expects a number action value, got %T", name, value)
			}
			b.numberMasks = append(b.numberMasks, mask.NumberMask{
				PolicyIndex: ruleNumber, Name: name, Mask: token,
				Default: field.NumberDefault, OnConflict: field.OnConflict,
			})
			required := field.NumberDefault != nil
			b.addProperty(token, "number", required)
			b.defaultReturn[token] = n

		case policytype.KindString:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("field %q expects a string action value, got %T", name, value)
			}
			b.stringMasks = append(b.stringMasks, mask.StringMask{
				PolicyIndex: ruleNumber, Name: name, Mask: token,
				Default: field.StringDefault, OnConflict: field.OnConflict,
			})
			required := field.StringDefault != nil
			b.addProperty(token, "string", required)
			b.defaultReturn[token] = s

		case policytype.KindStringEnum:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("field %q expects a string action value, got %T", name, value)
			}
			prompt = strings.ReplaceAll(prompt, strconv.Quote(s), "true")
			b.stringEnumMasks = append(b.stringEnumMasks, mask.StringEnumMask{
				PolicyIndex: ruleNumber, Name: name, Mask: token,
				Value: s, Default: field.StringDefault, OnConflict: field.OnConflict,
			})
			required := field.StringDefault != nil
			b.addProperty(token, "boolean", required)
			b.defaultReturn[token] = false

		case policytype.KindStringArray:
			arr, ok := toStringSlice(value)
			if !ok {
				return fmt.Errorf("field %q expects a [string] action value, got %T", name, value)
			}
			b.stringArrayMasks = append(b.stringArrayMasks, mask.StringArrayMask{
				PolicyIndex: ruleNumber, Name: name, Mask: token,
			})
			_ = arr
			b.addProperty(token, "array-of-string", false)
			b.defaultReturn[token] = []string{}
		}
	}

	b.ruleMessages = append(b.ruleMessages, fmt.Sprintf("Rule %d: %s", ruleNumber, prompt))
	return nil
}

func (b *ReportBuilder) addProperty(token, jsonType string, required bool) {
	if jsonType == "array-of-string" {
		b.properties[token] = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	} else {
		b.properties[token] = map[string]any{"type": jsonType}
	}
	if required {
		b.required[token] = true
	}
}

// Schema returns the JSON schema the forced output_json tool call must
// satisfy: one property per mask plus __rule_numbers__.
func (b *ReportBuilder) Schema() map[string]any {
	required := make([]string, 0, len(b.required))
	for k := range b.required {
		required = append(required, k)
	}
	sort.Strings(required)
	return map[string]any{
		"type":       "object",
		"properties": b.properties,
		"required":   required,
	}
}

// DefaultReturn returns the object a Manager shows the LLM as "emit this
// unless a rule overrides it" — the <default> block of the chat request.
func (b *ReportBuilder) DefaultReturn() map[string]any {
	return b.defaultReturn
}

// RuleMessages returns the masked rule prose, one string per policy, in
// rule-number order.
func (b *ReportBuilder) RuleMessages() []string {
	return b.ruleMessages
}

// MasksByIndex returns, for a 1-based rule number, every mask token
// allocated to that policy. Used by the consistency loop to phrase
// corrective instructions ("set mask M ...") per offending rule.
func (b *ReportBuilder) MasksByIndex(ruleNumber int) []string {
	return b.masksByIndex[ruleNumber]
}

// ConsumeIR reduces ir through every mask this builder allocated, in
// kind order (bool, number, string, string-array, string-enum), seeding
// every PolicyType field's declared default first so fields no policy
// touches still surface their default in the resulting Report's Value().
func (b *ReportBuilder) ConsumeIR(ir mask.IR) *report.Report {
	r := report.New()
	for _, f := range b.policyType.Fields {
		r.SeedDefault(f.Name, f.DefaultValue())
	}
	for _, m := range b.boolMasks {
		m.ApplyTo(ir, r)
	}
	for _, m := range b.numberMasks {
		m.ApplyTo(ir, r)
	}
	for _, m := range b.stringMasks {
		m.ApplyTo(ir, r)
	}
	for _, m := range b.stringArrayMasks {
		m.ApplyTo(ir, r)
	}
	for _, m := range b.stringEnumMasks {
		m.ApplyTo(ir, r)
	}
	return r
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toStringSlice(v any) ([]string, bool) {
	switch arr := v.(type) {
	case []string:
		return arr, true
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
