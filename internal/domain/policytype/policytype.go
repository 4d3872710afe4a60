package policytype

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// PolicyType is the shared, typed schema that every policy owned by a
// single Manager must agree on. Name may be namespaced with "::"
// (e.g. "policyai::EmailPolicy"). Field names within a PolicyType are
// unique; nothing in this package enforces that — the parser does, since
// hand-constructed PolicyType values (via the Go API rather than the
// surface syntax) are the caller's responsibility, matching the
// reference implementation's behavior for its own public struct literals.
type PolicyType struct {
	Name   string
	Fields []Field
}

// FieldByName returns the field with the given name, or false if absent.
func (t PolicyType) FieldByName(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Equal reports whether two PolicyTypes are structurally identical: same
// name, same fields in the same order. Used by Manager.Add to enforce
// that every policy it owns shares an identical PolicyType.
func (t PolicyType) Equal(other PolicyType) bool {
	if t.Name != other.Name || len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if !t.Fields[i].Equal(other.Fields[i]) {
			return false
		}
	}
	return true
}

// Hash returns an xxhash digest of the PolicyType's canonical rendered
// text. Manager.Add compares hashes before calling Equal: two PolicyTypes
// with different hashes are not structurally equal, so a differing type is
// rejected without a field-by-field walk, while equal hashes are still
// confirmed with Equal to rule out a collision — the same trick the
// teacher's policy evaluation cache uses on rule keys.
func (t PolicyType) Hash() uint64 {
	return xxhash.Sum64String(t.Render())
}

// Render produces the surface syntax for this PolicyType. Re-parsing the
// output must yield a structurally equal PolicyType (the round-trip
// property required by the testable-properties section of the spec).
func (t PolicyType) Render() string {
	var b strings.Builder
	b.WriteString("type ")
	b.WriteString(t.Name)
	b.WriteString(" {\n")
	for _, f := range t.Fields {
		b.WriteString("    ")
		b.WriteString(f.Render())
		b.WriteString(",\n")
	}
	b.WriteString("}")
	return b.String()
}

// String satisfies fmt.Stringer with the rendered surface syntax.
func (t PolicyType) String() string {
	return t.Render()
}

// MarshalJSON encodes a PolicyType as its rendered surface syntax, so a
// Policy embedding a PolicyType is self-describing JSON: the schema
// travels with the policy instead of being looked up by name elsewhere.
func (t PolicyType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Render())
}

// parseGrammar is supplied by the parser package's init, since parsing the
// rendered grammar back into a PolicyType requires the lexer/parser, and
// that package already imports policytype to build PolicyType values —
// policytype can't import it back without a cycle. Anything that decodes
// PolicyType or Policy JSON must import the parser package (a blank
// import is enough) so this hook is populated before UnmarshalJSON runs.
var parseGrammar func(string) (*PolicyType, error)

// RegisterParser lets the parser package register its Parse function so
// UnmarshalJSON can reparse a PolicyType's self-describing grammar.
func RegisterParser(parse func(string) (*PolicyType, error)) {
	parseGrammar = parse
}

// UnmarshalJSON decodes a PolicyType from the JSON string form MarshalJSON
// produces: the rendered grammar, re-parsed. This is the inverse of
// MarshalJSON, so a Policy whose Type field was round-tripped through JSON
// decodes back into a structurally identical PolicyType.
func (t *PolicyType) UnmarshalJSON(data []byte) error {
	var grammar string
	if err := json.Unmarshal(data, &grammar); err != nil {
		return fmt.Errorf("policytype: decode grammar string: %w", err)
	}
	if parseGrammar == nil {
		return fmt.Errorf("policytype: UnmarshalJSON needs the parser package imported to register a parser")
	}
	pt, err := parseGrammar(grammar)
	if err != nil {
		return fmt.Errorf("policytype: parse grammar: %w", err)
	}
	*t = *pt
	return nil
}
