package policytype

import (
	"encoding/json"
	"testing"

	// Registers the parser package's Parse function as the hook
	// UnmarshalJSON needs; see RegisterParser.
	_ "github.com/policyai/policyai-go/internal/domain/policytype/parser"
)

func TestPolicyTypeRenderRoundTripShape(t *testing.T) {
	pt := PolicyType{
		Name: "policyai::EmailPolicy",
		Fields: []Field{
			{Name: "is_spam", Kind: KindBool, OnConflict: ConflictAgreement},
			{Name: "priority", Kind: KindStringEnum, EnumValues: []string{"low", "high"}, StringDefault: ptrStr("low")},
		},
	}
	got := pt.Render()
	want := "type policyai::EmailPolicy {\n    is_spam: bool @ agreement,\n    priority: [\"low\", \"high\"] = \"low\",\n}"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestPolicyTypeEqual(t *testing.T) {
	a := PolicyType{Name: "T", Fields: []Field{{Name: "x", Kind: KindBool}}}
	b := PolicyType{Name: "T", Fields: []Field{{Name: "x", Kind: KindBool}}}
	c := PolicyType{Name: "T", Fields: []Field{{Name: "y", Kind: KindBool}}}
	if !a.Equal(b) {
		t.Error("expected equal PolicyTypes to be equal")
	}
	if a.Equal(c) {
		t.Error("expected differing field names to be unequal")
	}
}

func TestPolicyTypeHashStableAndSensitive(t *testing.T) {
	a := PolicyType{Name: "T", Fields: []Field{{Name: "x", Kind: KindBool}}}
	b := PolicyType{Name: "T", Fields: []Field{{Name: "x", Kind: KindBool}}}
	c := PolicyType{Name: "T", Fields: []Field{{Name: "x", Kind: KindNumber}}}
	if a.Hash() != b.Hash() {
		t.Error("expected identical PolicyTypes to hash identically")
	}
	if a.Hash() == c.Hash() {
		t.Error("expected differing PolicyTypes to hash differently")
	}
}

func TestPolicyTypeJSONRoundTrip(t *testing.T) {
	want := PolicyType{
		Name: "policyai::EmailPolicy",
		Fields: []Field{
			{Name: "is_spam", Kind: KindBool, OnConflict: ConflictAgreement},
			{Name: "priority", Kind: KindStringEnum, EnumValues: []string{"low", "high"}, StringDefault: ptrStr("low")},
		},
	}

	encoded, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got PolicyType
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestPolicyTypeFieldByName(t *testing.T) {
	pt := PolicyType{Name: "T", Fields: []Field{{Name: "x", Kind: KindBool}}}
	if f, ok := pt.FieldByName("x"); !ok || f.Name != "x" {
		t.Error("expected to find field x")
	}
	if _, ok := pt.FieldByName("missing"); ok {
		t.Error("expected missing field to not be found")
	}
}
