package parser

import (
	"testing"

	"github.com/policyai/policyai-go/internal/domain/policytype"
)

func TestParseEmpty(t *testing.T) {
	pt, err := Parse("type Test { }")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if pt.Name != "Test" {
		t.Errorf("Name = %q, want %q", pt.Name, "Test")
	}
	if len(pt.Fields) != 0 {
		t.Errorf("len(Fields) = %d, want 0", len(pt.Fields))
	}
}

func TestParseNamespacedName(t *testing.T) {
	pt, err := Parse("type policyai::EmailPolicy { }")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if pt.Name != "policyai::EmailPolicy" {
		t.Errorf("Name = %q, want %q", pt.Name, "policyai::EmailPolicy")
	}
}

func TestParseBoolField(t *testing.T) {
	pt, err := Parse("type Test { active: bool = true }")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(pt.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1", len(pt.Fields))
	}
	f := pt.Fields[0]
	if f.Kind != policytype.KindBool || f.Name != "active" || f.BoolDefault != true {
		t.Errorf("field = %+v", f)
	}
}

func TestParseAllKinds(t *testing.T) {
	src := `type policyai::EmailPolicy {
		is_spam: bool @ agreement,
		score: number @ largest wins = 0.5,
		summary: string,
		priority: ["low", "medium", "high"] @ highest wins = "low",
		tags: [string],
	}`
	pt, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if pt.Name != "policyai::EmailPolicy" {
		t.Fatalf("Name = %q", pt.Name)
	}
	if len(pt.Fields) != 5 {
		t.Fatalf("len(Fields) = %d, want 5", len(pt.Fields))
	}

	isSpam, ok := pt.FieldByName("is_spam")
	if !ok || isSpam.Kind != policytype.KindBool || isSpam.OnConflict != policytype.ConflictAgreement {
		t.Errorf("is_spam = %+v", isSpam)
	}

	score, ok := pt.FieldByName("score")
	if !ok || score.Kind != policytype.KindNumber || score.OnConflict != policytype.ConflictLargestValue {
		t.Errorf("score = %+v", score)
	}
	if score.NumberDefault == nil || *score.NumberDefault != 0.5 {
		t.Errorf("score default = %v", score.NumberDefault)
	}

	summary, ok := pt.FieldByName("summary")
	if !ok || summary.Kind != policytype.KindString || summary.OnConflict != policytype.ConflictDefault {
		t.Errorf("summary = %+v", summary)
	}

	priority, ok := pt.FieldByName("priority")
	if !ok || priority.Kind != policytype.KindStringEnum || priority.OnConflict != policytype.ConflictLargestValue {
		t.Errorf("priority = %+v", priority)
	}
	if len(priority.EnumValues) != 3 || priority.EnumValues[0] != "low" {
		t.Errorf("priority enum values = %v", priority.EnumValues)
	}
	if priority.StringDefault == nil || *priority.StringDefault != "low" {
		t.Errorf("priority default = %v", priority.StringDefault)
	}

	tags, ok := pt.FieldByName("tags")
	if !ok || tags.Kind != policytype.KindStringArray {
		t.Errorf("tags = %+v", tags)
	}
}

func TestParseDuplicateFieldName(t *testing.T) {
	_, err := Parse("type Test { a: bool, a: bool }")
	if err == nil {
		t.Fatal("expected error for duplicate field name")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrDuplicateFieldName {
		t.Errorf("error = %v, want ErrDuplicateFieldName", err)
	}
}

func TestParseUnexpectedToken(t *testing.T) {
	_, err := Parse("type Test { a: nonsense }")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseUnexpectedEndOfInput(t *testing.T) {
	_, err := Parse("type Test {")
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrUnexpectedEndOfInput {
		t.Errorf("error = %v, want ErrUnexpectedEndOfInput", err)
	}
}

func TestParseMissingSeparator(t *testing.T) {
	_, err := Parse("type Test { a: bool b: bool }")
	if err == nil {
		t.Fatal("expected error for missing comma")
	}
}

func TestParseRenderRoundTrip(t *testing.T) {
	original := policytype.PolicyType{
		Name: "policyai::EmailPolicy",
		Fields: []policytype.Field{
			{Name: "is_spam", Kind: policytype.KindBool, OnConflict: policytype.ConflictAgreement},
			{Name: "tags", Kind: policytype.KindStringArray},
		},
	}
	reparsed, err := Parse(original.Render())
	if err != nil {
		t.Fatalf("Parse(Render()) error = %v", err)
	}
	if !reparsed.Equal(original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", reparsed, original)
	}
}
