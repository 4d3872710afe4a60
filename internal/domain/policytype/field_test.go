package policytype

import "testing"

func ptrF64(v float64) *float64 { return &v }
func ptrStr(v string) *string   { return &v }

func TestFieldDefaultValue(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  any
	}{
		{"bool true", Field{Kind: KindBool, BoolDefault: true}, true},
		{"bool false", Field{Kind: KindBool, BoolDefault: false}, false},
		{"string with default", Field{Kind: KindString, StringDefault: ptrStr("test")}, "test"},
		{"string no default", Field{Kind: KindString}, nil},
		{"enum with default", Field{Kind: KindStringEnum, StringDefault: ptrStr("low"), EnumValues: []string{"low", "high"}}, "low"},
		{"array always empty", Field{Kind: KindStringArray, Name: "tags"}, []string{}},
		{"number with default", Field{Kind: KindNumber, NumberDefault: ptrF64(42.5)}, 42.5},
		{"number no default", Field{Kind: KindNumber}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.field.DefaultValue()
			if arr, ok := tt.want.([]string); ok {
				gotArr, ok := got.([]string)
				if !ok || len(gotArr) != len(arr) {
					t.Fatalf("DefaultValue() = %#v, want %#v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("DefaultValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFieldRenderBool(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Name: "is_active", Kind: KindBool, BoolDefault: true}, "is_active: bool = true"},
		{Field{Name: "is_active", Kind: KindBool, BoolDefault: false}, "is_active: bool"},
		{Field{Name: "is_active", Kind: KindBool, BoolDefault: true, OnConflict: ConflictAgreement}, "is_active: bool @ agreement = true"},
		{Field{Name: "is_active", Kind: KindBool, BoolDefault: false, OnConflict: ConflictLargestValue}, "is_active: bool @ sticky"},
	}
	for _, tt := range tests {
		if got := tt.field.Render(); got != tt.want {
			t.Errorf("Render() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldRenderString(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Name: "description", Kind: KindString, StringDefault: ptrStr("default text")}, `description: string = "default text"`},
		{Field{Name: "description", Kind: KindString, OnConflict: ConflictAgreement}, "description: string @ agreement"},
		{Field{Name: "description", Kind: KindString, StringDefault: ptrStr("test"), OnConflict: ConflictLargestValue}, `description: string @ last wins = "test"`},
	}
	for _, tt := range tests {
		if got := tt.field.Render(); got != tt.want {
			t.Errorf("Render() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldRenderStringEnum(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{
			Field{Name: "priority", Kind: KindStringEnum, EnumValues: []string{"low", "medium", "high"}, StringDefault: ptrStr("medium")},
			`priority: ["low", "medium", "high"] = "medium"`,
		},
		{
			Field{Name: "priority", Kind: KindStringEnum, EnumValues: []string{"low", "high"}, OnConflict: ConflictLargestValue},
			`priority: ["low", "high"] @ highest wins`,
		},
	}
	for _, tt := range tests {
		if got := tt.field.Render(); got != tt.want {
			t.Errorf("Render() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldRenderStringArray(t *testing.T) {
	f := Field{Name: "tags", Kind: KindStringArray}
	if got := f.Render(); got != "tags: [string]" {
		t.Errorf("Render() = %q, want %q", got, "tags: [string]")
	}
}

func TestFieldRenderNumber(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Name: "score", Kind: KindNumber, NumberDefault: ptrF64(42.5)}, "score: number = 42.5"},
		{Field{Name: "score", Kind: KindNumber, OnConflict: ConflictAgreement}, "score: number @ agreement"},
	}
	for _, tt := range tests {
		if got := tt.field.Render(); got != tt.want {
			t.Errorf("Render() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldEqual(t *testing.T) {
	a := Field{Name: "x", Kind: KindNumber, NumberDefault: ptrF64(1)}
	b := Field{Name: "x", Kind: KindNumber, NumberDefault: ptrF64(1)}
	c := Field{Name: "x", Kind: KindNumber, NumberDefault: ptrF64(2)}
	if !a.Equal(b) {
		t.Error("expected equal fields to be equal")
	}
	if a.Equal(c) {
		t.Error("expected differing defaults to be unequal")
	}
}
