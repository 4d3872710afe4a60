package policytype

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind discriminates the five closed field variants a PolicyType can
// declare. Dispatch is by exhaustive switch on Kind rather than by
// subclassing or an interface-per-kind: the set is small, closed, and the
// reducer must pattern-match on both the incoming JSON shape and the field
// kind simultaneously.
type FieldKind int

const (
	// KindBool is a boolean field.
	KindBool FieldKind = iota
	// KindNumber is a floating-point numeric field.
	KindNumber
	// KindString is a free-form string field.
	KindString
	// KindStringEnum is a string field constrained to a fixed set of values.
	KindStringEnum
	// KindStringArray is an append-only array of strings; it has no default
	// and no conflict strategy.
	KindStringArray
)

// String returns a short name for the kind ("bool", "number", "string",
// "enum", "array"). Render does not use it; it spells each kind's surface
// syntax itself.
func (k FieldKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindStringEnum:
		return "enum"
	case KindStringArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field is a single named field of a PolicyType. It carries a Kind
// discriminator plus the attributes relevant to that kind; attributes that
// don't apply to a given Kind are left at their zero value.
type Field struct {
	Name string
	Kind FieldKind

	// BoolDefault is meaningful only when Kind == KindBool. Bool fields
	// always have a default (spec: "default: bool (required)").
	BoolDefault bool

	// NumberDefault is meaningful only when Kind == KindNumber. Nil means
	// no default was declared.
	NumberDefault *float64

	// StringDefault is meaningful when Kind == KindString or KindStringEnum.
	// Nil means no default was declared.
	StringDefault *string

	// EnumValues is meaningful only when Kind == KindStringEnum: the
	// ordered, non-empty set of allowed literals.
	EnumValues []string

	// OnConflict is meaningful for every kind except KindStringArray, which
	// has no conflict strategy (concatenate-with-dedup, unconditionally).
	OnConflict OnConflict
}

// DefaultValue returns the JSON-shaped default value for the field: the
// bool for KindBool, the number or nil for KindNumber, the string or nil
// for KindString/KindStringEnum, and an always-empty slice for
// KindStringArray.
func (f Field) DefaultValue() any {
	switch f.Kind {
	case KindBool:
		return f.BoolDefault
	case KindNumber:
		if f.NumberDefault == nil {
			return nil
		}
		return *f.NumberDefault
	case KindString, KindStringEnum:
		if f.StringDefault == nil {
			return nil
		}
		return *f.StringDefault
	case KindStringArray:
		return []string{}
	default:
		return nil
	}
}

// Equal reports whether two fields are structurally identical.
func (f Field) Equal(other Field) bool {
	if f.Name != other.Name || f.Kind != other.Kind || f.OnConflict != other.OnConflict {
		return false
	}
	switch f.Kind {
	case KindBool:
		return f.BoolDefault == other.BoolDefault
	case KindNumber:
		return float64PtrEqual(f.NumberDefault, other.NumberDefault)
	case KindString:
		return stringPtrEqual(f.StringDefault, other.StringDefault)
	case KindStringEnum:
		if !stringPtrEqual(f.StringDefault, other.StringDefault) {
			return false
		}
		return stringSliceEqual(f.EnumValues, other.EnumValues)
	case KindStringArray:
		return true
	default:
		return false
	}
}

func float64PtrEqual(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// conflictClause returns the "@ ..." annotation for the field's OnConflict,
// spelled the way each kind reads naturally in prose, or "" for
// ConflictDefault.
func (f Field) conflictClause() string {
	switch f.OnConflict {
	case ConflictAgreement:
		return " @ agreement"
	case ConflictLargestValue:
		switch f.Kind {
		case KindBool:
			return " @ sticky"
		case KindStringEnum:
			return " @ highest wins"
		default:
			return " @ last wins"
		}
	default:
		return ""
	}
}

// Render produces the surface-syntax spelling of the field, e.g.
// `is_active: bool @ sticky = true`. PolicyType.Render appends the
// trailing comma; Render itself does not.
func (f Field) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", f.Name)
	switch f.Kind {
	case KindBool:
		b.WriteString("bool")
		b.WriteString(f.conflictClause())
		if f.BoolDefault {
			b.WriteString(" = true")
		}
	case KindString:
		b.WriteString("string")
		b.WriteString(f.conflictClause())
		if f.StringDefault != nil {
			fmt.Fprintf(&b, " = %s", strconv.Quote(*f.StringDefault))
		}
	case KindNumber:
		b.WriteString("number")
		b.WriteString(f.conflictClause())
		if f.NumberDefault != nil {
			fmt.Fprintf(&b, " = %s", formatNumber(*f.NumberDefault))
		}
	case KindStringEnum:
		quoted := make([]string, len(f.EnumValues))
		for i, v := range f.EnumValues {
			quoted[i] = strconv.Quote(v)
		}
		fmt.Fprintf(&b, "[%s]", strings.Join(quoted, ", "))
		b.WriteString(f.conflictClause())
		if f.StringDefault != nil {
			fmt.Fprintf(&b, " = %s", strconv.Quote(*f.StringDefault))
		}
	case KindStringArray:
		b.WriteString("[string]")
	}
	return b.String()
}

// formatNumber renders a float64 the way the reference implementation's
// default-literal rendering does: as a plain decimal, not exponential
// notation, with no trailing ".0" noise beyond what strconv produces.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
