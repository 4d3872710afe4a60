package mask

import (
	"github.com/policyai/policyai-go/internal/domain/policytype"
	"github.com/policyai/policyai-go/internal/domain/report"
)

// IR is the LLM tool-call argument payload a Manager reduces: a flat JSON
// object keyed by mask tokens rather than by field name, produced by the
// model's forced tool call.
type IR map[string]any

// BoolMask applies a single matched policy's bool field write. Name is
// the field's real name; Mask is the opaque tool-call argument name the
// LLM was actually asked to populate. IsTrue gates whether a true IR value
// reflects the policy having matched at all: some bool fields are phrased
// so only one polarity corresponds to the policy's prompt being satisfied.
type BoolMask struct {
	PolicyIndex int
	Name        string
	Mask        string
	Default     bool
	IsTrue      bool
	OnConflict  policytype.OnConflict
}

// ApplyTo reads m.Mask out of the IR and folds it into report, or falls
// back to the field default when the IR omits the mask or the tool call
// didn't judge the policy to apply.
func (m BoolMask) ApplyTo(ir IR, r *report.Report) {
	v, ok := ir[m.Mask]
	if !ok {
		r.ReportBoolDefault(m.Name, m.Default)
		return
	}
	b, ok := v.(bool)
	if !ok {
		r.TypeCheckFailure(m.Name)
		return
	}
	if b == m.IsTrue {
		r.ReportBool(m.PolicyIndex, m.Name, b, m.OnConflict)
	} else {
		r.ReportBoolDefault(m.Name, m.Default)
	}
}

// NumberMask applies a single matched policy's number field write.
type NumberMask struct {
	PolicyIndex int
	Name        string
	Mask        string
	Default     *float64
	OnConflict  policytype.OnConflict
}

// ApplyTo reads m.Mask out of the IR and folds it into report.
func (m NumberMask) ApplyTo(ir IR, r *report.Report) {
	v, ok := ir[m.Mask]
	if !ok {
		if m.Default != nil {
			r.ReportNumberDefault(m.Name, *m.Default)
		}
		return
	}
	n, ok := toFloat64(v)
	if !ok {
		r.TypeCheckFailure(m.Name)
		return
	}
	r.ReportNumber(m.PolicyIndex, m.Name, n, m.OnConflict)
}

// StringMask applies a single matched policy's free-form string field write.
type StringMask struct {
	PolicyIndex int
	Name        string
	Mask        string
	Default     *string
	OnConflict  policytype.OnConflict
}

// ApplyTo reads m.Mask out of the IR and folds it into report.
func (m StringMask) ApplyTo(ir IR, r *report.Report) {
	v, ok := ir[m.Mask]
	if !ok {
		if m.Default != nil {
			r.ReportStringDefault(m.Name, *m.Default)
		}
		return
	}
	s, ok := v.(string)
	if !ok {
		r.TypeCheckFailure(m.Name)
		return
	}
	r.ReportString(m.PolicyIndex, m.Name, s, m.OnConflict)
}

// StringEnumMask applies a single matched policy's enum selection. Unlike
// the other masks, the tool-call argument is a boolean gate ("did the
// model judge this policy's enum value to apply"), and Value is the fixed
// enum literal this policy contributes when that gate is true.
type StringEnumMask struct {
	PolicyIndex int
	Name        string
	Mask        string
	Value       string
	Default     *string
	OnConflict  policytype.OnConflict
}

// ApplyTo reads m.Mask out of the IR and folds m.Value into report when
// the gate is set.
func (m StringEnumMask) ApplyTo(ir IR, r *report.Report) {
	v, ok := ir[m.Mask]
	if !ok {
		if m.Default != nil {
			r.ReportStringDefault(m.Name, *m.Default)
		}
		return
	}
	b, ok := v.(bool)
	if !ok {
		r.TypeCheckFailure(m.Name)
		return
	}
	if b {
		r.ReportStringEnum(m.PolicyIndex, m.Name, m.Value, m.OnConflict)
	} else if m.Default != nil {
		r.ReportStringDefault(m.Name, *m.Default)
	}
}

// StringArrayMask applies a single matched policy's array-field
// contribution. Arrays accept a bare string or nested arrays of strings,
// up to maxArrayDepth levels, flattening everything it finds.
type StringArrayMask struct {
	PolicyIndex int
	Name        string
	Mask        string
}

const maxArrayDepth = 128

// ApplyTo reads m.Mask out of the IR, flattens any string/nested-array
// shape it finds, and reports each string.
func (m StringArrayMask) ApplyTo(ir IR, r *report.Report) {
	v, ok := ir[m.Mask]
	if !ok {
		return
	}
	strs, ok := extractStrings(v, maxArrayDepth)
	if !ok {
		r.TypeCheckFailure(m.Name)
		return
	}
	for _, s := range strs {
		r.ReportStringArray(m.PolicyIndex, m.Name, s)
	}
}

func extractStrings(v any, depth int) ([]string, bool) {
	if depth == 0 {
		return nil, false
	}
	switch x := v.(type) {
	case string:
		return []string{x}, true
	case []any:
		var all []string
		for _, item := range x {
			sub, ok := extractStrings(item, depth-1)
			if !ok {
				return nil, false
			}
			all = append(all, sub...)
		}
		return all, true
	default:
		return nil, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
