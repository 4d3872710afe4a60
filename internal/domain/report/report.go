package report

import (
	"fmt"
	"runtime"

	"github.com/policyai/policyai-go/internal/domain/policytype"
)

// Report accumulates the result of reducing a set of matching policies'
// field writes against a single LLM tool-call response (the IR). It
// tracks which policy indices matched, the reduced field values, and any
// conflicts or errors encountered along the way. A Report is built
// incrementally by a ReportBuilder's masks, one ReportX call per field
// write, then read once via Value/Errors/Conflicts.
type Report struct {
	RulesMatched []int

	defaultValue map[string]any
	value        map[string]any
	errors       []PolicyError
	conflicts    []Conflict

	seenRule map[int]bool
}

// New returns an empty Report ready to receive mask writes.
func New() *Report {
	return &Report{seenRule: make(map[int]bool)}
}

// Value returns the reduced field values: the accumulated defaults
// overlaid with whatever values were actually reported.
func (r *Report) Value() map[string]any {
	out := make(map[string]any, len(r.defaultValue)+len(r.value))
	for k, v := range r.defaultValue {
		out[k] = v
	}
	for k, v := range r.value {
		out[k] = v
	}
	return out
}

// Errors returns every PolicyError accumulated while reducing.
func (r *Report) Errors() []PolicyError { return r.errors }

// Conflicts returns every Conflict accumulated while reducing.
func (r *Report) Conflicts() []Conflict { return r.conflicts }

// HasErrors reports whether reducing produced any error or conflict.
func (r *Report) HasErrors() bool {
	return len(r.errors) > 0 || len(r.conflicts) > 0
}

func (r *Report) reportPolicyIndex(policyIndex int) {
	if !r.seenRule[policyIndex] {
		r.seenRule[policyIndex] = true
	}
	r.RulesMatched = append(r.RulesMatched, policyIndex)
}

func (r *Report) invariantViolation(message string) {
	_, file, line, _ := runtime.Caller(1)
	r.errors = append(r.errors, PolicyError{
		Kind:     ErrInvariantViolation,
		Location: fmt.Sprintf("%s:%d", file, line),
		Message:  message,
	})
}

// TypeCheckFailure records that the IR held a value of the wrong JSON type
// for the named field. Callers (masks) supply only the field name; the
// source location is captured automatically.
func (r *Report) TypeCheckFailure(field string) {
	_, file, line, _ := runtime.Caller(1)
	r.errors = append(r.errors, PolicyError{
		Kind:     ErrTypeCheckFailure,
		Location: fmt.Sprintf("%s:%d", file, line),
		Message:  fmt.Sprintf("expected a different JSON type for %s", field),
	})
}

// ReportBoolDefault records a policy's declared default for a bool field,
// flagging a DefaultConflict if an incompatible default was already
// recorded by another policy.
func (r *Report) ReportBoolDefault(field string, def bool) {
	r.reportDefault(field, def)
}

// ReportBool folds a matched policy's bool write into the field's current
// value under the given conflict strategy.
func (r *Report) ReportBool(policyIndex int, field string, value bool, onConflict policytype.OnConflict) {
	r.reportPolicyIndex(policyIndex)
	r.ensureValue()
	existing, ok := r.value[field]
	if !ok {
		r.value[field] = value
		return
	}
	b, ok := existing.(bool)
	if !ok {
		r.invariantViolation(fmt.Sprintf("non-bool found in place of bool for %s", field))
		return
	}
	if b == value {
		return
	}
	switch onConflict {
	case policytype.ConflictDefault:
	case policytype.ConflictAgreement:
		r.conflicts = append(r.conflicts, Conflict{Kind: ConflictBool, Field: field, Val1: b, Val2: value})
	case policytype.ConflictLargestValue:
		if value {
			r.value[field] = true
		}
	}
}

// ReportNumberDefault records a policy's declared default for a number
// field.
func (r *Report) ReportNumberDefault(field string, def float64) {
	r.reportDefault(field, def)
}

// ReportNumber folds a matched policy's number write into the field's
// current value under the given conflict strategy, using the NaN-safe
// total order for LargestValue comparisons.
func (r *Report) ReportNumber(policyIndex int, field string, value float64, onConflict policytype.OnConflict) {
	r.reportPolicyIndex(policyIndex)
	r.ensureValue()
	existing, ok := r.value[field]
	if !ok {
		r.value[field] = value
		return
	}
	n, ok := existing.(float64)
	if !ok {
		r.invariantViolation(fmt.Sprintf("non-number found in place of number for %s", field))
		return
	}
	if numberEqual(n, value) {
		return
	}
	switch onConflict {
	case policytype.ConflictDefault:
	case policytype.ConflictAgreement:
		r.conflicts = append(r.conflicts, Conflict{Kind: ConflictNumber, Field: field, Val1: n, Val2: value})
	case policytype.ConflictLargestValue:
		if totalOrderLess(n, value) {
			r.value[field] = value
		} else {
			r.conflicts = append(r.conflicts, Conflict{Kind: ConflictNumber, Field: field, Val1: n, Val2: value})
		}
	}
}

// ReportStringDefault records a policy's declared default for a free-form
// string field.
func (r *Report) ReportStringDefault(field, def string) {
	r.reportDefault(field, def)
}

// ReportString folds a matched policy's string write into the field's
// current value. LargestValue on a free-form string means "prefer the
// longer string", silently, since there is no natural agreement semantics
// for prose.
func (r *Report) ReportString(policyIndex int, field, value string, onConflict policytype.OnConflict) {
	r.reportPolicyIndex(policyIndex)
	r.ensureValue()
	existing, ok := r.value[field]
	if !ok {
		r.value[field] = value
		return
	}
	s, ok := existing.(string)
	if !ok {
		r.invariantViolation(fmt.Sprintf("non-string found in place of string for %s", field))
		return
	}
	if s == value {
		return
	}
	switch onConflict {
	case policytype.ConflictDefault:
	case policytype.ConflictAgreement:
		r.conflicts = append(r.conflicts, Conflict{Kind: ConflictString, Field: field, Val1: s, Val2: value})
	case policytype.ConflictLargestValue:
		if len(value) > len(s) {
			r.value[field] = value
		}
	}
}

// ReportStringEnum folds a matched policy's enum selection into the
// field's current value. Unlike ReportString, LargestValue on a string
// enum still records a Conflict when the incoming value does not win:
// enum disagreement is a modeling signal, not noise to discard.
func (r *Report) ReportStringEnum(policyIndex int, field, value string, onConflict policytype.OnConflict) {
	r.reportPolicyIndex(policyIndex)
	r.ensureValue()
	existing, ok := r.value[field]
	if !ok {
		r.value[field] = value
		return
	}
	s, ok := existing.(string)
	if !ok {
		r.invariantViolation(fmt.Sprintf("non-string found in place of string enum for %s", field))
		return
	}
	if s == value {
		return
	}
	switch onConflict {
	case policytype.ConflictDefault:
	case policytype.ConflictAgreement:
		r.conflicts = append(r.conflicts, Conflict{Kind: ConflictString, Field: field, Val1: s, Val2: value})
	case policytype.ConflictLargestValue:
		if len(value) > len(s) {
			r.value[field] = value
		} else {
			r.conflicts = append(r.conflicts, Conflict{Kind: ConflictString, Field: field, Val1: s, Val2: value})
		}
	}
}

// ReportStringArray appends a value to a string-array field, deduplicating
// against what has already been reported. Arrays have no conflict
// strategy: every matching policy's contribution is kept.
func (r *Report) ReportStringArray(policyIndex int, field, value string) {
	r.reportPolicyIndex(policyIndex)
	r.ensureValue()
	existing, ok := r.value[field]
	if !ok {
		r.value[field] = []string{value}
		return
	}
	arr, ok := existing.([]string)
	if !ok {
		r.invariantViolation(fmt.Sprintf("non-array found in place of array for %s", field))
		return
	}
	for _, v := range arr {
		if v == value {
			return
		}
	}
	r.value[field] = append(arr, value)
}

// SeedDefault establishes the declared default for a field that no mask
// may ever touch (no policy this Manager owns writes to it). Without
// this, a field untouched by every policy would be missing from Value()
// entirely instead of surfacing its PolicyType-declared default.
func (r *Report) SeedDefault(field string, def any) {
	if r.defaultValue == nil {
		r.defaultValue = make(map[string]any)
	}
	if _, ok := r.defaultValue[field]; !ok {
		r.defaultValue[field] = def
	}
}

func (r *Report) reportDefault(field string, def any) {
	if r.defaultValue == nil {
		r.defaultValue = make(map[string]any)
	}
	if existing, ok := r.defaultValue[field]; ok {
		if existing != def {
			r.errors = append(r.errors, PolicyError{
				Kind:     ErrDefaultConflict,
				Field:    field,
				Existing: existing,
				New:      def,
			})
		}
		return
	}
	r.defaultValue[field] = def
}

func (r *Report) ensureValue() {
	if r.value == nil {
		r.value = make(map[string]any)
	}
}
