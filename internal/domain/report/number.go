package report

import "math"

// totalOrderLess implements a NaN-safe total order equivalent to Rust's
// f64::total_cmp: NaN sorts above every other value (consistent within a
// single process, since Go's NaN payloads are not meaningfully ordered
// the way Rust's bit-pattern comparison is), so that report reducers can
// compare attacker- or model-supplied numbers without panicking on NaN
// the way a naive `<` would silently misbehave. No library in the module's
// dependency set offers this; it is implemented directly against the
// standard library's math package.
func totalOrderLess(a, b float64) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return false
	case aNaN:
		return false
	case bNaN:
		return true
	default:
		return a < b
	}
}

// numberEqual reports whether two numbers are equal under the same
// NaN-safe total order (two NaNs compare equal to each other).
func numberEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
