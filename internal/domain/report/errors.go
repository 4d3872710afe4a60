package report

import "fmt"

// PolicyErrorKind discriminates the ways a report reducer can detect a
// problem with the data it was asked to reduce, as opposed to disagreement
// between matching policies (see Conflict).
type PolicyErrorKind int

const (
	// ErrDefaultConflict means two policies for the same field declared
	// different default values.
	ErrDefaultConflict PolicyErrorKind = iota
	// ErrInvariantViolation means the reducer observed a JSON shape its own
	// bookkeeping should never produce; it denotes a bug in this package,
	// not bad input.
	ErrInvariantViolation
	// ErrTypeCheckFailure means the IR supplied a value of the wrong JSON
	// type for a mask's field.
	ErrTypeCheckFailure
)

// PolicyError is the single error type the report reducer accumulates.
// Kind discriminates which fields are meaningful.
type PolicyError struct {
	Kind PolicyErrorKind

	// ErrDefaultConflict
	Field    string
	Existing any
	New      any

	// ErrInvariantViolation, ErrTypeCheckFailure
	Location string // "file.go:123", captured via runtime.Caller
	Message  string
}

func (e PolicyError) Error() string {
	switch e.Kind {
	case ErrDefaultConflict:
		return fmt.Sprintf("default value conflict for field %q: existing=%v new=%v (ensure all policies use the same default for this field)", e.Field, e.Existing, e.New)
	case ErrInvariantViolation:
		return fmt.Sprintf("internal error at %s: %s (this is likely a bug in the policy reducer)", e.Location, e.Message)
	case ErrTypeCheckFailure:
		return fmt.Sprintf("type check failure at %s: %s", e.Location, e.Message)
	default:
		return e.Message
	}
}

// ConflictKind discriminates the field kinds that can disagree.
type ConflictKind int

const (
	ConflictBool ConflictKind = iota
	ConflictNumber
	ConflictString
)

// Conflict records two disagreeing values reported for the same field by
// different matching policies, under a conflict strategy that doesn't
// silently resolve the disagreement.
type Conflict struct {
	Kind  ConflictKind
	Field string
	Val1  any
	Val2  any
}

func (c Conflict) String() string {
	return fmt.Sprintf("field %q: %v vs %v", c.Field, c.Val1, c.Val2)
}

// ApplyErrorKind discriminates why Manager.Apply failed to converge.
type ApplyErrorKind int

const (
	// ErrApplyPolicy wraps a PolicyError produced by the reducer.
	ErrApplyPolicy ApplyErrorKind = iota
	// ErrApplyLLM means the LLM collaborator returned an error.
	ErrApplyLLM
	// ErrApplyConflict means the final report carried an unresolved Conflict.
	ErrApplyConflict
	// ErrApplyTooManyIterations means the consistency loop exhausted its
	// attempt budget without the LLM's self-reported rules matching the
	// empirically observed ones.
	ErrApplyTooManyIterations
	// ErrApplyInvalidResponse means Apply could not build its request:
	// Manager.Apply returns it when a policy's action value does not fit
	// its field's kind. It is not returned for LLM responses; a response
	// without a decodable __rule_numbers__ costs one attempt instead, and a
	// response with no tool call surfaces as ErrApplyLLM from the client.
	ErrApplyInvalidResponse
)

// ApplyError is returned by Manager.Apply.
type ApplyError struct {
	Kind ApplyErrorKind

	Policy *PolicyError // ErrApplyPolicy
	LLMErr error        // ErrApplyLLM
	Conflict *Conflict  // ErrApplyConflict

	Attempts  int    // ErrApplyTooManyIterations
	LastError string // ErrApplyTooManyIterations

	Message    string // ErrApplyInvalidResponse
	Suggestion string // ErrApplyInvalidResponse
}

func (e *ApplyError) Error() string {
	switch e.Kind {
	case ErrApplyPolicy:
		return fmt.Sprintf("policy error: %v", e.Policy)
	case ErrApplyLLM:
		return fmt.Sprintf("LLM communication error: %v", e.LLMErr)
	case ErrApplyConflict:
		return fmt.Sprintf("policy conflict: %v (review your policies for conflicting rules and adjust their conflict resolution strategies)", e.Conflict)
	case ErrApplyTooManyIterations:
		return fmt.Sprintf("failed to apply policies after %d attempts: %s (simplify your policies or check for contradictory rules)", e.Attempts, e.LastError)
	case ErrApplyInvalidResponse:
		return fmt.Sprintf("invalid LLM response: %s (%s)", e.Message, e.Suggestion)
	default:
		return "apply error"
	}
}

// Unwrap exposes the wrapped PolicyError or LLM error to errors.As/errors.Is.
func (e *ApplyError) Unwrap() error {
	switch e.Kind {
	case ErrApplyPolicy:
		if e.Policy == nil {
			return nil
		}
		return *e.Policy
	case ErrApplyLLM:
		return e.LLMErr
	default:
		return nil
	}
}
