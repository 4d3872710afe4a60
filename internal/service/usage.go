package service

import (
	"sync/atomic"
	"time"
)

// Usage accumulates token counts and timing across the LLM calls made by
// a single Manager.Apply invocation. It uses atomic counters rather than
// a mutex since every field is an independent accumulator with no
// invariant spanning more than one field, the same tradeoff the stats
// accumulator elsewhere in this codebase makes for pure counters.
type Usage struct {
	inputTokens  atomic.Int64
	outputTokens atomic.Int64
	iterations   atomic.Int64
	started      time.Time
	finished     time.Time
}

// NewUsage returns a zeroed Usage with its clock started now.
func NewUsage() *Usage {
	return &Usage{started: time.Now()}
}

func (u *Usage) recordAttempt(inputTokens, outputTokens int) {
	u.inputTokens.Add(int64(inputTokens))
	u.outputTokens.Add(int64(outputTokens))
	u.iterations.Add(1)
}

func (u *Usage) finish() {
	u.finished = time.Now()
}

// InputTokens returns the total prompt tokens billed across every attempt.
func (u *Usage) InputTokens() int64 { return u.inputTokens.Load() }

// OutputTokens returns the total completion tokens billed across every
// attempt.
func (u *Usage) OutputTokens() int64 { return u.outputTokens.Load() }

// Iterations returns how many LLM round trips the call made.
func (u *Usage) Iterations() int64 { return u.iterations.Load() }

// Duration returns the wall-clock time from the first send to the call's
// return. It is zero until the call completes.
func (u *Usage) Duration() time.Duration {
	if u.finished.IsZero() {
		return 0
	}
	return u.finished.Sub(u.started)
}
