package service

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/policyai/policyai-go/internal/domain/mask"
	"github.com/policyai/policyai-go/internal/domain/policy"
	"github.com/policyai/policyai-go/internal/domain/policytype"
	"github.com/policyai/policyai-go/internal/domain/report"
	"github.com/policyai/policyai-go/internal/port/outbound"
	"github.com/policyai/policyai-go/internal/telemetry"
)

//go:embed prompts/manager.md
var promptFS embed.FS

const (
	defaultMaxAttempts = 5
	defaultMaxTokens   = 2048
	outputToolName     = "output_json"
)

// Manager owns a single PolicyType and every policy written against it,
// and drives the consistency loop (spec §4.7): it prompts an LLM for a
// forced tool call, reduces the call's arguments through a ReportBuilder,
// and keeps retrying until the LLM's self-reported matched rules agree
// with which masks its own tool call actually changed.
type Manager struct {
	policyType policytype.PolicyType
	hasType    bool
	policies   []policy.Policy

	llm         outbound.LLMClient
	maxAttempts int
	maxTokens   int

	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithMaxAttempts overrides the consistency-loop budget (default 5).
func WithMaxAttempts(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithMaxTokens overrides the per-request token ceiling (default 2048).
func WithMaxTokens(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.maxTokens = n
		}
	}
}

// WithMetrics attaches a Prometheus Metrics instance Apply records against.
func WithMetrics(metrics *telemetry.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithLogger overrides the structured logger Apply writes attempt lines to.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager constructs a Manager driving the given LLM collaborator.
func NewManager(llm outbound.LLMClient, opts ...ManagerOption) *Manager {
	m := &Manager{
		llm:         llm,
		maxAttempts: defaultMaxAttempts,
		maxTokens:   defaultMaxTokens,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends a policy to the Manager's owned set. Every policy a Manager
// owns must declare a structurally identical PolicyType; Add compares the
// types' hashes first, which rejects a differing type without walking its
// fields, and confirms matching hashes with Equal to rule out a collision.
func (m *Manager) Add(p policy.Policy) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if !m.hasType {
		m.policyType = p.Type
		m.hasType = true
	} else if m.policyType.Hash() != p.Type.Hash() || !m.policyType.Equal(p.Type) {
		return fmt.Errorf("policy declares type %q, which differs from this manager's type %q", p.Type.Name, m.policyType.Name)
	}
	m.policies = append(m.policies, p)
	return nil
}

// Policies returns the policies this Manager owns, in Add order — the
// same order ReportBuilder uses for 1-based rule numbering.
func (m *Manager) Policies() []policy.Policy {
	return append([]policy.Policy(nil), m.policies...)
}

func systemPrompt() string {
	b, err := promptFS.ReadFile("prompts/manager.md")
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Apply runs the consistency loop against text, returning the reduced
// Report once the LLM's self-reported matched rules agree with what its
// tool call actually changed. usage, if non-nil, accumulates token counts
// and iteration count across every attempt; Apply does not impose a
// timeout of its own, only a bound on the number of round trips — callers
// wanting a deadline should cancel ctx.
func (m *Manager) Apply(ctx context.Context, text string, usage *Usage) (*report.Report, error) {
	if usage == nil {
		usage = NewUsage()
	}
	defer usage.finish()
	if m.metrics != nil {
		defer func(start time.Time) {
			m.metrics.ApplyDuration.Observe(time.Since(start).Seconds())
		}(time.Now())
	}

	correlationID := uuid.New()
	ctx, span := telemetry.Tracer().Start(ctx, "Manager.Apply", trace.WithAttributes(
		attribute.String("policyai.correlation_id", correlationID.String()),
		attribute.Int("policyai.policy_count", len(m.policies)),
	))
	defer span.End()

	logger := m.logger.With("correlation_id", correlationID.String())

	builder, err := NewReportBuilder(m.policyType, m.policies, mask.NewGenerator())
	if err != nil {
		applyErr := &report.ApplyError{
			Kind:       report.ErrApplyInvalidResponse,
			Message:    err.Error(),
			Suggestion: "check each policy's action against its PolicyType's declared fields",
		}
		m.finishWithError(span, applyErr)
		return nil, applyErr
	}

	messages := []outbound.ChatMessage{
		{Role: outbound.RoleUser, Text: fmt.Sprintf("<default>%s</default>", jsonify(builder.DefaultReturn()))},
	}
	for _, rule := range builder.RuleMessages() {
		messages = append(messages, outbound.ChatMessage{Role: outbound.RoleUser, Text: rule})
	}
	messages = append(messages, outbound.ChatMessage{Role: outbound.RoleUser, Text: fmt.Sprintf("<text>%s</text>", text)})

	req := outbound.ChatRequest{
		System:     systemPrompt(),
		ToolName:   outputToolName,
		ToolSchema: builder.Schema(),
		MaxTokens:  m.maxTokens,
	}

	var lastErr string
	usage.started = time.Now()
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		req.Messages = messages
		attemptCtx, attemptSpan := telemetry.Tracer().Start(ctx, "Manager.Apply.attempt",
			trace.WithAttributes(attribute.Int("policyai.attempt", attempt)))

		resp, err := m.llm.Send(attemptCtx, req)
		if err != nil {
			attemptSpan.RecordError(err)
			attemptSpan.End()
			logger.Error("apply.attempt", "attempt", attempt, "error", err)
			applyErr := &report.ApplyError{Kind: report.ErrApplyLLM, LLMErr: err, Message: err.Error()}
			m.finishWithError(span, applyErr)
			return nil, applyErr
		}
		usage.recordAttempt(resp.InputTokens, resp.OutputTokens)
		if m.metrics != nil {
			m.metrics.TokensTotal.WithLabelValues("input").Add(float64(resp.InputTokens))
			m.metrics.TokensTotal.WithLabelValues("output").Add(float64(resp.OutputTokens))
		}

		reported, ok := extractRuleNumbers(resp.Arguments)
		if !ok {
			attemptSpan.End()
			logger.Warn("apply.attempt", "attempt", attempt, "outcome", "undecodable __rule_numbers__")
			lastErr = "response omitted or malformed __rule_numbers__"
			messages = append(messages,
				outbound.ChatMessage{Role: outbound.RoleAssistant, Text: resp.Text},
				outbound.ChatMessage{Role: outbound.RoleUser, Text: "Your tool call did not include a decodable __rule_numbers__ array of positive integers. Call output_json again with it present."},
			)
			continue
		}

		candidate := builder.ConsumeIR(mask.IR(resp.Arguments))
		empirical := sortedUnique(candidate.RulesMatched)
		selfReported := sortedUnique(reported)

		logger.Info("apply.attempt", "attempt", attempt, "empirical", empirical, "self_reported", selfReported)
		attemptSpan.SetAttributes(
			attribute.IntSlice("policyai.empirical_rules", empirical),
			attribute.IntSlice("policyai.self_reported_rules", selfReported),
		)
		attemptSpan.End()

		if intSlicesEqual(empirical, selfReported) {
			m.recordConverged(true)
			m.recordOutcome("ok")
			span.SetStatus(codes.Ok, "")
			return candidate, nil
		}

		m.recordConverged(false)
		corrective := correctiveMessage(empirical, selfReported, len(m.policies), builder)
		lastErr = corrective
		messages = append(messages,
			outbound.ChatMessage{Role: outbound.RoleAssistant, Text: resp.Text},
			outbound.ChatMessage{Role: outbound.RoleUser, Text: corrective},
		)
	}

	applyErr := &report.ApplyError{Kind: report.ErrApplyTooManyIterations, Attempts: m.maxAttempts, LastError: lastErr}
	m.finishWithError(span, applyErr)
	return nil, applyErr
}

func (m *Manager) finishWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	m.recordOutcome("error")
}

func (m *Manager) recordOutcome(outcome string) {
	if m.metrics != nil {
		m.metrics.ApplyCallsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Manager) recordConverged(converged bool) {
	if m.metrics == nil {
		return
	}
	label := "false"
	if converged {
		label = "true"
	} else {
		m.metrics.ConsistencyRetries.Inc()
	}
	m.metrics.LLMAttemptsTotal.WithLabelValues(label).Inc()
}

// correctiveMessage phrases the rejection spec §4.7e describes: every
// empirical-but-not-reported rule and every reported-but-not-empirical
// rule gets an explicit per-rule instruction, and rule numbers outside
// 1..policyCount are called out as non-existent.
func correctiveMessage(empirical, selfReported []int, policyCount int, builder *ReportBuilder) string {
	var b strings.Builder
	b.WriteString("Your last call to output_json was rejected: __rule_numbers__ did not match which masks you actually changed away from default.\n")

	for _, rule := range setDifference(empirical, selfReported) {
		masks := strings.Join(builder.MasksByIndex(rule), ", ")
		fmt.Fprintf(&b, "- Rule %d: you set mask(s) %s to a non-default value but did not list %d in __rule_numbers__. Set the mask(s) back to their default, or append %d to __rule_numbers__.\n", rule, masks, rule, rule)
	}
	for _, rule := range setDifference(selfReported, empirical) {
		if rule < 1 || rule > policyCount {
			fmt.Fprintf(&b, "- Rule %d does not exist (there are %d rules). Remove it from __rule_numbers__.\n", rule, policyCount)
			continue
		}
		masks := strings.Join(builder.MasksByIndex(rule), ", ")
		fmt.Fprintf(&b, "- Rule %d: you listed it in __rule_numbers__ but left mask(s) %s at their default value. Set the mask(s) to a non-default value, or remove %d from __rule_numbers__.\n", rule, masks, rule)
	}
	b.WriteString("Call output_json again with a corrected argument set.")
	return b.String()
}

func extractRuleNumbers(args map[string]any) ([]int, bool) {
	raw, ok := args[ruleNumbersKey]
	if !ok {
		return nil, false
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		n, ok := toFloat(v)
		if !ok || n < 1 || n != math.Trunc(n) {
			return nil, false
		}
		out = append(out, int(n))
	}
	return out, true
}

func sortedUnique(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

func intSlicesEqual(a, b []int) bool {
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

// setDifference returns the elements of a (assumed sorted-unique) absent
// from b, in a's order.
func setDifference(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, n := range b {
		inB[n] = true
	}
	var out []int
	for _, n := range a {
		if !inB[n] {
			out = append(out, n)
		}
	}
	return out
}

func jsonify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
