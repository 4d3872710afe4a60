// Package telemetry wires PolicyAI's Prometheus metrics and OpenTelemetry
// tracer/meter providers.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus instrument a Manager records against.
// Pass the same Metrics to every Manager sharing a process so counts
// aggregate across them.
type Metrics struct {
	ApplyCallsTotal    *prometheus.CounterVec
	ApplyDuration      prometheus.Histogram
	LLMAttemptsTotal   *prometheus.CounterVec
	ConsistencyRetries prometheus.Counter
	TokensTotal        *prometheus.CounterVec
}

// NewMetrics creates and registers every PolicyAI metric with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ApplyCallsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policyai",
				Name:      "apply_calls_total",
				Help:      "Total Manager.Apply calls by outcome",
			},
			[]string{"outcome"}, // outcome=ok/error
		),
		ApplyDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "policyai",
				Name:      "apply_duration_seconds",
				Help:      "Manager.Apply wall-clock duration",
				Buckets:   prometheus.DefBuckets,
			},
		),
		LLMAttemptsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policyai",
				Name:      "llm_attempts_total",
				Help:      "Total consistency-loop LLM round trips with a decodable __rule_numbers__, by whether the rule sets agreed",
			},
			[]string{"converged"}, // converged=true/false
		),
		ConsistencyRetries: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "policyai",
				Name:      "consistency_retries_total",
				Help:      "Total corrective turns sent because reported and empirical rule sets disagreed",
			},
		),
		TokensTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policyai",
				Name:      "tokens_total",
				Help:      "Total LLM tokens billed",
			},
			[]string{"direction"}, // direction=input/output
		),
	}
}
