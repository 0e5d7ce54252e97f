// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	evaluations        *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	llmTokens          *prometheus.CounterVec
	usageRecords       *prometheus.CounterVec
	usageTokens        prometheus.Counter
	httpRequests       *prometheus.CounterVec
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_eval_evaluations_total",
				Help: "LLM evaluations by mode and outcome (success or error kind).",
			},
			[]string{"mode", "outcome"},
		),
		evaluationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_eval_evaluation_duration_seconds",
				Help:    "Wall time of one evaluation including the LLM round trip.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"mode"},
		),
		llmTokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_eval_llm_tokens_total",
				Help: "Tokens reported by the LLM provider.",
			},
			[]string{"type"},
		),
		usageRecords: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_eval_usage_records_total",
				Help: "Usage ledger writes by status.",
			},
			[]string{"status"},
		),
		usageTokens: f.NewCounter(
			prometheus.CounterOpts{
				Name: "ai_eval_usage_tokens_recorded_total",
				Help: "Tokens accepted by the usage ledger.",
			},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_eval_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) ObserveEvaluation(mode, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(mode, outcome).Inc()
	m.evaluationDuration.WithLabelValues(mode).Observe(took.Seconds())
}

func (m *Metrics) AddLLMTokens(prompt, completion int64) {
	if m == nil {
		return
	}
	m.llmTokens.WithLabelValues("prompt").Add(float64(prompt))
	m.llmTokens.WithLabelValues("completion").Add(float64(completion))
}

func (m *Metrics) ObserveUsageRecord(tokens int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.usageRecords.WithLabelValues("error").Inc()
		return
	}
	m.usageRecords.WithLabelValues("ok").Inc()
	m.usageTokens.Add(float64(tokens))
}

func (m *Metrics) ObserveHTTP(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}
