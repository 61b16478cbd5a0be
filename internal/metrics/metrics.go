// Package metrics exposes Prometheus instrumentation for the HTTP surface,
// the rule engine, model calls and the review queue.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/clausecheck/internal/finding"
)

const namespace = "clausecheck"

// Metrics holds every collector. It satisfies rules.Observer and
// ai.CallObserver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	ruleFindings *prometheus.CounterVec
	ruleDuration *prometheus.HistogramVec
	rulePanics   *prometheus.CounterVec
	llmRequests  *prometheus.CounterVec
	llmDuration  *prometheus.HistogramVec
	reviewJobs   *prometheus.CounterVec
	queueDepth   prometheus.Gauge
}

// New registers all collectors on reg. A nil reg gets a fresh registry with
// the Go and process collectors.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ruleFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_findings_total",
			Help:      "Findings emitted by deterministic rules.",
		}, []string{"rule_id", "severity"}),
		ruleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rule_duration_seconds",
			Help:      "Time spent in a single rule run.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"rule_id"}),
		rulePanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_panics_total",
			Help:      "Rule runs that panicked and were skipped.",
		}, []string{"rule_id"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Model calls by provider, operation and outcome.",
		}, []string{"provider", "operation", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Model call latency.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider", "operation"}),
		reviewJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_jobs_total",
			Help:      "Finished upload review jobs by final status.",
		}, []string{"status"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "review_queue_depth",
			Help:      "Upload review jobs waiting for a worker.",
		}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.ruleFindings, m.ruleDuration, m.rulePanics,
		m.llmRequests, m.llmDuration,
		m.reviewJobs, m.queueDepth,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one served request. route is the matched pattern, not
// the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRule(ruleID string, findings []finding.Finding, elapsed time.Duration) {
	m.ruleDuration.WithLabelValues(ruleID).Observe(elapsed.Seconds())
	for _, f := range findings {
		m.ruleFindings.WithLabelValues(ruleID, string(f.Severity)).Inc()
	}
}

func (m *Metrics) RulePanicked(ruleID string) {
	m.rulePanics.WithLabelValues(ruleID).Inc()
}

func (m *Metrics) ObserveLLMCall(provider, operation string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmRequests.WithLabelValues(provider, operation, status).Inc()
	m.llmDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// JobFinished counts an upload review reaching a terminal status.
func (m *Metrics) JobFinished(status string) {
	m.reviewJobs.WithLabelValues(status).Inc()
}

// SetQueueDepth reports the number of queued jobs.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
