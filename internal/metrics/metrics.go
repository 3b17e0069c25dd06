// Package metrics exposes Prometheus instrumentation for provider calls and
// the REST surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks provider calls and HTTP requests.
//
// Usage:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.ObserveGeneration("openai", "gpt-4o", 1200*time.Millisecond, 40, 12, 0.0004, nil)
type Metrics struct {
	// GenerationDuration measures provider call latency in seconds.
	// Labels: provider, model
	GenerationDuration *prometheus.HistogramVec

	// Generations counts provider calls.
	// Labels: provider, model, status (success|error)
	Generations *prometheus.CounterVec

	// Tokens tracks token consumption.
	// Labels: provider, model, type (input|output)
	Tokens *prometheus.CounterVec

	// Cost accumulates spend in USD.
	// Labels: provider, model
	Cost *prometheus.CounterVec

	// HTTPRequests counts REST requests.
	// Labels: method, path, status_code
	HTTPRequests *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GenerationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prompt_tuner_generation_duration_seconds",
				Help:    "Duration of provider generate calls in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		Generations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_tuner_generations_total",
				Help: "Total number of provider generate calls by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),
		Tokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_tuner_tokens_total",
				Help: "Total number of tokens used by provider, model, and type",
			},
			[]string{"provider", "model", "type"},
		),
		Cost: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_tuner_cost_usd_total",
				Help: "Accumulated generation cost in USD by provider and model",
			},
			[]string{"provider", "model"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_tuner_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status_code"},
		),
	}
}

// ObserveGeneration records one provider call. A nil receiver is a no-op.
func (m *Metrics) ObserveGeneration(provider, model string, latency time.Duration, inputTokens, outputTokens int, cost float64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Generations.WithLabelValues(provider, model, "error").Inc()
		return
	}
	m.Generations.WithLabelValues(provider, model, "success").Inc()
	m.GenerationDuration.WithLabelValues(provider, model).Observe(latency.Seconds())
	m.Tokens.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	m.Tokens.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	m.Cost.WithLabelValues(provider, model).Add(cost)
}

// ObserveHTTPRequest records one REST request. A nil receiver is a no-op.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
