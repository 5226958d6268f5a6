package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colive_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "colive_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colive_completions_total",
		Help: "Total completion calls by model and outcome",
	}, []string{"model", "status"})

	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "colive_completion_duration_seconds",
		Help:    "Completion call duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"model"})

	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colive_extractions_total",
		Help: "Reply extractions by pipeline stage (direct, repaired, fallback)",
	}, []string{"stage"})

	DroppedTurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "colive_dropped_turns_total",
		Help: "Parsed turns dropped for a disallowed speaker or empty text",
	})
)
