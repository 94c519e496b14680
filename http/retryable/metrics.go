package retryable

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "retryable_http_attempts_total",
		Help: "The total number of HTTP attempts, by what happened after each one",
	}, []string{"method", "outcome"})

	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "retryable_http_calls_total",
		Help: "The total number of logical HTTP calls, by result",
	}, []string{"method", "result"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "retryable_http_call_duration_seconds",
		Help:    "Time spent in a logical HTTP call, including backoff",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30, 60},
	}, []string{"method"})

	backoffSeconds = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "retryable_http_backoff_seconds_total",
		Help: "The total time scheduled for waiting between attempts",
	}, []string{"method"})
)

const (
	resultSuccess   = "success"
	resultFatal     = "fatal"
	resultExhausted = "exhausted"
	resultCanceled  = "canceled"
	resultInvalid   = "invalid"
)
