// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/filechat/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload results
const (
	ResultStored   = "stored"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Chat reply sources
const (
	SourceCompletion = "completion"
	SourceRules      = "rules"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filechat_uploads_total",
		Help: "Upload attempts by backend and result.",
	}, []string{"backend", "result"})

	chatResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filechat_chat_responses_total",
		Help: "Chat replies by the source that produced them.",
	}, []string{"source"})

	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filechat_completion_request_duration_seconds",
		Help:    "Latency of completion API calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
)

// RecordUpload counts one upload attempt.
func RecordUpload(backend models.BackendKind, result string) {
	uploadsTotal.WithLabelValues(string(backend), result).Inc()
}

// RecordChatResponse counts one chat reply.
func RecordChatResponse(source string) {
	chatResponsesTotal.WithLabelValues(source).Inc()
}

// ObserveCompletion records the latency of a completion call. status is
// "ok" or "error".
func ObserveCompletion(status string, d time.Duration) {
	completionDuration.WithLabelValues(status).Observe(d.Seconds())
}
