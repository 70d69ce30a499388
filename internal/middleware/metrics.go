package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	entryWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocab_entry_writes_total",
			Help: "Total number of vocabulary entry write operations",
		},
		[]string{"op", "status"},
	)

	importLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocab_import_lines_total",
			Help: "Total number of bulk import lines by outcome",
		},
		[]string{"outcome"},
	)

	quizSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_total",
			Help: "Total number of quiz sessions started",
		},
		[]string{"mode"},
	)

	quizScorePercent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_score_percent",
			Help:    "Final score percentage of finished multiple-choice quizzes",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordEntryWrite counts a store write attempt on the entry collection.
func RecordEntryWrite(op string, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	entryWritesTotal.WithLabelValues(op, status).Inc()
}

// RecordImport counts the outcome of one bulk import run.
func RecordImport(imported, skipped, failed int) {
	importLinesTotal.WithLabelValues("imported").Add(float64(imported))
	importLinesTotal.WithLabelValues("skipped").Add(float64(skipped))
	importLinesTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordQuizStart counts a started quiz session.
func RecordQuizStart(mode string) {
	quizSessionsTotal.WithLabelValues(mode).Inc()
}

// RecordQuizScore records the final percentage of a finished choice quiz.
func RecordQuizScore(percent int) {
	quizScorePercent.Observe(float64(percent))
}
