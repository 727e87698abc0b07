// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screener_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screener_match_scores",
			Help:    "Distribution of résumé/job compatibility scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	CandidatesRanked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_candidates_ranked_total",
			Help: "Total number of ranked candidates by final recommendation",
		},
		[]string{"recommendation"},
	)

	DocumentsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_documents_ingested_total",
			Help: "Total number of uploaded documents by format and outcome",
		},
		[]string{"format", "result"},
	)
)

// Ingestion outcomes
const (
	ResultOK      = "ok"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// ObserveScore records one compatibility score.
func ObserveScore(score int) {
	MatchScores.Observe(float64(score))
}

// ObserveCandidates records the scores and final recommendations of a ranked batch.
func ObserveCandidates(records []types.CandidateRecord) {
	for _, rec := range records {
		MatchScores.Observe(float64(rec.Score))
		CandidatesRanked.WithLabelValues(string(rec.Recommendation)).Inc()
	}
}

// ObserveIngest records one document ingestion outcome.
func ObserveIngest(format, result string) {
	if format == "" {
		format = "unknown"
	}
	DocumentsIngested.WithLabelValues(format, result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware counts requests and observes their duration. Paths are labelled
// by the matched route pattern to keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := logging.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
		HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
