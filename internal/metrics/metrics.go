// Package metrics exposes the Prometheus collectors for the HTTP surface and
// the message lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ReasonMissingToken       = "missing_token"
	ReasonInvalidToken       = "invalid_token"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonForbidden          = "forbidden"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messagely_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "messagely_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	MessagesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messagely_messages_created_total",
		Help: "Total number of messages sent",
	})
	MessagesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messagely_messages_read_total",
		Help: "Total number of successful read marks",
	})
	AuthFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messagely_auth_failures_total",
		Help: "Rejected authentication and authorization attempts",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, MessagesCreated, MessagesRead, AuthFailures)
}

// Recorder feeds lifecycle events from the services into the collectors.
type Recorder struct{}

func (Recorder) MessageCreated()          { MessagesCreated.Inc() }
func (Recorder) MessageRead()             { MessagesRead.Inc() }
func (Recorder) AuthFailed(reason string) { AuthFailures.WithLabelValues(reason).Inc() }

// Middleware records request count and latency labelled by the matched route
// pattern. It must wrap the ServeMux directly so the pattern is visible after
// routing.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(rec.status)}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
