package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sattrack_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sattrack_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sattrack_predictions_total",
			Help: "Total number of orbit predictions by outcome.",
		},
		[]string{"outcome"},
	)

	propagationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sattrack_propagation_duration_seconds",
			Help:    "Wall time spent computing a prediction or track.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		},
	)

	trackPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sattrack_track_points",
			Help:    "Number of points produced per track request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(predictionsTotal)
	prometheus.MustRegister(propagationSeconds)
	prometheus.MustRegister(trackPoints)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records one prediction computation and its wall time.
func RecordPrediction(duration time.Duration, outcome string) {
	predictionsTotal.WithLabelValues(outcome).Inc()
	propagationSeconds.Observe(duration.Seconds())
}

// ObserveTrackPoints records the size of a completed track response.
func ObserveTrackPoints(n int) {
	trackPoints.Observe(float64(n))
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// knownRoutes are the paths the server actually registers. Anything
// else (bots, scanners) collapses to one label so path cardinality
// stays bounded.
var knownRoutes = map[string]bool{
	"/":        true,
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
	"/predict": true,
	"/track":   true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
