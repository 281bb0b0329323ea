package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// pathPattern collapses the id-bearing segments so the label set stays
// bounded no matter how many visitors and products exist. Patterns are
// derived from the route shapes because the middleware sits outside the
// mux and never sees resolved path values.
func pathPattern(r *http.Request) string {

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	if len(segments) < 2 || segments[0] != "api" {
		return r.URL.Path
	}

	switch segments[1] {
	case "cart":
		switch {
		case len(segments) == 3:
			return "/api/cart/{ownerId}"
		case len(segments) == 5 && segments[2] == "add":
			return "/api/cart/add/{ownerId}/{productId}"
		case len(segments) == 6 && segments[2] == "update":
			return "/api/cart/update/{ownerId}/{productId}/{action}"
		case len(segments) == 5 && segments[2] == "remove":
			return "/api/cart/remove/{ownerId}/{productId}"
		}
	case "orders":
		switch {
		case len(segments) == 3 && segments[2] == "status":
			return "/api/orders/status"
		case len(segments) == 4 && segments[2] == "place":
			return "/api/orders/place/{ownerId}"
		case len(segments) == 4 && segments[2] == "feed":
			return "/api/orders/feed/{sellerId}"
		case len(segments) == 3:
			return "/api/orders/{ownerId}"
		}
	}

	return "/api/unmatched"
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		defer func() {

			duration := time.Since(start)
			statusCodeStr := strconv.Itoa(rw.statusCode)
			pattern := pathPattern(r)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, pattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pattern).Observe(duration.Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r)

	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
