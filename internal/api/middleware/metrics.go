package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

var httpLabels = []string{"method", "path", "status_code"}

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_approval_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, httpLabels)

	// Upper buckets cover the request timeout.
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credit_approval_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, httpLabels)

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "credit_approval_http_requests_in_flight",
		Help: "Number of HTTP requests currently being served.",
	})
)

// MetricsMiddleware labels requests by route pattern, so /view-loan/1 and
// /view-loan/2 share one series.
func MetricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			httpRequestsInFlight.Inc()
			start := time.Now()

			defer func() {
				httpRequestsInFlight.Dec()
				labels := prometheus.Labels{
					"method":      r.Method,
					"path":        routePattern(r),
					"status_code": strconv.Itoa(responseStatus(ww)),
				}
				httpRequestsTotal.With(labels).Inc()
				httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// routePattern is only complete once the router has dispatched the request.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// responseStatus treats a handler that never wrote a header as 200.
func responseStatus(ww middleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
