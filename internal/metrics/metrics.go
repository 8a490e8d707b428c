package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservationhub_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservationhub_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservationhub_bookings_created_total",
		Help: "Total number of reservations created.",
	})

	bookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservationhub_booking_conflicts_total",
		Help: "Total number of booking attempts rejected due to conflicts.",
	})

	recurrenceFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservationhub_recurrence_fallbacks_total",
		Help: "Total number of recurrence rules that failed to parse and were treated as one-off events.",
	})

	syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservationhub_sync_runs_total",
		Help: "Total number of calendar reconciliation runs by outcome.",
	}, []string{"outcome"})

	syncEventsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservationhub_sync_events_imported_total",
		Help: "Total number of calendar events imported from peer servers.",
	})
)

// Middleware records per-route request counts and latencies.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := strconv.Itoa(ww.Status())
			httpRequestsTotal.WithLabelValues(r.Method, route).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// BookingCreated counts a successfully stored reservation.
func BookingCreated() { bookingsCreated.Inc() }

// BookingConflict counts a booking rejected by the conflict checker.
func BookingConflict() { bookingConflicts.Inc() }

// RecurrenceFallback counts a recurrence rule that could not be parsed.
func RecurrenceFallback() { recurrenceFallbacks.Inc() }

// SyncRun counts a reconciliation run with the given outcome label,
// either "success" or "failure".
func SyncRun(outcome string) { syncRuns.WithLabelValues(outcome).Inc() }

// SyncEventsImported counts events imported during reconciliation.
func SyncEventsImported(n int) { syncEventsImported.Add(float64(n)) }

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
