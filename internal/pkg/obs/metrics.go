package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Lifecycle metrics
var (
	requestTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetverse_request_transitions_total",
			Help: "Request lifecycle calls by transition and outcome.",
		},
		[]string{"transition", "outcome"},
	)

	inventoryAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetverse_inventory_adjustments_total",
			Help: "Guarded asset quantity adjustments by outcome.",
		},
		[]string{"outcome"},
	)

	reconciled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetverse_reconciled_total",
		Help: "Pending inventory adjustments settled by the reconciler.",
	})
)

// Outcome labels
const (
	OutcomeApplied   = "applied"
	OutcomeNoop      = "noop"
	OutcomeExhausted = "exhausted"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

var registerOnce sync.Once

// Init registers all metrics in the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			requestTransitions, inventoryAdjustments, reconciled,
		)
	})
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records in-flight, count and latency per chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		httpRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
	})
}

func RecordTransition(transition, outcome string) {
	requestTransitions.WithLabelValues(transition, outcome).Inc()
}

func RecordInventoryAdjustment(outcome string) {
	inventoryAdjustments.WithLabelValues(outcome).Inc()
}

func RecordReconciled(n int) {
	reconciled.Add(float64(n))
}
