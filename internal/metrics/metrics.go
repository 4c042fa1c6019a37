// Package metrics exposes Prometheus collectors for the APK list service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	refreshCyclesTotal         *prometheus.CounterVec
	refreshDurationSeconds     prometheus.Histogram
	catalogProducts            *prometheus.GaugeVec
	catalogSkippedTotal        prometheus.Counter
	pageBytes                  prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		refreshCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apklist_refresh_cycles_total",
				Help: "Total number of refresh cycles, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		refreshDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "apklist_refresh_duration_seconds",
				Help:    "Histogram of full refresh cycle durations.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		)

		catalogProducts = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apklist_catalog_products",
				Help: "Number of eligible products on the page, labeled by group.",
			},
			[]string{"group"},
		)

		catalogSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "apklist_catalog_skipped_products_total",
				Help: "Total products dropped for missing a mandatory field.",
			},
		)

		pageBytes = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "apklist_page_bytes",
				Help: "Size in bytes of the currently published page.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apklist_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apklist_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveRefresh records one completed refresh cycle.
func ObserveRefresh(outcome string, duration time.Duration) {
	Init()
	refreshCyclesTotal.WithLabelValues(outcome).Inc()
	refreshDurationSeconds.Observe(duration.Seconds())
}

// SetGroupProducts records how many products a group currently holds.
func SetGroupProducts(group string, count int) {
	Init()
	catalogProducts.WithLabelValues(group).Set(float64(count))
}

// ObserveSkippedProduct counts a product dropped during decoding.
func ObserveSkippedProduct() {
	Init()
	catalogSkippedTotal.Inc()
}

// SetPageBytes records the size of the published page.
func SetPageBytes(n int) {
	Init()
	pageBytes.Set(float64(n))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
