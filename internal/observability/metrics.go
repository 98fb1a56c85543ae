package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	apiInFlight     prometheus.Gauge
	pagesActive     prometheus.Gauge
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_api_requests_total",
		Help: "Jumlah panggilan ke backend absensi per endpoint dan hasil.",
	}, []string{"route", "method", "outcome"})
	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_api_request_duration_seconds",
		Help:    "Durasi panggilan ke backend absensi per endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	apiInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_api_inflight",
		Help: "Panggilan backend yang sedang berjalan (indikator loading).",
	})
	pagesActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_pages_active",
		Help: "Halaman dashboard yang statusnya masih disimpan.",
	})
	registry.MustRegister(requests, duration, apiRequests, apiDuration, apiInFlight, pagesActive)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		apiRequests:     apiRequests,
		apiDuration:     apiDuration,
		apiInFlight:     apiInFlight,
		pagesActive:     pagesActive,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAPIRequest mencatat satu panggilan backend. route sudah dinormalisasi
// sehingga ID tidak memecah label.
func (m *Metrics) ObserveAPIRequest(route, method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(route, method, outcome).Inc()
	m.apiDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SetAPIInFlight memperbarui gauge panggilan backend yang berjalan.
func (m *Metrics) SetAPIInFlight(n int) {
	if m == nil {
		return
	}
	m.apiInFlight.Set(float64(n))
}

// SetActivePages memperbarui jumlah halaman di registry.
func (m *Metrics) SetActivePages(n int) {
	if m == nil {
		return
	}
	m.pagesActive.Set(float64(n))
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
