// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
)

const namespace = "cleantec"

type Metrics struct {
	gatherer prometheus.Gatherer

	stepTransitions  *prometheus.CounterVec
	orderSubmissions *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing a fresh registry keeps
// tests independent of the global one.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		stepTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_step_transitions_total",
			Help:      "Checkout wizard step changes.",
		}, []string{"from", "to"}),
		orderSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_order_submissions_total",
			Help:      "Order submissions from the checkout wizard by result.",
		}, []string{"result"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "path", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) StepChanged(from, to domcheckout.Step) {
	m.stepTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) OrderSubmitted(ok bool) {
	result := "error"
	if ok {
		result = "ok"
	}
	m.orderSubmissions.WithLabelValues(result).Inc()
}

// BreakerState records a breaker transition. state follows the gauge help.
func (m *Metrics) BreakerState(name string, state float64) {
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := "unknown"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
