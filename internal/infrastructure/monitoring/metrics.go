// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection. Each collector owns
// its registry so several can coexist in one process (tests, CLI).
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	recipeRequestsTotal *prometheus.CounterVec
	enrichmentFailures  *prometheus.CounterVec

	// Upstream metrics
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec
	circuitState            *prometheus.GaugeVec
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger,
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"method", "route"},
		),

		recipeRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_requests_total",
				Help: "Total number of recipe requests by outcome",
			},
			[]string{"outcome"},
		),
		enrichmentFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_enrichment_failures_total",
				Help: "Enrichment calls that left a recipe field absent",
			},
			[]string{"field"},
		),

		upstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of calls to the recipe provider and the language model",
			},
			[]string{"service", "operation", "status"},
		),
		upstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Upstream call duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"service", "operation"},
		),
		circuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}
}

// HTTPMiddleware records request counts and latency per chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordOutcome counts one handled recipe request
func (m *MetricsCollector) RecordOutcome(outcome string) {
	m.recipeRequestsTotal.WithLabelValues(outcome).Inc()
}

// EnrichmentFailed counts one absent enrichment field
func (m *MetricsCollector) EnrichmentFailed(field string) {
	m.enrichmentFailures.WithLabelValues(field).Inc()
}

// UpstreamCall records one outbound call
func (m *MetricsCollector) UpstreamCall(service, operation, status string, duration time.Duration) {
	m.upstreamRequestsTotal.WithLabelValues(service, operation, status).Inc()
	m.upstreamRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// SetCircuitState exports a breaker state transition
func (m *MetricsCollector) SetCircuitState(name string, state int) {
	m.circuitState.WithLabelValues(name).Set(float64(state))
	m.logger.Info("Circuit breaker state changed",
		zap.String("name", name),
		zap.Int("state", state),
	)
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
