package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMetricsCollector_BusinessCounters(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))

	m.RecordOutcome("understood")
	m.RecordOutcome("understood")
	m.RecordOutcome("no_matches")
	m.EnrichmentFailed("image")
	m.UpstreamCall("spoonacular", "search", "ok", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recipeRequestsTotal.WithLabelValues("understood")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recipeRequestsTotal.WithLabelValues("no_matches")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.enrichmentFailures.WithLabelValues("image")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequestsTotal.WithLabelValues("spoonacular", "search", "ok")))
}

func TestMetricsCollector_CollectorsAreIsolated(t *testing.T) {
	a := NewMetricsCollector(zaptest.NewLogger(t))
	b := NewMetricsCollector(zaptest.NewLogger(t))

	a.RecordOutcome("understood")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.recipeRequestsTotal.WithLabelValues("understood")))
}

func TestMetricsCollector_HTTPMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Post("/get_recipe", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/get_recipe", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/get_recipe", "400")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

func TestNewTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(t.Context()))
}
