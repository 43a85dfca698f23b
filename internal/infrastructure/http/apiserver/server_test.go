package apiserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/recipefinder/internal/domain/recipe"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/config"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/security"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/alchemorsel/recipefinder/test/testutils"
	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "recipefinder", Version: "test"},
		Server: config.ServerConfig{
			Host:              "127.0.0.1",
			Port:              5000,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      5 * time.Second,
			IdleTimeout:       5 * time.Second,
			EnableCORS:        true,
			EnableCompression: true,
		},
		Monitoring: config.MonitoringConfig{
			EnableMetrics:   true,
			HealthCheckPath: "/health",
			ReadinessPath:   "/ready",
			MetricsPath:     "/metrics",
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, finder *testutils.MockRecipeFinder, checks map[string]healthcheck.Checker) *httptest.Server {
	t.Helper()
	log := zaptest.NewLogger(t)

	health := healthcheck.New(cfg.App.Version, log)
	for name, c := range checks {
		health.Register(name, c)
	}

	recipes := handlers.NewRecipeHandlers(finder, security.NewValidationService(log), log)
	s := NewServer(cfg, log, recipes, health, monitoring.NewMetricsCollector(log))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, testConfig(), new(testutils.MockRecipeFinder), nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	testutils.NewHTTPAssertions(t).SecurityHeaders(resp)
}

func TestServer_ReadinessReflectsChecks(t *testing.T) {
	ts := newTestServer(t, testConfig(), new(testutils.MockRecipeFinder), map[string]healthcheck.Checker{
		"provider_credentials": healthcheck.RequiredValueChecker("provider_credentials", ""),
	})

	resp, err := http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, testConfig(), new(testutils.MockRecipeFinder), nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Monitoring.EnableMetrics = false
	ts := newTestServer(t, cfg, new(testutils.MockRecipeFinder), nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_GetRecipe(t *testing.T) {
	finder := new(testutils.MockRecipeFinder)
	finder.On("Handle", mock.Anything, "eggs").Return(recipe.NoMatches(), nil)
	ts := newTestServer(t, testConfig(), finder, nil)

	resp, err := http.Post(ts.URL+"/get_recipe", "application/json", strings.NewReader(`{"query":"eggs"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	ha := testutils.NewHTTPAssertions(t)
	ha.StatusCode(resp, http.StatusOK)
	var body handlers.MessageResponse
	ha.JSONResponse(resp, &body)
	assert.Equal(t, handlers.MessageNoMatches, body.Message)
	assert.NotEmpty(t, resp.Header.Get("Cache-Control"))
}

func TestServer_GetRecipeMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, testConfig(), new(testutils.MockRecipeFinder), nil)

	resp, err := http.Get(ts.URL + "/get_recipe")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_BrotliCompression(t *testing.T) {
	finder := new(testutils.MockRecipeFinder)
	finder.On("Handle", mock.Anything, "eggs").Return(recipe.NotUnderstood(), nil)
	ts := newTestServer(t, testConfig(), finder, nil)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/get_recipe", strings.NewReader(`{"query":"eggs"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "br")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "br", resp.Header.Get("Content-Encoding"))
	body, err := io.ReadAll(brotli.NewReader(resp.Body))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Could not understand request."}`, string(body))
}

func TestServer_RequestBodyLimit(t *testing.T) {
	finder := new(testutils.MockRecipeFinder)
	ts := newTestServer(t, testConfig(), finder, nil)

	huge := `{"query":"` + strings.Repeat("a", maxRequestBody) + `"}`
	resp, err := http.Post(ts.URL+"/get_recipe", "application/json", strings.NewReader(huge))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	finder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}
