package healthcheck

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHealthCheck_AggregatesStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
		{"no checks", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New("1.0.0", zaptest.NewLogger(t))
			for i, s := range tt.statuses {
				status := s
				h.Register(string(rune('a'+i)), NewCustomChecker("c", func() (Status, string) { return status, "" }))
			}

			resp := h.Check()
			assert.Equal(t, tt.expected, resp.Status)
			assert.Len(t, resp.Checks, len(tt.statuses))
		})
	}
}

func TestHealthCheck_ChecksSortedByName(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))
	h.Register("provider_api_key", RequiredValueChecker("x", "set"))
	h.Register("llm_api_key", RequiredValueChecker("x", "set"))

	resp := h.Check()
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "llm_api_key", resp.Checks[0].Name)
	assert.Equal(t, "provider_api_key", resp.Checks[1].Name)
}

func TestReadinessHandler(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))
	h.Register("provider_api_key", RequiredValueChecker("provider_api_key", ""))

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.Equal(t, "not configured", body.Checks[0].Message)
}

func TestLivenessHandler(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}
