// Package healthcheck provides health and readiness check functionality
// Following the Health Check API pattern for cloud-native applications
package healthcheck

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check represents the result of one health check
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response represents the health check response
type Response struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Checker defines the interface for health checks
type Checker interface {
	Check() Check
}

// HealthCheck manages health checks
type HealthCheck struct {
	version  string
	checkers map[string]Checker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// New creates a new health check instance
func New(version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		version:  version,
		checkers: make(map[string]Checker),
		logger:   logger,
	}
}

// Register registers a health checker
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Check runs all registered checks. Checks are cheap in-process probes,
// so they run sequentially in name order.
func (h *HealthCheck) Check() Response {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	response := Response{
		Status:    StatusHealthy,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    make([]Check, 0, len(names)),
	}

	for _, name := range names {
		h.mu.RLock()
		checker := h.checkers[name]
		h.mu.RUnlock()

		check := checker.Check()
		check.Name = name
		response.Checks = append(response.Checks, check)

		switch {
		case check.Status == StatusUnhealthy:
			response.Status = StatusUnhealthy
		case check.Status == StatusDegraded && response.Status == StatusHealthy:
			response.Status = StatusDegraded
		}
	}

	return response
}

// LivenessHandler reports the process as alive whenever it can respond
func (h *HealthCheck) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "alive",
			"version":   h.version,
			"timestamp": time.Now().UTC(),
		})
	}
}

// ReadinessHandler returns 503 while any check is unhealthy
func (h *HealthCheck) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := h.Check()

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
			h.logger.Warn("Readiness check failed", zap.Any("checks", response.Checks))
		}

		writeJSON(w, statusCode, response)
	}
}

// CustomChecker allows for custom health check logic
type CustomChecker struct {
	name  string
	check func() (Status, string)
}

// NewCustomChecker creates a new custom checker
func NewCustomChecker(name string, check func() (Status, string)) *CustomChecker {
	return &CustomChecker{name: name, check: check}
}

// Check performs the custom health check
func (c *CustomChecker) Check() Check {
	status, message := c.check()
	return Check{Name: c.name, Status: status, Message: message}
}

// RequiredValueChecker is unhealthy while a required setting is empty
func RequiredValueChecker(name, value string) Checker {
	return NewCustomChecker(name, func() (Status, string) {
		if value == "" {
			return StatusUnhealthy, "not configured"
		}
		return StatusHealthy, ""
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
