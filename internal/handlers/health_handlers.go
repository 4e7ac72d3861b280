package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"leadsync/internal/middleware"
)

// Pinger is a dependency that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	version  string
	api      middleware.APIVersion
	started  time.Time
	required map[string]Pinger
	optional map[string]Pinger
	timeout  time.Duration
}

// NewHealthHandlers creates health handlers. Required dependencies fail
// readiness, optional ones only degrade the health report.
func NewHealthHandlers(version string, api middleware.APIVersion, required, optional map[string]Pinger) *HealthHandlers {
	return &HealthHandlers{
		version:  version,
		api:      api,
		started:  time.Now(),
		required: required,
		optional: optional,
		timeout:  2 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string                `json:"status"`
	Timestamp  string                `json:"timestamp"`
	Services   map[string]string     `json:"services"`
	Uptime     string                `json:"uptime"`
	Version    string                `json:"version"`
	API        middleware.APIVersion `json:"api"`
	Goroutines int                   `json:"goroutines"`
}

// HealthCheck godoc
// @Summary Liveness and dependency report
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   make(map[string]string),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Version:    h.version,
		API:        h.api,
		Goroutines: runtime.NumGoroutine(),
	}
	for _, deps := range []map[string]Pinger{h.required, h.optional} {
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				health.Services[name] = "unhealthy"
				health.Status = "degraded"
				continue
			}
			health.Services[name] = "healthy"
		}
	}

	// Degraded still answers 200; the process itself is alive
	return c.JSON(http.StatusOK, health)
}

// ReadinessCheck godoc
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	for name, dep := range h.required {
		if err := dep.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "not_ready",
				"message": name + " unavailable",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}
