package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/services"
)

// DashboardHandlers serves aggregate metrics and queued toasts
type DashboardHandlers struct {
	metrics  services.MetricsService
	notifier services.NotificationService
	logger   *zap.Logger
}

func NewDashboardHandlers(metrics services.MetricsService, notifier services.NotificationService, logger *zap.Logger) *DashboardHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandlers{metrics: metrics, notifier: notifier, logger: logger}
}

// Metrics godoc
// @Summary Dashboard stats, weekly lead count and traffic
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} models.DashboardMetrics
// @Router /v1/dashboard/metrics [get]
func (h *DashboardHandlers) Metrics(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	get := h.metrics.Get
	if c.QueryParam("refresh") == "true" {
		get = h.metrics.Refresh
	}
	metrics, err := get(ctx, sess)
	if err != nil {
		return backendError(c, h.logger, err, http.StatusBadGateway)
	}
	return c.JSON(http.StatusOK, metrics)
}

// Notifications godoc
// @Summary Drain pending toasts
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Notification
// @Router /v1/notifications [get]
func (h *DashboardHandlers) Notifications(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.notifier.Drain(sess.ID))
}
