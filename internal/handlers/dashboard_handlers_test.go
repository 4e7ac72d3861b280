package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leadsync/internal/apiclient"
	"leadsync/internal/models"
	"leadsync/internal/services"
)

func TestDashboardMetrics(t *testing.T) {
	sess := customerSession(nil)
	metrics := &MockMetricsService{}
	cached := &models.DashboardMetrics{Stats: json.RawMessage(`{"visits":10}`)}
	fresh := &models.DashboardMetrics{Stats: json.RawMessage(`{"visits":12}`)}
	metrics.On("Get", mock.Anything, sess).Return(cached, nil).Once()
	metrics.On("Refresh", mock.Anything, sess).Return(fresh, nil).Once()
	h := NewDashboardHandlers(metrics, services.NewNotificationService(nil), nil)

	c, rec := newContext(http.MethodGet, "/v1/dashboard/metrics", "", sess)
	require.NoError(t, h.Metrics(c))
	assert.Contains(t, rec.Body.String(), `"visits":10`)

	c, rec = newContext(http.MethodGet, "/v1/dashboard/metrics?refresh=true", "", sess)
	require.NoError(t, h.Metrics(c))
	assert.Contains(t, rec.Body.String(), `"visits":12`)

	metrics.AssertExpectations(t)
}

func TestDashboardMetrics_BackendFailure(t *testing.T) {
	sess := customerSession(nil)
	metrics := &MockMetricsService{}
	metrics.On("Get", mock.Anything, sess).
		Return(nil, &apiclient.Error{Kind: apiclient.KindMalformed, Message: "Invalid response from server"}).Once()
	h := NewDashboardHandlers(metrics, services.NewNotificationService(nil), nil)

	c, rec := newContext(http.MethodGet, "/v1/dashboard/metrics", "", sess)
	require.NoError(t, h.Metrics(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid response from server")
}

func TestNotificationsDrain(t *testing.T) {
	notifier := services.NewNotificationService(nil)
	notifier.Success("s1", "Lead status updated to qualified")
	notifier.Error("s1", "Failed to load leads: Network error")
	h := NewDashboardHandlers(&MockMetricsService{}, notifier, nil)

	c, rec := newContext(http.MethodGet, "/v1/notifications", "", customerSession(nil))
	require.NoError(t, h.Notifications(c))

	var drained []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drained))
	require.Len(t, drained, 2)
	assert.Equal(t, models.NotificationSuccess, drained[0].Level)
	assert.Equal(t, 0, notifier.Pending("s1"))

	c, rec = newContext(http.MethodGet, "/v1/notifications", "", customerSession(nil))
	require.NoError(t, h.Notifications(c))
	assert.Equal(t, "[]\n", rec.Body.String())
}
