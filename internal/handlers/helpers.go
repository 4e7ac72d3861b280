package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/apiclient"
	"leadsync/internal/common"
	"leadsync/internal/middleware"
	"leadsync/internal/services"
)

var errNoSession = echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")

func currentSession(c echo.Context) (*services.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}

// backendError maps a failed analytics API call onto a response. Domain
// rejections get domainStatus, timeouts 504, everything else is a gateway
// failure.
func backendError(c echo.Context, logger *zap.Logger, err error, domainStatus int) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("backend request timed out", zap.String("path", c.Path()), zap.Error(err))
		return common.SendError(c, http.StatusGatewayTimeout, common.CodeTimeout, apiclient.MsgNotResponding, nil)
	case apiclient.IsCanceled(err):
		// client went away
		return c.NoContent(499)
	}

	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		logger.Error("backend request failed", zap.String("path", c.Path()), zap.Error(err))
		return common.SendServerError(c, "Internal server error")
	}

	switch apiErr.Kind {
	case apiclient.KindDomain:
		return common.SendError(c, domainStatus, common.CodeRejected, apiErr.Message, nil)
	case apiclient.KindHTTP:
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return common.SendError(c, http.StatusUnauthorized, common.CodeUnauthorized, apiErr.Message, nil)
		}
	}
	logger.Warn("backend request failed",
		zap.String("path", c.Path()),
		zap.String("kind", string(apiErr.Kind)),
		zap.Int("status", apiErr.StatusCode),
		zap.String("message", apiErr.Message))
	return common.SendUpstreamError(c, apiErr.Message)
}
