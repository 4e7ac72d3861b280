package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/common"
	"leadsync/internal/models"
	"leadsync/internal/pixel"
	"leadsync/internal/services"
)

// PixelHandlers serves the tracking snippet and relays its events
type PixelHandlers struct {
	pixels services.PixelService
	logger *zap.Logger
}

func NewPixelHandlers(pixels services.PixelService, logger *zap.Logger) *PixelHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PixelHandlers{pixels: pixels, logger: logger}
}

// VerifyPixelRequest names the page to check
type VerifyPixelRequest struct {
	URL string `json:"url"`
}

// SnippetResponse is the install code for the signed-in customer
type SnippetResponse struct {
	CustomerID string `json:"customer_id"`
	Script     string `json:"script"`
	EmbedTag   string `json:"embed_tag"`
}

// Script godoc
// @Summary Tracking snippet
// @Tags pixel
// @Produce application/javascript
// @Param customer_id query string true "Customer ID"
// @Success 200 {string} string
// @Router /pixel.js [get]
func (h *PixelHandlers) Script(c echo.Context) error {
	js, err := h.pixels.Snippet(c.QueryParam("customer_id"))
	if err != nil {
		return common.SendValidationError(c, "customer_id", err.Error())
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return c.Blob(http.StatusOK, "application/javascript; charset=utf-8", []byte(js))
}

// InstallCode godoc
// @Summary Snippet and script tag for the current customer
// @Tags pixel
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SnippetResponse
// @Router /v1/pixel/snippet [get]
func (h *PixelHandlers) InstallCode(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	account := sess.Account()
	customerID := account.CustomerID
	if customerID == "" {
		customerID = account.ID
	}

	js, err := h.pixels.Snippet(customerID)
	if err != nil {
		return common.SendServerError(c, "Failed to render snippet")
	}
	tag, err := h.pixels.EmbedTag(customerID)
	if err != nil {
		return common.SendServerError(c, "Failed to render snippet")
	}
	return c.JSON(http.StatusOK, SnippetResponse{CustomerID: customerID, Script: js, EmbedTag: tag})
}

// Events godoc
// @Summary Relay a page view to the pixel endpoint
// @Tags pixel
// @Accept json
// @Produce json
// @Param body body models.PageView true "Page view"
// @Success 202 {object} map[string]interface{}
// @Failure 429 {object} common.ErrorResponse
// @Router /v1/pixel/events [post]
func (h *PixelHandlers) Events(c echo.Context) error {
	var view models.PageView
	if err := c.Bind(&view); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.pixels.Relay(c.Request().Context(), view)
	switch {
	case err == nil:
	case errors.Is(err, pixel.ErrMissingCustomerID):
		return common.SendValidationError(c, "customer_id", err.Error())
	case errors.Is(err, services.ErrRateLimited):
		return common.SendError(c, http.StatusTooManyRequests, common.CodeRateLimited, err.Error(), nil)
	default:
		h.logger.Warn("pixel relay failed", zap.String("customer_id", view.CustomerID), zap.Error(err))
		return common.SendUpstreamError(c, "Pixel endpoint unavailable")
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"status":   result.StatusCode,
		"response": result.Body,
	})
}

// Verify godoc
// @Summary Check whether the pixel is installed on a page
// @Tags pixel
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body VerifyPixelRequest true "Page URL"
// @Success 200 {object} models.PixelVerification
// @Router /v1/pixel/verify [post]
func (h *PixelHandlers) Verify(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req VerifyPixelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.pixels.Verify(c.Request().Context(), sess, req.URL)
	if err != nil {
		if errors.Is(err, services.ErrInvalidURL) {
			return common.SendValidationError(c, "url", err.Error())
		}
		return backendError(c, h.logger, err, http.StatusUnprocessableEntity)
	}
	return c.JSON(http.StatusOK, result)
}
