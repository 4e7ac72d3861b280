package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/common"
	"leadsync/internal/services"
)

// AdminHandlers serves the admin console
type AdminHandlers struct {
	admin  services.AdminService
	logger *zap.Logger
}

func NewAdminHandlers(admin services.AdminService, logger *zap.Logger) *AdminHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandlers{admin: admin, logger: logger}
}

// ListCustomers godoc
// @Summary All customers
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Customer
// @Router /v1/admin/customers [get]
func (h *AdminHandlers) ListCustomers(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	customers, err := h.admin.ListCustomers(c.Request().Context(), sess)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.JSON(http.StatusOK, customers)
}

// GrantAccess godoc
// @Summary Give a user the admin role
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /v1/admin/users/{id}/grant [post]
func (h *AdminHandlers) GrantAccess(c echo.Context) error {
	return h.changeAccess(c, h.admin.GrantAccess)
}

// RevokeAccess godoc
// @Summary Remove a user's admin role
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /v1/admin/users/{id}/revoke [post]
func (h *AdminHandlers) RevokeAccess(c echo.Context) error {
	return h.changeAccess(c, h.admin.RevokeAccess)
}

func (h *AdminHandlers) changeAccess(c echo.Context, change func(ctx context.Context, sess *services.Session, userID string) error) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := change(c.Request().Context(), sess, c.Param("id")); err != nil {
		return h.adminError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandlers) adminError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrAdminRequired):
		return common.SendError(c, http.StatusForbidden, common.CodeForbidden, "Admin role required", nil)
	case errors.Is(err, services.ErrMissingUserID):
		return common.SendValidationError(c, "id", err.Error())
	default:
		return backendError(c, h.logger, err, http.StatusUnprocessableEntity)
	}
}
