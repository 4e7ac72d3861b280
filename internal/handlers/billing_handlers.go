package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"leadsync/internal/common"
	"leadsync/internal/services"
)

// BillingHandlers serves the plan catalogue shown on the paywall
type BillingHandlers struct {
	billing services.BillingService
}

func NewBillingHandlers(billing services.BillingService) *BillingHandlers {
	return &BillingHandlers{billing: billing}
}

// ListPlans godoc
// @Summary Billing plans, cheapest first
// @Tags billing
// @Produce json
// @Success 200 {array} models.Plan
// @Router /v1/billing/plans [get]
func (h *BillingHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billing.Plans())
}

// GetPlan godoc
// @Summary One billing plan
// @Tags billing
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} models.Plan
// @Router /v1/billing/plans/{id} [get]
func (h *BillingHandlers) GetPlan(c echo.Context) error {
	plan, err := h.billing.Plan(c.Param("id"))
	if err != nil {
		return common.SendNotFoundError(c, "Plan")
	}
	return c.JSON(http.StatusOK, plan)
}
