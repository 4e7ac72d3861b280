package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadsync/internal/common"
	"leadsync/internal/leadview"
	"leadsync/internal/models"
	"leadsync/internal/repositories"
	"leadsync/internal/services"
)

// LeadHandlers serves the lead table and its mutations
type LeadHandlers struct {
	exports services.ExportService
	audit   repositories.LeadAuditRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewLeadHandlers creates lead handlers. exports and audit may be nil when
// object storage or the database is not configured.
func NewLeadHandlers(exports services.ExportService, audit repositories.LeadAuditRepository, logger *zap.Logger) *LeadHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandlers{exports: exports, audit: audit, logger: logger, now: time.Now}
}

// LeadListResponse is one table page plus the store's load state
type LeadListResponse struct {
	leadview.Page
	State services.LeadsState `json:"state"`
}

// LeadStatsResponse is the per-status counts plus the store's load state
type LeadStatsResponse struct {
	models.LeadStats
	State services.LeadsState `json:"state"`
}

// UpdateStatusRequest is the body of a status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// LeadHistoryResponse is a page of the status audit trail
type LeadHistoryResponse struct {
	Changes []*models.LeadStatusChange `json:"changes"`
	Total   int                        `json:"total"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}

// ListLeads godoc
// @Summary Lead table page
// @Description Dedupe, filter, sort and paginate the session's leads. The first call loads them from the backend.
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Param search query string false "Substring over name, email, company, phone"
// @Param status query string false "Lead status or all"
// @Param date query string false "all, today, week or month"
// @Param sort query string false "Sort field"
// @Param dir query string false "asc or desc"
// @Param toggle query string false "Sort field to toggle against sort and dir"
// @Param hide_duplicates query bool false "Collapse duplicate emails"
// @Param page query int false "1-based page"
// @Success 200 {object} LeadListResponse
// @Router /v1/leads [get]
func (h *LeadHandlers) ListLeads(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	q, err := leadview.ParseQuery(c.QueryParams())
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	state := ensureLeads(c.Request().Context(), sess)
	return c.JSON(http.StatusOK, LeadListResponse{
		Page:  leadview.Apply(sess.Leads.Leads(), q, h.now()),
		State: state,
	})
}

// RefreshLeads godoc
// @Summary Reload leads from the backend
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.LeadsState
// @Router /v1/leads/refresh [post]
func (h *LeadHandlers) RefreshLeads(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.Leads.Fetch(c.Request().Context()))
}

// UpdateLeadStatus godoc
// @Summary Change a lead's status
// @Tags leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} models.Lead
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/leads/{id}/status [put]
func (h *LeadHandlers) UpdateLeadStatus(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := common.ValidateRequiredString(id, "id"); err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	ctx := c.Request().Context()
	ensureLeads(ctx, sess)
	lead, err := sess.Leads.UpdateStatus(ctx, id, req.Status)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, lead)
	case errors.Is(err, services.ErrInvalidStatus):
		return common.SendValidationError(c, "status", "must be one of new, contacted, qualified, converted")
	case errors.Is(err, services.ErrLeadNotFound):
		return common.SendNotFoundError(c, "Lead")
	default:
		return backendError(c, h.logger, err, http.StatusUnprocessableEntity)
	}
}

// LeadStats godoc
// @Summary Lead counts per status
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Success 200 {object} LeadStatsResponse
// @Router /v1/leads/stats [get]
func (h *LeadHandlers) LeadStats(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	state := ensureLeads(c.Request().Context(), sess)
	return c.JSON(http.StatusOK, LeadStatsResponse{
		LeadStats: sess.Leads.Stats(),
		State:     state,
	})
}

// ensureLeads waits for the fetch started at sign-in and loads the leads
// itself when the store has never been filled.
func ensureLeads(ctx context.Context, sess *services.Session) services.LeadsState {
	state := sess.WaitForLeads(ctx)
	if state.FetchedAt == nil && state.State == services.LeadsLoading {
		state = sess.Leads.Fetch(ctx)
	}
	return state
}

// ExportLeads godoc
// @Summary Export the filtered lead table as CSV
// @Description Every matching row is exported, not just the current page.
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.LeadExport
// @Router /v1/leads/export [post]
func (h *LeadHandlers) ExportLeads(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if h.exports == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Exports are not configured")
	}
	q, err := leadview.ParseQuery(c.QueryParams())
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	export, err := h.exports.Export(c.Request().Context(), sess, q)
	if err != nil {
		if errors.Is(err, services.ErrNothingToExport) {
			return common.SendClientError(c, leadview.EmptyMessage)
		}
		h.logger.Error("lead export failed", zap.String("session_id", sess.ID), zap.Error(err))
		return common.SendServerError(c, "Failed to export leads")
	}
	return c.JSON(http.StatusCreated, export)
}

// LeadHistory godoc
// @Summary Status change history of a lead
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lead ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} LeadHistoryResponse
// @Router /v1/leads/{id}/history [get]
func (h *LeadHandlers) LeadHistory(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if h.audit == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Lead history is not configured")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	account := sess.Account()
	filters := &models.LeadStatusChangeFilters{
		CustomerID: account.CustomerID,
		Limit:      limit,
		Offset:     offset,
	}
	if filters.CustomerID == "" {
		filters.CustomerID = account.ID
	}

	// Generated ids change on every fetch, so the email is the stable key
	id := c.Param("id")
	if lead, ok := sess.Leads.Lead(id); ok && lead.Email != "" {
		filters.LeadEmail = &lead.Email
	} else {
		filters.LeadID = &id
	}

	ctx := c.Request().Context()
	changes, err := h.audit.List(ctx, filters)
	if err != nil {
		h.logger.Error("failed to list lead history", zap.String("lead_id", id), zap.Error(err))
		return common.SendServerError(c, "Failed to load lead history")
	}
	total, err := h.audit.Count(ctx, filters)
	if err != nil {
		h.logger.Error("failed to count lead history", zap.String("lead_id", id), zap.Error(err))
		return common.SendServerError(c, "Failed to load lead history")
	}

	return c.JSON(http.StatusOK, LeadHistoryResponse{
		Changes: changes,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}
