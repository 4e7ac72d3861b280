package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"leadsync/internal/common"
	"leadsync/internal/jobs/background"
)

// JobRunner is the part of the scheduler the admin console uses
type JobRunner interface {
	RunNow(name string) error
	GetJobStatus() []background.JobStatus
}

type JobHandlers struct {
	runner JobRunner
}

func NewJobHandlers(runner JobRunner) *JobHandlers {
	return &JobHandlers{runner: runner}
}

// ListJobs godoc
// @Summary Background job schedule
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} background.JobStatus
// @Router /v1/admin/jobs [get]
func (h *JobHandlers) ListJobs(c echo.Context) error {
	status := h.runner.GetJobStatus()
	sort.Slice(status, func(i, j int) bool { return status[i].Name < status[j].Name })
	return c.JSON(http.StatusOK, status)
}

// RunJob godoc
// @Summary Run a background job now
// @Tags admin
// @Security BearerAuth
// @Param name path string true "Job name"
// @Success 202
// @Router /v1/admin/jobs/{name}/run [post]
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.runner.RunNow(name); err != nil {
		if errors.Is(err, background.ErrUnknownJob) {
			return common.SendNotFoundError(c, "Job")
		}
		return common.SendServerError(c, "Failed to start job")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Job started", "job": name})
}
