package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Sweeper runs one sweep on demand and reports how many items it handled
type Sweeper interface {
	RunNow(ctx context.Context) (int, error)
}

// InternalHandler exposes the background engine to trusted callers: manual
// sweeps, single work-item submission and job inspection.
type InternalHandler struct {
	recurringSweep Sweeper
	budgetSweep    Sweeper
	publisher      jobs.Publisher
	jobStore       jobs.JobStore
}

// NewInternalHandler creates a new InternalHandler. jobStore may be nil.
func NewInternalHandler(recurringSweep, budgetSweep Sweeper, publisher jobs.Publisher, jobStore jobs.JobStore) *InternalHandler {
	return &InternalHandler{
		recurringSweep: recurringSweep,
		budgetSweep:    budgetSweep,
		publisher:      publisher,
		jobStore:       jobStore,
	}
}

// SweepResponse reports the outcome of a manual sweep
type SweepResponse struct {
	Sweep string `json:"sweep"`
	Count int    `json:"count"`
}

// SubmitJobRequest is a recurring-transaction work item
type SubmitJobRequest struct {
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
}

// SubmitJobResponse is returned when a work item has been queued
type SubmitJobResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// RunRecurringSweep godoc
// @Summary Run the recurring-transaction sweep
// @Tags internal
// @Produce json
// @Security InternalKey
// @Success 200 {object} SweepResponse
// @Failure 500 {object} ProblemDetails
// @Router /internal/sweeps/recurring [post]
func (h *InternalHandler) RunRecurringSweep(c echo.Context) error {
	return h.runSweep(c, "recurring", h.recurringSweep)
}

// RunBudgetAlertSweep godoc
// @Summary Run the budget-alert sweep
// @Tags internal
// @Produce json
// @Security InternalKey
// @Success 200 {object} SweepResponse
// @Failure 500 {object} ProblemDetails
// @Router /internal/sweeps/budget-alerts [post]
func (h *InternalHandler) RunBudgetAlertSweep(c echo.Context) error {
	return h.runSweep(c, "budget-alerts", h.budgetSweep)
}

func (h *InternalHandler) runSweep(c echo.Context, name string, sweeper Sweeper) error {
	if sweeper == nil {
		return NewServiceUnavailableError(c, "Sweep is not configured")
	}

	count, err := sweeper.RunNow(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Str("sweep", name).Msg("Manual sweep failed")
		return NewInternalError(c, "Sweep failed")
	}

	return c.JSON(http.StatusOK, SweepResponse{Sweep: name, Count: count})
}

// SubmitRecurringJob godoc
// @Summary Queue one recurring-transaction work item
// @Tags internal
// @Accept json
// @Produce json
// @Security InternalKey
// @Param request body SubmitJobRequest true "Work item"
// @Success 202 {object} SubmitJobResponse
// @Failure 400 {object} ProblemDetails
// @Router /internal/jobs/recurring [post]
func (h *InternalHandler) SubmitRecurringJob(c echo.Context) error {
	var req SubmitJobRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	job := &jobs.RecurringTransactionJob{
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
	}
	if _, _, err := job.Validate(); err != nil {
		if errors.Is(err, domain.ErrInvalidWorkItem) {
			return NewValidationError(c, "Invalid work item", []ValidationError{
				{Field: "transactionId", Message: "transactionId and userId must both be valid UUIDs"},
			})
		}
		return NewInternalError(c, "Failed to validate work item")
	}

	if err := h.publisher.PublishRecurring(c.Request().Context(), []*jobs.RecurringTransactionJob{job}); err != nil {
		log.Error().Err(err).Str("transaction_id", req.TransactionID).Msg("Failed to queue work item")
		return NewServiceUnavailableError(c, "Failed to queue work item")
	}

	log.Info().Str("job_id", job.JobID).Str("transaction_id", job.TransactionID).Str("user_id", job.UserID).Msg("Work item queued")

	return c.JSON(http.StatusAccepted, SubmitJobResponse{JobID: job.JobID, Status: string(jobs.JobStatusPending)})
}

// ListJobs godoc
// @Summary List recent work items
// @Tags internal
// @Produce json
// @Security InternalKey
// @Param userId query string false "Owner filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum number of jobs" default(50)
// @Success 200 {array} jobs.RecurringTransactionJob
// @Router /internal/jobs [get]
func (h *InternalHandler) ListJobs(c echo.Context) error {
	if h.jobStore == nil {
		return NewServiceUnavailableError(c, "Job store is not configured")
	}

	filter := jobs.JobFilter{
		UserID: c.QueryParam("userId"),
		Status: jobs.JobStatus(c.QueryParam("status")),
		Limit:  50,
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: "Must be a positive integer"},
			})
		}
		filter.Limit = limit
	}

	list, err := h.jobStore.ListJobs(c.Request().Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs")
		return NewInternalError(c, "Failed to list jobs")
	}

	return c.JSON(http.StatusOK, list)
}

// GetJob godoc
// @Summary Get one work item
// @Tags internal
// @Produce json
// @Security InternalKey
// @Param id path string true "Job ID"
// @Success 200 {object} jobs.RecurringTransactionJob
// @Failure 404 {object} ProblemDetails
// @Router /internal/jobs/{id} [get]
func (h *InternalHandler) GetJob(c echo.Context) error {
	if h.jobStore == nil {
		return NewServiceUnavailableError(c, "Job store is not configured")
	}

	job, err := h.jobStore.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return NewNotFoundError(c, "Job not found")
		}
		return NewInternalError(c, "Failed to get job")
	}

	return c.JSON(http.StatusOK, job)
}
