package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/meterly/backend/internal/application/billing"
	"github.com/meterly/backend/internal/infrastructure/scheduler"
)

// statusWindow bounds how far back the status endpoint aggregates debit logs.
const statusWindow = 24 * time.Hour

// DebitHandler handles debit run and scheduler HTTP requests
type DebitHandler struct {
	BaseHandler
	debitService *billingapp.DebitRunService
	scheduler    *scheduler.DebitScheduler
}

// NewDebitHandler creates a new debit handler
func NewDebitHandler(debitService *billingapp.DebitRunService, sched *scheduler.DebitScheduler) *DebitHandler {
	return &DebitHandler{
		debitService: debitService,
		scheduler:    sched,
	}
}

// SchedulerStatusResponse represents the scheduler portion of the debit status
//
//	@Description	Current state of the recurring debit scheduler
type SchedulerStatusResponse struct {
	IsRunning bool       `json:"is_running" example:"true"`
	Interval  string     `json:"interval" example:"1h0m0s"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
}

// DebitStatusResponse represents the debit engine status
//
//	@Description	Scheduler state plus an aggregate of the trailing day's debit activity
type DebitStatusResponse struct {
	Scheduler      SchedulerStatusResponse `json:"scheduler"`
	TotalProcessed int64                   `json:"total_processed" example:"48"`
	Successful     int64                   `json:"successful" example:"45"`
	Failed         int64                   `json:"failed" example:"3"`
	LastProcessed  *time.Time              `json:"last_processed,omitempty"`
}

// SchedulerActionResponse represents the result of a scheduler start or stop
type SchedulerActionResponse struct {
	Message   string `json:"message"`
	IsRunning bool   `json:"is_running"`
}

// Trigger godoc
// @ID           triggerDebitRun
// @Summary      Trigger a debit run
// @Description  Run one debit cycle over all customers immediately and return the per-customer results
// @Tags         debits
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.RunSummary]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /debits/run [post]
func (h *DebitHandler) Trigger(c *gin.Context) {
	// Per-customer failures are reported inside the summary, the request
	// itself only fails when the run could not be started.
	summary, err := h.debitService.RunOnce(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Status godoc
// @ID           getDebitStatus
// @Summary      Get debit engine status
// @Description  Report scheduler state and aggregate debit activity for the trailing 24 hours
// @Tags         debits
// @Produce      json
// @Success      200 {object} APIResponse[DebitStatusResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /debits/status [get]
func (h *DebitHandler) Status(c *gin.Context) {
	summary, err := h.debitService.RecentLogSummary(c.Request.Context(), statusWindow)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	status := h.scheduler.Status()

	h.Success(c, DebitStatusResponse{
		Scheduler: SchedulerStatusResponse{
			IsRunning: status.IsRunning,
			Interval:  status.Interval.String(),
			NextRun:   status.NextRun,
			LastRun:   status.LastRun,
		},
		TotalProcessed: summary.Total,
		Successful:     summary.Successful,
		Failed:         summary.Failed,
		LastProcessed:  summary.LastProcessed,
	})
}

// StartScheduler godoc
// @ID           startDebitScheduler
// @Summary      Start the debit scheduler
// @Description  Start the recurring debit scheduler if it is not already running
// @Tags         debits
// @Produce      json
// @Success      200 {object} APIResponse[SchedulerActionResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /debits/scheduler/start [post]
func (h *DebitHandler) StartScheduler(c *gin.Context) {
	// The scheduler loop outlives the request, so it cannot inherit the
	// request context.
	if err := h.scheduler.Start(context.Background()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, SchedulerActionResponse{
		Message:   "Debit scheduler started",
		IsRunning: h.scheduler.Status().IsRunning,
	})
}

// StopScheduler godoc
// @ID           stopDebitScheduler
// @Summary      Stop the debit scheduler
// @Description  Stop the recurring debit scheduler, in-flight runs finish first
// @Tags         debits
// @Produce      json
// @Success      200 {object} APIResponse[SchedulerActionResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /debits/scheduler/stop [post]
func (h *DebitHandler) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, SchedulerActionResponse{
		Message:   "Debit scheduler stopped",
		IsRunning: h.scheduler.Status().IsRunning,
	})
}
