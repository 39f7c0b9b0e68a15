package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meterly/backend/internal/interfaces/http/dto"
)

// apiVersion is bumped with each released API revision
const apiVersion = "1.0.0"

// SystemHandler serves the service identity endpoints under /system
type SystemHandler struct {
	BaseHandler
	name        string
	environment string
	startTime   time.Time
}

// NewSystemHandler creates a SystemHandler reporting the configured
// service name and environment
func NewSystemHandler(name, environment string) *SystemHandler {
	return &SystemHandler{
		name:        name,
		environment: environment,
		startTime:   time.Now(),
	}
}

// SystemInfoResponse describes the running service
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name        string `json:"name" example:"meterly-backend"`
	Version     string `json:"version" example:"1.0.0"`
	Environment string `json:"environment" example:"production"`
	GoVersion   string `json:"go_version" example:"go1.25.5"`
	StartedAt   string `json:"started_at" example:"2026-08-30T09:00:00Z"`
	Uptime      string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns service identity, runtime version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:        h.name,
		Version:     apiVersion,
		Environment: h.environment,
		GoVersion:   runtime.Version(),
		StartedAt:   h.startTime.UTC().Format(time.RFC3339),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// PingResponse carries the ping reply
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Liveness check for external monitors
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}))
}
