package handlers

import (
	"errors"
	"net/http"
	"time"

	"controlling_evse/internal/models"
	"controlling_evse/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusRefreshed = "refreshed"
	statusApplied   = "applied"
	statusRebooting = "rebooting"

	errNoAddress       = "no device address configured; set it via /api/v1/settings"
	errDeviceCall      = "device call failed"
	errInvalidBodyPref = "invalid body: "
	errUnknownMode     = "unknown mode; expected one of Off, Normal, Solar, Smart, Pause"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// deviceError maps sync-core failures to HTTP responses. Missing address is
// the caller's fault; everything else is an upstream device problem.
func (h *Handler) deviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	if errors.Is(err, service.ErrNoDeviceAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoAddress})
		return
	}
	h.logAndJSONError(c, http.StatusBadGateway, err.Error(), logKey, err, kv...)
}

// respondWithStatus replies with a short status plus the republished state.
func (h *Handler) respondWithStatus(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	resp["state"] = h.services.Sync.Status()
	c.JSON(http.StatusOK, resp)
}

// Request DTO for setting mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // Off | Normal | Solar | Smart | Pause
}

// Request DTO for overriding charge current.
type currentRequest struct {
	Amperes int `json:"amperes" binding:"required"`
}

// Request DTO for scheduling a charge start.
type scheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"` // RFC3339
	Mode      string    `json:"mode" binding:"required"`
}

// Request DTO for the cable lock. Pointer so that false is bindable.
type cableLockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get republished device status
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.DeviceStatus
// @Router       /api/v1/device/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Sync.Status())
}

// @Summary      Refresh device state now
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/device/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	if err := h.services.Sync.Refresh(c.Request.Context()); err != nil {
		h.deviceError(c, "device_refresh_failed", err)
		return
	}
	h.respondWithStatus(c, statusRefreshed, gin.H{})
}

// @Summary      Set charging mode
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body  modeRequest  true  "Mode payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/device/mode [post]
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	mode, ok := models.ParseMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownMode})
		return
	}
	if err := h.services.Sync.SetMode(c.Request.Context(), mode); err != nil {
		h.deviceError(c, "device_set_mode_failed", err, "mode", req.Mode)
		return
	}
	h.respondWithStatus(c, statusApplied, gin.H{"mode": mode.Label()})
}

// @Summary      Override charge current
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body  currentRequest  true  "Amperage payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/device/current [post]
func (h *Handler) setOverrideCurrent(c *gin.Context) {
	var req currentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Sync.SetOverrideCurrent(c.Request.Context(), req.Amperes); err != nil {
		if errors.Is(err, service.ErrNoDeviceAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errNoAddress})
			return
		}
		// current validation errors are the caller's fault as well
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatus(c, statusApplied, gin.H{"amperes": req.Amperes})
}

// @Summary      Schedule a charge start
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body  scheduleRequest  true  "Schedule payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/device/schedule [post]
func (h *Handler) setSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	mode, ok := models.ParseMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownMode})
		return
	}
	if err := h.services.Sync.SetSchedule(c.Request.Context(), req.StartTime, mode); err != nil {
		h.deviceError(c, "device_set_schedule_failed", err, "start", req.StartTime)
		return
	}
	h.respondWithStatus(c, statusApplied, gin.H{"start_time": req.StartTime, "mode": mode.Label()})
}

// @Summary      Lock or unlock the charging cable
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body  cableLockRequest  true  "Lock payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/device/cablelock [post]
func (h *Handler) setCableLock(c *gin.Context) {
	var req cableLockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Locked == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "locked flag is required"})
		return
	}
	if err := h.services.Sync.SetCableLock(c.Request.Context(), *req.Locked); err != nil {
		h.deviceError(c, "device_cable_lock_failed", err, "locked", *req.Locked)
		return
	}
	h.respondWithStatus(c, statusApplied, gin.H{"locked": *req.Locked})
}

// @Summary      Reboot the station
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/device/reboot [post]
func (h *Handler) reboot(c *gin.Context) {
	if err := h.services.Sync.Reboot(c.Request.Context()); err != nil {
		h.deviceError(c, "device_reboot_failed", err)
		return
	}
	h.respondWithStatus(c, statusRebooting, gin.H{})
}
