package handlers

import (
	"net/http"

	"controlling_evse/internal/models"

	"github.com/gin-gonic/gin"
)

const errSaveSettings = "failed to save settings"

// settingsRequest carries the user preferences. Empty fields are left
// unchanged so the two can be updated independently.
type settingsRequest struct {
	DeviceAddress *string `json:"device_address,omitempty"`
	DefaultMode   *string `json:"default_mode,omitempty"`
}

// @Summary      Get preferences
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/settings [get]
func (h *Handler) getSettings(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"device_address": h.services.Prefs.DeviceAddress(ctx),
		"default_mode":   h.services.Prefs.DefaultMode(ctx).Label(),
	})
}

// @Summary      Update preferences
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  settingsRequest  true  "Preferences payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/settings [put]
func (h *Handler) putSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if req.DeviceAddress != nil {
		if err := h.services.Prefs.SetDeviceAddress(ctx, *req.DeviceAddress); err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSaveSettings, "settings_save_failed", err)
			return
		}
	}
	if req.DefaultMode != nil {
		mode, ok := models.ParseMode(*req.DefaultMode)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownMode})
			return
		}
		if err := h.services.Prefs.SetDefaultMode(ctx, mode); err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSaveSettings, "settings_save_failed", err)
			return
		}
	}
	h.getSettings(c)
}
