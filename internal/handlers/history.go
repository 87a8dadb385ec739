package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List mode transition history
// @Description  Entries are ordered newest first and capped at 50.
// @Tags         history
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, entries"
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	entries := h.services.History.Entries()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// @Summary      Clear mode transition history
// @Tags         history
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/history [delete]
func (h *Handler) clearHistory(c *gin.Context) {
	h.services.History.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
