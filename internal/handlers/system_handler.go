package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var startedAt = time.Now()

// GET /health
// Reports database reachability and whether the inventory mirror is loaded.
func (h *Handler) Health(c *gin.Context) {
	status := "online"
	code := http.StatusOK

	db := "ok"
	sqlDB, err := h.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.WithError(err).Warn("Health check: database unreachable")
		db = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"database":   db,
		"catalogues": len(h.Inventory.Catalogues()),
		"loading":    h.Inventory.Loading(),
		"uptime":     time.Since(startedAt).Round(time.Second).String(),
	})
}

// POST /api/admin/refresh
// Reloads the catalogue tree and sales list from the database.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.Inventory.Refresh(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to refresh inventory")
		return
	}
	respond(c, http.StatusOK, gin.H{"stats": h.Inventory.CalculateDashboardStats()})
}
