package handlers

import (
	"errors"
	"net/http"

	"ss-uniforms/internal/ai"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// POST /api/admin/ask
func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Message is required")
		return
	}

	reply, err := h.Assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, ai.ErrNoAPIKey) {
			fail(c, http.StatusServiceUnavailable, "Assistant is not configured")
			return
		}
		log.WithError(err).Error("Assistant request failed")
		fail(c, http.StatusBadGateway, "Assistant is unavailable, try again later")
		return
	}

	respond(c, http.StatusOK, gin.H{"reply": reply})
}
