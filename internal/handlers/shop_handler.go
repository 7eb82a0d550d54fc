package handlers

import (
	"net/http"

	"ss-uniforms/internal/shop"

	"github.com/gin-gonic/gin"
)

// GET /api/shop
func (h *Handler) GetShop(c *gin.Context) {
	info, err := h.Shop.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load shop information")
		return
	}
	respond(c, http.StatusOK, gin.H{"shop": info})
}

// PUT /api/admin/shop
func (h *Handler) UpdateShop(c *gin.Context) {
	var input shop.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Shop name is required and email must be valid")
		return
	}
	info, err := h.Shop.Update(c.Request.Context(), input)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to update shop information")
		return
	}
	respond(c, http.StatusOK, gin.H{"shop": info})
}
