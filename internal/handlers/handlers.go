package handlers

import (
	"net/http"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/ai"
	"ss-uniforms/internal/cart"
	"ss-uniforms/internal/config"
	"ss-uniforms/internal/inventory"
	"ss-uniforms/internal/notify"
	"ss-uniforms/internal/shop"
	"ss-uniforms/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler holds the services every route handler reaches into.
type Handler struct {
	Config    *config.Config
	DB        *gorm.DB
	Accounts  *accounts.Service
	Inventory *inventory.Store
	Carts     *cart.Manager
	Shop      *shop.Service
	Disk      storage.Disk
	Assistant *ai.Assistant
}

// respond writes body as JSON with the request's collected notifications.
func respond(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["notifications"] = notify.Drain(c.Request.Context())
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	respond(c, status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}
