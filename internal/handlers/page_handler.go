package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ss-uniforms/internal/middleware"
	"ss-uniforms/internal/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// PublicPages are served to everyone.
var PublicPages = []string{"/", "/login", "/signup", "/admin-setup", "/catalogues", "/catalogues/:id", "/cart"}

// AdminPages are gated to the admin role.
var AdminPages = []string{"/admin", "/admin/catalogues", "/admin/items", "/admin/employees", "/admin/sales", "/admin/low-stock"}

const fallbackIndex = `<!doctype html><html><head><meta charset="utf-8"><title>SS Uniforms</title></head><body><div id="root"></div></body></html>`

func (h *Handler) index(c *gin.Context, status int) {
	data, err := os.ReadFile(filepath.Join(h.Config.WebDir, "index.html"))
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Could not read index.html")
		}
		data = []byte(fallbackIndex)
	}
	c.Data(status, "text/html; charset=utf-8", data)
}

// Page serves the app shell once the caller satisfies role. Rejected callers are
// redirected before anything is written. An empty role serves everyone.
func (h *Handler) Page(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			g := middleware.Resolve(c, role)
			if to := g.Redirect(); to != "" {
				c.Redirect(http.StatusFound, to)
				c.Abort()
				return
			}
			if !g.Render() {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Header("Cache-Control", "no-store")
		h.index(c, http.StatusOK)
	}
}

// NotFound answers JSON for API paths and the app shell with a 404 status otherwise.
func (h *Handler) NotFound(c *gin.Context) {
	p := c.Request.URL.Path
	if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/functions/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	h.index(c, http.StatusNotFound)
}
