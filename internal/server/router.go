// Package server wires the HTTP routes onto a gin engine.
package server

import (
	"path/filepath"
	"strings"
	"time"

	"ss-uniforms/internal/config"
	"ss-uniforms/internal/handlers"
	"ss-uniforms/internal/metrics"
	"ss-uniforms/internal/middleware"
	"ss-uniforms/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func apiCORS(cfg *config.Config) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Cart-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Cart-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return cors.New(c)
}

// corsByPath keeps the open function CORS policy apart from the API's origin list.
func corsByPath(api, functions gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			functions(c)
			return
		}
		api(c)
	}
}

// New builds the engine with every route mounted.
func New(h *handlers.Handler) (*gin.Engine, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}
	cfg := h.Config

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(metrics.Middleware())
	r.Use(corsByPath(apiCORS(cfg), handlers.FunctionsCORS()))
	r.Use(middleware.Notifications())
	r.Use(middleware.Identify(h.Accounts))

	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())

	// Serverless-style admin functions, authorised by their own header check.
	fn := r.Group("/functions/v1")
	{
		fn.OPTIONS("/:name", handlers.Preflight)
		fn.POST("/create-admin", h.CreateAdminFunction)
		fn.POST("/create-user", h.CreateUserFunction)
		fn.POST("/delete-user", h.DeleteUserFunction)
	}

	api := r.Group("/api")
	{
		api.GET("/catalogues", h.ListCatalogues)
		api.GET("/catalogues/:id", h.GetCatalogue)
		api.GET("/items/:id", h.GetItem)
		api.GET("/sections", h.ListSections)
		api.GET("/shop", h.GetShop)

		api.GET("/cart", h.GetCart)
		api.DELETE("/cart", h.ClearCart)
		api.POST("/cart/items", h.AddToCart)
		api.PATCH("/cart/items", h.UpdateCartItem)
		api.DELETE("/cart/items", h.RemoveFromCart)

		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/auth/me", middleware.RequireAuth(), h.Me)
		if cfg.AllowSignup {
			api.POST("/auth/signup", h.Signup)
		} else {
			log.Info("Signup route is disabled")
		}

		// STAFF & ADMIN
		staff := api.Group("/", middleware.RequireStaff())
		{
			staff.POST("/cart/checkout", h.Checkout)
			staff.POST("/sales", h.RecordSale)
		}

		// ADMIN ONLY
		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.POST("/catalogues", h.AddCatalogue)
			admin.PUT("/catalogues/:id", h.UpdateCatalogue)
			admin.DELETE("/catalogues/:id", h.DeleteCatalogue)

			admin.POST("/items", h.AddItem)
			admin.PUT("/items/:id", h.UpdateItem)
			admin.DELETE("/items/:id", h.DeleteItem)
			admin.POST("/items/:id/decrement", h.DecrementStock)

			admin.GET("/dashboard", h.Dashboard)
			admin.POST("/refresh", h.Refresh)
			admin.GET("/sales", h.SalesReport)
			admin.GET("/sales/export", h.ExportSales)
			admin.GET("/low-stock", h.LowStock)
			admin.GET("/low-stock/export", h.ExportLowStock)

			admin.GET("/employees", h.ListEmployees)
			admin.POST("/employees", h.CreateEmployee)
			admin.PUT("/employees/:id", h.UpdateEmployee)
			admin.DELETE("/employees/:id", h.DeleteEmployee)

			admin.PUT("/shop", h.UpdateShop)
			admin.POST("/upload", h.UploadImage)
			admin.POST("/ask", h.AskAI)
		}
	}

	if cfg.UploadDriver == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}
	r.Static("/assets", filepath.Join(cfg.WebDir, "assets"))

	for _, p := range handlers.PublicPages {
		r.GET(p, h.Page(""))
	}
	for _, p := range handlers.AdminPages {
		r.GET(p, h.Page(models.RoleAdmin))
	}
	r.NoRoute(h.NotFound)

	return r, nil
}
