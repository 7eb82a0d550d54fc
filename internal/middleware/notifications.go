package middleware

import (
	"ss-uniforms/internal/notify"

	"github.com/gin-gonic/gin"
)

// Notifications attaches a notification collector to every request context.
func Notifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(notify.WithCollector(c.Request.Context()))
		c.Next()
	}
}
