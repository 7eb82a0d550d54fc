package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/policy"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var functionHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// FunctionsCORS opens the /functions/v1 endpoints to any origin.
func FunctionsCORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    functionHeaders,
	}
	allowCORS := cors.New(cfg)
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", strings.Join(functionHeaders, ", "))
		allowCORS(c)
	}
}

// Preflight answers OPTIONS with 204 when the request carried no Origin.
func Preflight(c *gin.Context) {
	c.AbortWithStatus(http.StatusNoContent)
}

// adminCaller verifies the Authorization header belongs to an admin. It writes
// the 401/403 response itself and returns "" when the caller is rejected.
func (h *Handler) adminCaller(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization header"})
		return ""
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	userID, profile, err := h.Accounts.Authenticate(c.Request.Context(), token)
	if (err != nil && !errors.Is(err, accounts.ErrProfileMissing)) || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return ""
	}
	if !policy.HasAdminPermissions(profile) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return ""
	}
	return userID
}

func functionError(c *gin.Context, err error, op string) {
	if accounts.IsValidation(err) ||
		errors.Is(err, accounts.ErrAdminExists) ||
		errors.Is(err, accounts.ErrEmailTaken) ||
		errors.Is(err, accounts.ErrInvalidRole) ||
		errors.Is(err, accounts.ErrSelfDelete) ||
		errors.Is(err, accounts.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": accounts.Message(err, err.Error())})
		return
	}
	log.WithError(err).WithField("function", op).Error("Function failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// POST /functions/v1/create-admin
func (h *Handler) CreateAdminFunction(c *gin.Context) {
	var in accounts.NewUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and name are required"})
		return
	}
	in.Role = models.RoleAdmin

	id, err := h.Accounts.CreateAdmin(c.Request.Context(), in)
	if err != nil {
		functionError(c, err, "create-admin")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": id})
}

// POST /functions/v1/create-user
func (h *Handler) CreateUserFunction(c *gin.Context) {
	if h.adminCaller(c) == "" {
		return
	}
	var in accounts.NewUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and name are required"})
		return
	}

	id, err := h.Accounts.CreateEmployee(c.Request.Context(), in)
	if err != nil {
		functionError(c, err, "create-user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": id})
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

// POST /functions/v1/delete-user
func (h *Handler) DeleteUserFunction(c *gin.Context) {
	callerID := h.adminCaller(c)
	if callerID == "" {
		return
	}
	var in deleteUserRequest
	if err := c.ShouldBindJSON(&in); err != nil || in.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	if err := h.Accounts.DeleteEmployee(c.Request.Context(), callerID, in.UserID); err != nil {
		functionError(c, err, "delete-user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
