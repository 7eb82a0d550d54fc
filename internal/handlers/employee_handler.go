package handlers

import (
	"errors"
	"net/http"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/middleware"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/notify"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// accountError reports an accounts error as a notification and a JSON error.
func accountError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()
	msg := accounts.Message(err, fallback)
	switch {
	case accounts.IsValidation(err),
		errors.Is(err, accounts.ErrEmailTaken),
		errors.Is(err, accounts.ErrInvalidRole),
		errors.Is(err, accounts.ErrSelfDelete):
		notify.Error(ctx, "Error", msg)
		badRequest(c, msg)
	case errors.Is(err, accounts.ErrNotFound):
		notify.Error(ctx, "Error", msg)
		fail(c, http.StatusNotFound, msg)
	default:
		log.WithError(err).Error(fallback)
		notify.Error(ctx, "Error", fallback)
		fail(c, http.StatusInternalServerError, fallback)
	}
}

// GET /api/admin/employees
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.Accounts.ListEmployees(c.Request.Context())
	if err != nil {
		accountError(c, err, "Failed to fetch employees")
		return
	}
	respond(c, http.StatusOK, gin.H{"employees": employees})
}

// POST /api/admin/employees
func (h *Handler) CreateEmployee(c *gin.Context) {
	var input accounts.NewUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Email, password, and name are required")
		return
	}
	id, err := h.Accounts.CreateEmployee(c.Request.Context(), input)
	if err != nil {
		accountError(c, err, "Failed to create employee")
		return
	}
	notify.Success(c.Request.Context(), "Success", "Employee created successfully")
	respond(c, http.StatusCreated, gin.H{"success": true, "user_id": id})
}

type updateEmployeeRequest struct {
	Name string      `json:"name"`
	Role models.Role `json:"role" binding:"omitempty,role"`
}

// PUT /api/admin/employees/:id
func (h *Handler) UpdateEmployee(c *gin.Context) {
	var input updateEmployeeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, accounts.Message(accounts.ErrInvalidRole, ""))
		return
	}
	if err := h.Accounts.UpdateEmployee(c.Request.Context(), c.Param("id"), input.Name, input.Role); err != nil {
		accountError(c, err, "Failed to update employee")
		return
	}
	notify.Success(c.Request.Context(), "Success", "Employee updated successfully")
	respond(c, http.StatusOK, gin.H{"success": true})
}

// DELETE /api/admin/employees/:id
func (h *Handler) DeleteEmployee(c *gin.Context) {
	if err := h.Accounts.DeleteEmployee(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		accountError(c, err, "Failed to delete employee")
		return
	}
	notify.Success(c.Request.Context(), "Success", "Employee deleted successfully")
	respond(c, http.StatusOK, gin.H{"success": true})
}
