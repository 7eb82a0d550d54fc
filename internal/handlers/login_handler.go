package handlers

import (
	"errors"
	"net/http"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/auth"
	"ss-uniforms/internal/middleware"
	"ss-uniforms/internal/notify"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", h.Config.Production(), true)
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	session, err := h.Accounts.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			notify.Error(c.Request.Context(), "Login Failed", accounts.Message(err, ""))
			fail(c, http.StatusUnauthorized, "Invalid login credentials")
			return
		}
		log.WithError(err).Error("Login failed")
		fail(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.setSession(c, session.Token)
	respond(c, http.StatusOK, gin.H{
		"token":   session.Token,
		"email":   session.Email,
		"profile": session.Profile,
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.Config.Production(), true)
	respond(c, http.StatusOK, gin.H{"message": "Signed out"})
}

// POST /api/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var input accounts.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	ctx := c.Request.Context()
	session, err := h.Accounts.Signup(ctx, input)
	if err != nil {
		var v *accounts.ValidationError
		switch {
		case errors.As(err, &v):
			notify.Error(ctx, v.Title, v.Message)
			badRequest(c, v.Message)
		case errors.Is(err, accounts.ErrEmailTaken):
			msg := accounts.Message(err, "")
			notify.Error(ctx, "Signup Failed", msg)
			badRequest(c, msg)
		default:
			log.WithError(err).Error("Signup failed")
			notify.Error(ctx, "Signup Failed", "An unexpected error occurred")
			fail(c, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	notify.Success(ctx, "Account Created", "Your account has been created successfully.")
	h.setSession(c, session.Token)
	respond(c, http.StatusCreated, gin.H{
		"token":   session.Token,
		"email":   session.Email,
		"profile": session.Profile,
	})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	email, err := h.Accounts.Email(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Could not load email for session")
	}
	respond(c, http.StatusOK, gin.H{
		"id":      userID,
		"email":   email,
		"profile": middleware.Profile(c),
	})
}
