package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/guard"
	"ss-uniforms/internal/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SessionCookie carries the session token for page requests.
const SessionCookie = "ss_session"

const (
	ctxUserID  = "userID"
	ctxProfile = "profile"
)

// Authenticator resolves a session token to a user id and profile.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, *models.Profile, error)
}

// Token returns the bearer token from the Authorization header, falling back to
// the session cookie.
func Token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, _ := c.Cookie(SessionCookie)
	return token
}

// Identify resolves the caller, if any, and stores the user id and profile in
// the context. It never aborts; RequireRole decides what an anonymous caller may do.
func Identify(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c)
		if token == "" {
			c.Next()
			return
		}

		userID, profile, err := a.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, accounts.ErrProfileMissing):
			log.WithField("user_id", userID).Warn("Authenticated user has no profile")
		default:
			log.WithError(err).Debug("Rejected session token")
			userID = ""
		}

		if userID != "" {
			c.Set(ctxUserID, userID)
		}
		if profile != nil {
			c.Set(ctxProfile, profile)
		}
		c.Next()
	}
}

// UserID is the authenticated caller's id, or "".
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// Profile is the authenticated caller's profile, or nil.
func Profile(c *gin.Context) *models.Profile {
	if v, ok := c.Get(ctxProfile); ok {
		if p, ok := v.(*models.Profile); ok {
			return p
		}
	}
	return nil
}

// Resolve runs a guard for role against the identity Identify stored.
func Resolve(c *gin.Context, role models.Role) *guard.Guard {
	g := guard.New(role)
	g.Resolve(guard.Resolution{UserID: UserID(c), Profile: Profile(c)})
	return g
}

// RequireRole blocks API requests whose caller lacks role. An empty role only
// requires a signed-in user with a profile.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Resolve(c, role).State() {
		case guard.Authorized:
			c.Next()
		case guard.Forbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		}
	}
}

func RequireAuth() gin.HandlerFunc  { return RequireRole("") }
func RequireStaff() gin.HandlerFunc { return RequireRole(models.RoleStaff) }
func RequireAdmin() gin.HandlerFunc { return RequireRole(models.RoleAdmin) }
