package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth map[string]*models.Profile

func (f fakeAuth) Authenticate(_ context.Context, token string) (string, *models.Profile, error) {
	switch token {
	case "orphan":
		return "u-orphan", nil, accounts.ErrProfileMissing
	case "bad":
		return "", nil, errors.New("token is expired")
	}
	p, ok := f[token]
	if !ok {
		return "", nil, errors.New("unknown token")
	}
	return p.ID, p, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := fakeAuth{
		"admin": {ID: "u-admin", Role: models.RoleAdmin},
		"staff": {ID: "u-staff", Role: models.RoleStaff},
	}
	r := gin.New()
	r.Use(Identify(auth))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"user": UserID(c)}) }
	r.GET("/me", RequireAuth(), ok)
	r.GET("/staff", RequireStaff(), ok)
	r.GET("/admin", RequireAdmin(), ok)
	return r
}

func do(r http.Handler, path string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	cases := []struct {
		path  string
		setup func(*http.Request)
		want  int
	}{
		{"/me", nil, http.StatusUnauthorized},
		{"/me", bearer("bad"), http.StatusUnauthorized},
		{"/me", bearer("orphan"), http.StatusUnauthorized},
		{"/me", bearer("staff"), http.StatusOK},
		{"/staff", bearer("staff"), http.StatusOK},
		{"/staff", bearer("admin"), http.StatusOK},
		{"/admin", bearer("staff"), http.StatusForbidden},
		{"/admin", bearer("admin"), http.StatusOK},
		{"/admin", func(r *http.Request) { r.Header.Set("Authorization", "Token admin") }, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := do(r, tc.path, tc.setup)
		assert.Equal(t, tc.want, w.Code, "%s", tc.path)
	}
}

func TestSessionCookie(t *testing.T) {
	r := newRouter()
	w := do(r, "/admin", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "admin"})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-admin")
}

func TestNotificationsCollector(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Notifications())
	r.GET("/", func(c *gin.Context) {
		notify.Success(c.Request.Context(), "Success", "Item added successfully")
		c.JSON(http.StatusOK, gin.H{"notifications": notify.Drain(c.Request.Context())})
	})
	w := do(r, "/", nil)
	assert.Contains(t, w.Body.String(), "Item added successfully")
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	gin.SetMode(gin.TestMode)
	type body struct {
		Section models.SectionType `json:"section" binding:"required,section"`
		Role    models.Role        `json:"role" binding:"omitempty,role"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(payload string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, post(`{"section":"winter"}`))
	assert.Equal(t, http.StatusOK, post(`{"section":"house","role":"staff"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"section":"spring"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"section":"summer","role":"owner"}`))
}
