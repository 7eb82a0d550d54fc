package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ss-uniforms/internal/config"
	"ss-uniforms/internal/database/dbtest"
	"ss-uniforms/internal/handlers"
	"ss-uniforms/internal/middleware"
	"ss-uniforms/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	t *testing.T
	r *gin.Engine
	h *handlers.Handler
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:            "test",
		BaseURL:           "http://shop.test",
		WebDir:            t.TempDir(),
		CartStore:         "memory",
		UploadDriver:      "local",
		UploadDir:         t.TempDir(),
		CORSOrigins:       []string{"http://localhost:5173"},
		AllowSignup:       true,
		Location:          time.UTC,
		BestSellerMetric:  "stock",
		LowStockThreshold: 10,
	}
	h, err := server.Build(context.Background(), cfg, dbtest.Open(t))
	require.NoError(t, err)
	r, err := server.New(h)
	require.NoError(t, err)
	return &env{t: t, r: r, h: h}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
	cookie  *http.Cookie
}

func (e *env) do(req request) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if req.body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(req.body))
	}
	r := httptest.NewRequest(req.method, req.path, &buf)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *env) createAdmin() string {
	w := e.do(request{method: http.MethodPost, path: "/functions/v1/create-admin", body: gin.H{
		"email": "owner@ssuniforms.com", "password": "secret123", "name": "Owner",
	}})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return e.login("owner@ssuniforms.com", "secret123")
}

func (e *env) login(email, password string) string {
	w := e.do(request{method: http.MethodPost, path: "/api/auth/login", body: gin.H{"email": email, "password": password}})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode(e.t, w)["token"].(string)
}

func (e *env) createStaff(adminToken string) (id, token string) {
	w := e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", token: adminToken, body: gin.H{
		"email": "ravi@ssuniforms.com", "password": "counter1", "name": "Ravi",
	}})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode(e.t, w)["user_id"].(string), e.login("ravi@ssuniforms.com", "counter1")
}

func TestFunctionsPreflight(t *testing.T) {
	e := setup(t)

	w := e.do(request{method: http.MethodOptions, path: "/functions/v1/create-user", headers: map[string]string{
		"Origin":                        "https://admin.example.com",
		"Access-Control-Request-Method": "POST",
	}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = e.do(request{method: http.MethodOptions, path: "/functions/v1/delete-user"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCreateAdminFunction(t *testing.T) {
	e := setup(t)

	w := e.do(request{method: http.MethodPost, path: "/functions/v1/create-admin", body: gin.H{"email": "owner@ssuniforms.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email, password, and name are required", decode(t, w)["error"])

	e.createAdmin()

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/create-admin", body: gin.H{
		"email": "second@ssuniforms.com", "password": "secret123", "name": "Second",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Admin account already exists", decode(t, w)["error"])
}

func TestCreateUserFunctionAuthorization(t *testing.T) {
	e := setup(t)
	admin := e.createAdmin()
	_, staff := e.createStaff(admin)
	body := gin.H{"email": "new@ssuniforms.com", "password": "secret123", "name": "New"}

	w := e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", body: body})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No authorization header", decode(t, w)["error"])

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", body: body, token: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decode(t, w)["error"])

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", body: body, token: staff})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decode(t, w)["error"])

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", token: admin, body: gin.H{
		"email": "new@ssuniforms.com", "password": "secret123", "name": "New", "role": "owner",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role. Must be 'admin' or 'staff'", decode(t, w)["error"])

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", token: admin, body: gin.H{"email": "new@ssuniforms.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/create-user", body: body, token: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.NotEmpty(t, out["user_id"])
}

func TestDeleteUserFunction(t *testing.T) {
	e := setup(t)
	admin := e.createAdmin()
	staffID, _ := e.createStaff(admin)

	w := e.do(request{method: http.MethodGet, path: "/api/auth/me", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	adminID := decode(t, w)["id"].(string)

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/delete-user", token: admin, body: gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User ID is required", decode(t, w)["error"])

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/delete-user", token: admin, body: gin.H{"userId": adminID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete your own account", decode(t, w)["error"])

	w = e.do(request{method: http.MethodPost, path: "/functions/v1/delete-user", token: admin, body: gin.H{"userId": staffID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = e.do(request{method: http.MethodPost, path: "/api/auth/login", body: gin.H{"email": "ravi@ssuniforms.com", "password": "counter1"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminPagesRedirectStaff(t *testing.T) {
	e := setup(t)
	admin := e.createAdmin()
	_, staff := e.createStaff(admin)

	session := func(token string) *http.Cookie {
		return &http.Cookie{Name: middleware.SessionCookie, Value: token}
	}

	for _, page := range handlers.AdminPages {
		w := e.do(request{method: http.MethodGet, path: page, cookie: session(staff)})
		assert.Equal(t, http.StatusFound, w.Code, page)
		assert.Equal(t, "/", w.Header().Get("Location"), page)
		assert.NotContains(t, w.Body.String(), "<div id=\"root\">", page)

		w = e.do(request{method: http.MethodGet, path: page})
		assert.Equal(t, http.StatusFound, w.Code, page)
		assert.Equal(t, "/login", w.Header().Get("Location"), page)

		w = e.do(request{method: http.MethodGet, path: page, cookie: session(admin)})
		assert.Equal(t, http.StatusOK, w.Code, page)
	}

	w := e.do(request{method: http.MethodGet, path: "/cart"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(request{method: http.MethodGet, path: "/no-such-page"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(request{method: http.MethodGet, path: "/api/admin/dashboard", token: staff})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignupValidation(t *testing.T) {
	e := setup(t)

	w := e.do(request{method: http.MethodPost, path: "/api/auth/signup", body: gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "secret1", "confirm_password": "secret2",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Passwords do not match.", out["error"])
	notes := out["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "Password Mismatch", notes[0].(map[string]any)["title"])

	w = e.do(request{method: http.MethodPost, path: "/api/auth/signup", body: gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "secret1", "confirm_password": "secret1",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out = decode(t, w)
	assert.Equal(t, "staff", out["profile"].(map[string]any)["role"])
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestCatalogueCartCheckout(t *testing.T) {
	e := setup(t)
	admin := e.createAdmin()
	_, staff := e.createStaff(admin)

	w := e.do(request{method: http.MethodPost, path: "/api/admin/catalogues", token: admin, body: gin.H{"name": "St. Mary's", "order": 1}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode(t, w)
	catID := out["id"].(string)
	assert.Equal(t, "Catalogue added successfully", out["notifications"].([]any)[0].(map[string]any)["message"])

	w = e.do(request{method: http.MethodPost, path: "/api/admin/items", token: admin, body: gin.H{
		"catalogue_id": catID, "name": "Shirt", "stock": 10, "price": 350, "section_type": "spring",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(request{method: http.MethodPost, path: "/api/admin/items", token: admin, body: gin.H{
		"catalogue_id": catID, "name": "Shirt", "stock": 10, "price": 350, "section_type": "summer",
		"sizes": []gin.H{{"size": "M", "price": 380, "stock": 4}, {"size": "S", "price": 0}},
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := decode(t, w)["id"].(string)

	w = e.do(request{method: http.MethodGet, path: "/api/catalogues"})
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode(t, w)["catalogues"].([]any)
	require.Len(t, cats, 1)
	assert.Len(t, cats[0].(map[string]any)["sections"], 4)

	// Cart: size override price for M, base price for S.
	w = e.do(request{method: http.MethodPost, path: "/api/cart/items", body: gin.H{"item_id": itemID, "size": "M", "quantity": 2}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cartID := w.Header().Get("X-Cart-ID")
	require.NotEmpty(t, cartID)
	withCart := map[string]string{"X-Cart-ID": cartID}

	w = e.do(request{method: http.MethodPost, path: "/api/cart/items", headers: withCart, body: gin.H{"item_id": itemID, "size": "S"}})
	require.Equal(t, http.StatusOK, w.Code)
	out = decode(t, w)
	assert.Equal(t, float64(3), out["total_items"])
	assert.Equal(t, float64(1110), out["total_price"])

	w = e.do(request{method: http.MethodPost, path: "/api/cart/items", headers: withCart, body: gin.H{"item_id": itemID, "size": "XXL"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(request{method: http.MethodPost, path: "/api/cart/checkout", headers: withCart})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(request{method: http.MethodPost, path: "/api/cart/checkout", headers: withCart, token: staff, body: gin.H{"customer_name": "Asha"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out = decode(t, w)
	assert.NotEmpty(t, out["sale_id"])
	assert.Equal(t, float64(0), out["total_items"])
	titles := []string{}
	for _, n := range out["notifications"].([]any) {
		titles = append(titles, n.(map[string]any)["title"].(string))
	}
	assert.Contains(t, titles, "Sale Complete")

	item, _, ok := e.h.Inventory.FindItem(itemID)
	require.True(t, ok)
	assert.Equal(t, 7, item.Stock)

	w = e.do(request{method: http.MethodGet, path: "/api/admin/sales?search=asha", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	out = decode(t, w)
	assert.Len(t, out["sales"], 1)
	assert.Equal(t, float64(1110), out["summary"].(map[string]any)["revenue"])

	w = e.do(request{method: http.MethodGet, path: "/api/admin/low-stock", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	out = decode(t, w)
	assert.Len(t, out["rows"], 2)

	w = e.do(request{method: http.MethodGet, path: "/api/admin/low-stock/export", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
}

func TestRecordSaleRejectsInvalidLines(t *testing.T) {
	e := setup(t)
	admin := e.createAdmin()
	_, staff := e.createStaff(admin)

	w := e.do(request{method: http.MethodPost, path: "/api/admin/catalogues", token: admin, body: gin.H{"name": "St. Mary's"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = e.do(request{method: http.MethodPost, path: "/api/admin/items", token: admin, body: gin.H{
		"catalogue_id": decode(t, w)["id"], "name": "Tie", "stock": 6, "price": 200, "section_type": "house",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := decode(t, w)["id"].(string)

	lines := map[string]gin.H{
		"negative quantity": {"item": gin.H{"id": itemID, "name": "Tie"}, "size": "Standard", "price": 200, "quantity": -3},
		"negative price":    {"item": gin.H{"id": itemID, "name": "Tie"}, "size": "Standard", "price": -200, "quantity": 1},
		"no item":           {"item": gin.H{"name": "Tie"}, "size": "Standard", "price": 200, "quantity": 1},
	}
	for name, line := range lines {
		w = e.do(request{method: http.MethodPost, path: "/api/sales", token: staff, body: gin.H{"items": []gin.H{line}}})
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
	w = e.do(request{method: http.MethodPost, path: "/api/sales", token: staff, body: gin.H{"items": []gin.H{}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, e.h.Inventory.Sales())
	item, _, ok := e.h.Inventory.FindItem(itemID)
	require.True(t, ok)
	assert.Equal(t, 6, item.Stock)

	w = e.do(request{method: http.MethodPost, path: "/api/sales", token: staff, body: gin.H{"items": []gin.H{
		{"item": gin.H{"id": itemID, "name": "Tie"}, "size": "Standard", "price": 200, "quantity": 2},
	}}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 400.0, e.h.Inventory.DashboardStats().Revenue)
}

func TestDecrementStockUnknownItem(t *testing.T) {
	e := setup(t)
	admin := e.createAdmin()

	w := e.do(request{method: http.MethodPost, path: "/api/admin/items/no-such-item/decrement", token: admin, body: gin.H{"quantity": 1}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item not found", decode(t, w)["error"])
}
