package route_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"district_platform/internals/configs"
	userDTO "district_platform/internals/features/users/user/dto"
	userService "district_platform/internals/features/users/user/service"
	"district_platform/internals/route"
	"district_platform/internals/testutil"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	prev := configs.JWTSecret
	configs.JWTSecret = "test-secret"
	t.Cleanup(func() { configs.JWTSecret = prev })

	db := testutil.OpenTestDB(t)
	app := fiber.New()
	route.SetupRoutes(app, db)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, username, password, role string) {
	t.Helper()
	_, err := userService.NewUserService(db).CreateUser(context.Background(), userDTO.CreateUserRequest{
		Username: username,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
}

func doJSON(t *testing.T, app *fiber.App, method, target, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, payload := doJSON(t, app, "POST", "/api/login", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := payload["data"].(map[string]any)
	return data["token"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, payload := doJSON(t, app, "GET", "/api/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "akola", "secret123", "district")

	resp, payload := doJSON(t, app, "POST", "/api/login", "",
		`{"username":"akola","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials.", payload["message"])

	// unknown user answers identically
	resp, payload = doJSON(t, app, "POST", "/api/login", "",
		`{"username":"ghost","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials.", payload["message"])
}

func TestAuthAndRoleGates(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "boss", "secret123", "admin")
	createUser(t, db, "akola", "secret123", "district")

	// no token
	resp, _ := doJSON(t, app, "GET", "/api/admin/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	adminToken := login(t, app, "boss", "secret123")
	districtToken := login(t, app, "akola", "secret123")

	// wrong role
	resp, _ = doJSON(t, app, "GET", "/api/admin/users", districtToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, app, "GET", "/api/district/assignments", adminToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// right role
	resp, payload := doJSON(t, app, "GET", "/api/admin/users", adminToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])

	resp, payload = doJSON(t, app, "GET", "/api/district/assignments", districtToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
}

func TestMeReflectsTokenClaims(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "akola", "secret123", "district")
	token := login(t, app, "akola", "secret123")

	resp, payload := doJSON(t, app, "GET", "/api/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "akola", data["username"])
	assert.Equal(t, "district", data["role"])
}

func TestAdminTemplateLifecycleOverHTTP(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "boss", "secret123", "admin")
	token := login(t, app, "boss", "secret123")

	resp, payload := doJSON(t, app, "POST", "/api/admin/templates", token, `{"name":"Crop Report"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := payload["data"].(map[string]any)["id"].(float64)

	resp, _ = doJSON(t, app, "POST", "/api/admin/templates/1/fields", token, `{"label":"Crop Name","required":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, payload = doJSON(t, app, "GET", "/api/admin/templates", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := payload["data"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, id, row["id"])
	assert.Equal(t, float64(1), row["field_count"])
}
