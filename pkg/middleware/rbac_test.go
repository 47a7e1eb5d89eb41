package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartScore/internal/auth"
)

func enforceFor(t *testing.T, role, path, method string) bool {
	t.Helper()
	enforcer, err := NewEnforcer()
	require.NoError(t, err)
	allowed, err := enforcer.Enforce(role, path, method)
	require.NoError(t, err)
	return allowed
}

func TestAdminAllowedEverywhere(t *testing.T) {
	assert.True(t, enforceFor(t, "admin", "/api/schools", "POST"))
	assert.True(t, enforceFor(t, "admin", "/api/notifications/bulk", "POST"))
	assert.True(t, enforceFor(t, "admin", "/api/result-checker/reset-trials", "POST"))
	assert.True(t, enforceFor(t, "admin", "/api/students/abc123", "DELETE"))
}

func TestStaffScopedAccess(t *testing.T) {
	assert.True(t, enforceFor(t, "staff", "/api/profile", "GET"))
	assert.True(t, enforceFor(t, "staff", "/api/students", "POST"))
	assert.True(t, enforceFor(t, "staff", "/api/students/school/abc123", "GET"))
	assert.True(t, enforceFor(t, "staff", "/api/scores", "POST"))
	assert.True(t, enforceFor(t, "staff", "/api/notifications", "POST"))

	assert.False(t, enforceFor(t, "staff", "/api/students/abc123", "DELETE"))
	assert.False(t, enforceFor(t, "staff", "/api/notifications/bulk", "POST"))
	assert.False(t, enforceFor(t, "staff", "/api/notifications/stats/abc123", "GET"))
	assert.False(t, enforceFor(t, "staff", "/api/result-checker/reset-trials", "POST"))
	assert.False(t, enforceFor(t, "staff", "/api/schools", "POST"))
}

func TestUnknownRoleDenied(t *testing.T) {
	assert.False(t, enforceFor(t, "parent", "/api/profile", "GET"))
}

func TestRBACMiddleware(t *testing.T) {
	enforcer, err := NewEnforcer()
	require.NoError(t, err)

	e := echo.New()
	next := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	handler := RBAC(enforcer)(next)

	t.Run("allowed request passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", &auth.JWTClaims{Role: "staff"})

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forbidden request is blocked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/notifications/bulk", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", &auth.JWTClaims{Role: "staff"})

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing claims is blocked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestJWTMiddleware(t *testing.T) {
	config := &auth.AuthConfig{JWTKey: []byte("test-key")}
	e := echo.New()
	next := func(c echo.Context) error {
		claims := c.Get("user").(*auth.JWTClaims)
		return c.String(http.StatusOK, claims.Email)
	}
	handler := JWT(config)(next)

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.GenerateJWT(config.JWTKey, "Jane", "jane@school.test", "admin", "", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jane@school.test", rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
