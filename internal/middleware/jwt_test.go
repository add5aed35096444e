package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/brokerage-api/internal/middleware"
	"github.com/casavia/brokerage-api/internal/utils"
)

const testSecret = "test-secret"

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
			"name":    c.Get("name"),
		})
	}, mw...)
	return e
}

func TestJWTAuthMissingHeader(t *testing.T) {
	e := protectedEcho(middleware.JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	e := protectedEcho(middleware.JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 1, "AGENT", "Ana", 5)
	require.NoError(t, err)

	e := protectedEcho(middleware.JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "AGENT", "Ana Reyes", 5)
	require.NoError(t, err)

	e := protectedEcho(middleware.JWTAuth(testSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"AGENT"`)
	assert.Contains(t, rec.Body.String(), `"name":"Ana Reyes"`)
}

func TestRequireRole(t *testing.T) {
	tokenFor := func(role string) string {
		tok, err := utils.NewAccessToken(testSecret, 1, role, "x", 5)
		require.NoError(t, err)
		return tok.Token
	}

	e := protectedEcho(middleware.JWTAuth(testSecret), middleware.RequireRole("ADMIN", "SUPERADMIN"))

	cases := []struct {
		role string
		want int
	}{
		{"ADMIN", http.StatusOK},
		{"SUPERADMIN", http.StatusOK},
		{"AGENT", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(tc.role))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "role %q", tc.role)
	}
}

func TestRequireRoleWithoutJWT(t *testing.T) {
	// RequireRole alone must not let anything through when no role was set.
	e := protectedEcho(middleware.RequireRole("AGENT"))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
