package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/casavia/brokerage-api/internal/config"
	"github.com/casavia/brokerage-api/internal/handler"
)

func createUserAs(t *testing.T, callerRole, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewAdminHandler(config.Config{BcryptCost: 10}, nil, nil, nil, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	c.Set("role", callerRole)
	c.Set("name", "Root Admin")
	assert.NoError(t, h.CreateUser(c))
	return rec
}

func TestCreateUserRejectsMissingFields(t *testing.T) {
	rec := createUserAs(t, "ADMIN", `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	rec := createUserAs(t, "ADMIN", `{"email":"a@b.com","password":"short","name":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 8 characters")
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	rec := createUserAs(t, "SUPERADMIN", `{"email":"a@b.com","password":"longenough","name":"Ana","role":"MANAGER"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown role")
}

func TestOnlySuperAdminMintsAdmins(t *testing.T) {
	body := `{"email":"a@b.com","password":"longenough","name":"Ana","role":"ADMIN"}`
	rec := createUserAs(t, "ADMIN", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateUserRejectsBadHiredAt(t *testing.T) {
	body := `{"email":"a@b.com","password":"longenough","name":"Ana","role":"AGENT","hired_at":"yesterday"}`
	rec := createUserAs(t, "ADMIN", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "hired_at must be RFC3339")
}

func TestHealthWithoutDatabase(t *testing.T) {
	h := &handler.HealthHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
