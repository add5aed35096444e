package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/brokerage-api/internal/config"
	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/repository"
)

func loginWith(t *testing.T, users *repository.UserRepo, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewAuthHandler(config.Config{}, users, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	assert.NoError(t, h.Login(e.NewContext(req, rec)))
	return rec
}

func TestLoginUnknownEmailAnswers401(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No matching user row. The response must be indistinguishable from a
	// wrong password so callers cannot enumerate accounts.
	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "role", "name", "phone",
			"hired_at", "is_active", "created_at", "updated_at",
		}))

	rec := loginWith(t, repository.NewUserRepo(db), `{"email":"ghost@example.com","password":"whatever1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	rec := loginWith(t, nil, `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
