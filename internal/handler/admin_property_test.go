package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/brokerage-api/internal/config"
	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/repository"
)

func updatePropertyStatus(t *testing.T, users *repository.UserRepo, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewAdminHandler(config.Config{}, users, nil, nil, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/properties/3/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set("user_id", uint64(1))
	c.Set("role", "ADMIN")
	c.Set("name", "Back Office")
	assert.NoError(t, h.UpdatePropertyStatus(c))
	return rec
}

func TestSellRequiresAgentID(t *testing.T) {
	rec := updatePropertyStatus(t, nil, `{"status":"sold","sale_price":5000000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "agent_id required")
}

func TestSellRejectsNonAgentAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Account 5 exists but is an admin; a sale must credit an agent.
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "role", "name", "phone",
			"hired_at", "is_active", "created_at", "updated_at",
		}).AddRow(int64(5), "boss@casavia.ph", "x", "ADMIN", "Boss", "", nil, true, now, now))

	rec := updatePropertyStatus(t, repository.NewUserRepo(db),
		`{"status":"sold","agent_id":5,"sale_price":5000000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must reference an agent account")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePropertyStatusRejectsUnknownStatus(t *testing.T) {
	rec := updatePropertyStatus(t, nil, `{"status":"haunted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown status")
}
