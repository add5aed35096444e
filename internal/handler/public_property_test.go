package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/repository"
)

func listProperties(t *testing.T, props *repository.PropertyRepo, query string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewPublicHandler(props, nil, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/properties"+query, nil)
	rec := httptest.NewRecorder()
	assert.NoError(t, h.ListProperties(e.NewContext(req, rec)))
	return rec
}

func TestListPropertiesRejectsStaffOnlyStatus(t *testing.T) {
	// Drafts and delisted properties must never be reachable through the
	// public filter, so those statuses fail before any query runs.
	for _, status := range []string{"draft", "withdrawn", "off-market"} {
		rec := listProperties(t, nil, "?status="+status)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "status %q must be rejected", status)
		assert.Contains(t, rec.Body.String(), "unknown status")
	}
}

func TestListPropertiesAcceptsPublicStatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM properties WHERE status IN").
		WithArgs("available").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "type", "price", "location", "bedrooms", "bathrooms",
			"area_sqm", "description", "status", "created_by", "view_count",
			"reserved_by_id", "reserved_by_name", "reserved_at", "reserved_until",
			"sold_by_id", "sold_by_name", "sold_at", "sale_price",
			"commission_rate", "commission_amount", "commission_status",
			"commission_paid_at", "commission_paid_by",
			"created_at", "updated_at",
		}))

	rec := listProperties(t, repository.NewPropertyRepo(db), "?status=available")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPropertiesRejectsInvertedPriceRange(t *testing.T) {
	rec := listProperties(t, nil, "?min_price=900000&max_price=100000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "min_price exceeds max_price")
}
