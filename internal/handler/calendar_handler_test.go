package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/repository"
)

// createEvent drives CreateEvent with an authenticated context. All cases
// here fail validation before any storage access.
func createEvent(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewCalendarHandler(nil, nil, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/agent/events", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.Set("role", "AGENT")
	c.Set("name", "Ana Reyes")
	assert.NoError(t, h.CreateEvent(c))
	return rec
}

// nextBusinessSlot returns a weekday-agnostic future timestamp at the given
// hour and minute, at least a day ahead so the future check passes.
func nextBusinessSlot(hour, min int) time.Time {
	d := time.Now().AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, time.UTC)
}

func eventBody(title string, start, end time.Time) string {
	return fmt.Sprintf(`{"title":%q,"type":"viewing","starts_at":%q,"ends_at":%q}`,
		title, start.Format(time.RFC3339), end.Format(time.RFC3339))
}

func TestCreateEventRejectsMissingTitle(t *testing.T) {
	start := nextBusinessSlot(10, 0)
	rec := createEvent(t, eventBody("", start, start.Add(time.Hour)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title required")
}

func TestCreateEventRejectsBadTimestamp(t *testing.T) {
	rec := createEvent(t, `{"title":"Viewing","type":"viewing","starts_at":"tomorrow","ends_at":"later"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "starts_at must be RFC3339")
}

func TestCreateEventRejectsInvertedInterval(t *testing.T) {
	start := nextBusinessSlot(10, 0)
	rec := createEvent(t, eventBody("Viewing", start, start.Add(-time.Hour)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ends_at must be after starts_at")
}

func TestCreateEventRejectsPast(t *testing.T) {
	start := time.Now().AddDate(0, 0, -1).Truncate(time.Hour)
	start = time.Date(start.Year(), start.Month(), start.Day(), 10, 0, 0, 0, time.UTC)
	rec := createEvent(t, eventBody("Viewing", start, start.Add(time.Hour)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "future")
}

func TestCreateEventRejectsOutsideBusinessHours(t *testing.T) {
	early := nextBusinessSlot(6, 0)
	rec := createEvent(t, eventBody("Viewing", early, early.Add(time.Hour)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	late := nextBusinessSlot(17, 30)
	rec = createEvent(t, eventBody("Viewing", late, late.Add(time.Hour)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEventRejectsUnknownType(t *testing.T) {
	start := nextBusinessSlot(10, 0)
	body := fmt.Sprintf(`{"title":"Chat","type":"party","starts_at":%q,"ends_at":%q}`,
		start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339))
	rec := createEvent(t, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown event type")
}

func TestCreateEventRejectsForeignInquiryLink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Inquiry 4 is assigned to agent 99; agent 7 linking a viewing to it
	// must hit the same wall as the direct status route.
	now := time.Now().UTC()
	mock.ExpectQuery("FROM inquiries WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "ticket_number", "name", "email", "phone", "message",
			"property_id", "property_title", "property_price", "property_location",
			"status", "assigned_to", "claimed_by", "assigned_by", "claimed_at", "assigned_at",
			"last_follow_up_at", "next_follow_up_at", "created_at", "updated_at",
		}).AddRow(
			int64(4), "INQ-2026-004", "Ben Cruz", "ben.cruz@example.com", "09171234567",
			"Interested in a viewing of this listing next week.",
			int64(2), "Two Bedroom Condo in Makati", 5200000.0, "Makati",
			"claimed", int64(99), int64(99), nil, now, nil, nil, nil, now, now,
		))
	mock.ExpectQuery("FROM inquiry_notes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "agent_id", "agent_name", "note", "created_at"}))

	h := handler.NewCalendarHandler(nil, repository.NewInquiryRepo(db), nil)
	start := nextBusinessSlot(10, 0)
	body := fmt.Sprintf(`{"title":"Viewing","type":"viewing","inquiry_id":4,"starts_at":%q,"ends_at":%q}`,
		start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/agent/events", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.Set("role", "AGENT")
	c.Set("name", "Ana Reyes")
	assert.NoError(t, h.CreateEvent(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not assigned to you")
	assert.NoError(t, mock.ExpectationsWereMet())
}
