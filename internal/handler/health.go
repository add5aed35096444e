package handler // handler defines http handlers

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	DB *sql.DB
}

// Health returns 200 when the process is up and the database answers a ping.
func (h *HealthHandler) Health(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if h.DB != nil {
		if err := h.DB.PingContext(c.Request().Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	return c.JSON(code, echo.Map{"status": status})
}
