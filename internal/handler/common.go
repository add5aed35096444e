package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT numeric claims round-trip as float64, so several encodings
// are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getUserName returns the display name claim, falling back to an id tag
// when the token predates the name claim.
func getUserName(c echo.Context) string {
	if s, ok := c.Get("name").(string); ok && s != "" {
		return s
	}
	if id, err := getUserID(c); err == nil {
		return fmt.Sprintf("user#%d", id)
	}
	return "unknown"
}

// actorTag renders the audit-log identity of the authenticated actor.
func actorTag(c echo.Context) string {
	id, err := getUserID(c)
	if err != nil {
		return getUserName(c)
	}
	return fmt.Sprintf("%s (#%d)", getUserName(c), id)
}

// logActivity appends an audit row and swallows failures. The audit trail
// must never veto the action it records, but a failed write is still worth
// a server log line so it does not disappear entirely.
func logActivity(ctx context.Context, repo *repository.ActivityRepo, action, details, performedBy string) {
	if repo == nil {
		return
	}
	if err := repo.Record(ctx, action, details, performedBy); err != nil {
		log.Printf("activity: record %q failed: %v", action, err)
	}
}
