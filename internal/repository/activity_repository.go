package repository

import (
	"context"
	"database/sql"

	"github.com/casavia/brokerage-api/internal/model"
)

// ActivityRepo appends to and reads the `activity_log` table. The table is
// append-only: there is no update or delete path anywhere in the codebase.
type ActivityRepo struct{ db *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Record inserts one audit row. Callers treat this as fire-and-forget and
// swallow the returned error after logging it; a failed audit write must not
// roll back the action it describes.
func (r *ActivityRepo) Record(ctx context.Context, action, details, performedBy string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO activity_log (action, details, performed_by) VALUES (?,?,?)",
		action, details, performedBy)
	return err
}

// List returns audit rows newest first, paged by limit/offset.
func (r *ActivityRepo) List(ctx context.Context, limit, offset int) ([]model.ActivityEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, action, details, performed_by, created_at FROM activity_log ORDER BY id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &e.PerformedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
