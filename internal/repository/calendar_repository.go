package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/casavia/brokerage-api/internal/model"
)

// CalendarRepo provides data access to the `calendar_events` table. Events
// belong exclusively to one agent; every read and write is scoped by
// agent_id, and cross-agent access surfaces as ErrForbidden.
type CalendarRepo struct {
	db *sql.DB
}

// NewCalendarRepo returns a new CalendarRepo bound to the given database.
func NewCalendarRepo(db *sql.DB) *CalendarRepo { return &CalendarRepo{db: db} }

const eventColumns = `id, agent_id, title, description, starts_at, ends_at, inquiry_id, event_type, created_at, updated_at`

// FindConflict returns the first event on the agent's calendar that
// collides with the proposed [start, end] window once both sides are padded
// by the conflict buffer. excludeID skips the event being rescheduled (0 to
// skip nothing). It returns (nil, nil) when the slot is clear.
func (r *CalendarRepo) FindConflict(ctx context.Context, agentID uint64, start, end time.Time, excludeID uint64) (*model.CalendarEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM calendar_events
		 WHERE agent_id = ? AND id <> ? AND starts_at < ? AND ends_at > ?
		 ORDER BY starts_at LIMIT 1`,
		agentID, excludeID,
		end.Add(model.ConflictBuffer).UTC(),
		start.Add(-model.ConflictBuffer).UTC())
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Create inserts an event for the owning agent. Conflict and business-hour
// validation happen in the handler before this is called.
func (r *CalendarRepo) Create(ctx context.Context, ev *model.CalendarEvent) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO calendar_events (agent_id, title, description, starts_at, ends_at, inquiry_id, event_type)
		 VALUES (?,?,?,?,?,?,?)`,
		ev.AgentID, ev.Title, ev.Description, ev.StartsAt.UTC(), ev.EndsAt.UTC(), ev.InquiryID, ev.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM calendar_events WHERE id = ?`, ev.ID,
	).Scan(&ev.CreatedAt, &ev.UpdatedAt)
}

// GetByID loads one event, enforcing ownership.
func (r *CalendarRepo) GetByID(ctx context.Context, id, agentID uint64) (*model.CalendarEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM calendar_events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	if ev.AgentID != agentID {
		return nil, ErrForbidden
	}
	return ev, nil
}

// Update rewrites an event's mutable fields, enforcing ownership.
func (r *CalendarRepo) Update(ctx context.Context, ev *model.CalendarEvent) error {
	current, err := r.GetByID(ctx, ev.ID, ev.AgentID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE calendar_events
		 SET title = ?, description = ?, starts_at = ?, ends_at = ?, inquiry_id = ?, event_type = ?,
		     updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		ev.Title, ev.Description, ev.StartsAt.UTC(), ev.EndsAt.UTC(), ev.InquiryID, ev.Type, ev.ID)
	if err != nil {
		return err
	}
	ev.CreatedAt = current.CreatedAt
	return nil
}

// Delete removes an event, enforcing ownership.
func (r *CalendarRepo) Delete(ctx context.Context, id, agentID uint64) error {
	if _, err := r.GetByID(ctx, id, agentID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	return err
}

// ListByAgent returns the agent's events inside [from, to], ordered by
// start time. Zero bounds widen the range to everything.
func (r *CalendarRepo) ListByAgent(ctx context.Context, agentID uint64, from, to time.Time) ([]model.CalendarEvent, error) {
	if from.IsZero() {
		from = time.Unix(0, 0)
	}
	if to.IsZero() {
		to = time.Now().UTC().AddDate(10, 0, 0)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM calendar_events
		 WHERE agent_id = ? AND starts_at >= ? AND starts_at < ?
		 ORDER BY starts_at`,
		agentID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.CalendarEvent, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanEvent(s rowScanner) (*model.CalendarEvent, error) {
	var ev model.CalendarEvent
	var desc sql.NullString
	var inquiryID sql.NullInt64
	err := s.Scan(&ev.ID, &ev.AgentID, &ev.Title, &desc, &ev.StartsAt, &ev.EndsAt,
		&inquiryID, &ev.Type, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.Description = desc.String
	if inquiryID.Valid {
		v := uint64(inquiryID.Int64)
		ev.InquiryID = &v
	}
	return &ev, nil
}
