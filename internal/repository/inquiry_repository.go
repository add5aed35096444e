package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/utils"
)

// InquiryRepo provides data access to the `inquiries` and `inquiry_notes`
// tables. The two operations with real concurrency requirements live here:
// ticket allocation (count and insert per transaction, backed by a unique
// key on ticket_number with a bounded retry) and claiming (a single
// conditional UPDATE checked via RowsAffected, never read-then-write).
type InquiryRepo struct {
	db *sql.DB
}

// NewInquiryRepo returns a new InquiryRepo bound to the given database.
func NewInquiryRepo(db *sql.DB) *InquiryRepo { return &InquiryRepo{db: db} }

// DB exposes the underlying handle for handlers that manage their own
// transactions.
func (r *InquiryRepo) DB() *sql.DB { return r.db }

// maxTicketAttempts bounds the retry loop when two submissions race for the
// same ticket number and one loses on the unique key.
const maxTicketAttempts = 3

const inquiryColumns = `id, ticket_number, name, email, phone, message,
	property_id, property_title, property_price, property_location,
	status, assigned_to, claimed_by, assigned_by, claimed_at, assigned_at,
	last_follow_up_at, next_follow_up_at, created_at, updated_at`

// Create validates nothing (handlers do field validation) but enforces the
// duplicate guard and allocates the ticket number. On a duplicate it returns
// a *DuplicateInquiryError carrying the existing ticket. On success the
// passed record is populated with its ID, ticket number, status and
// timestamps.
//
// Each ticket attempt runs in its own transaction. Under REPEATABLE READ a
// recount inside the losing transaction replays the stale snapshot and
// produces the same number again, so after a unique-key loss the whole
// transaction restarts to observe the winner's committed row.
func (r *InquiryRepo) Create(ctx context.Context, inq *model.Inquiry) error {
	for attempt := 0; attempt < maxTicketAttempts; attempt++ {
		retry, err := r.createOnce(ctx, inq)
		if !retry {
			return err
		}
	}
	return errors.New("ticket allocation retries exhausted")
}

// createOnce performs one duplicate-guarded insert attempt. retry=true means
// the attempt lost the ticket unique key to a concurrent submission and the
// caller should run a fresh transaction.
func (r *InquiryRepo) createOnce(ctx context.Context, inq *model.Inquiry) (retry bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Duplicate guard: an open inquiry for the same email and property
	// within the window blocks a new one. Terminal statuses do not block.
	dupQ := `SELECT ticket_number, created_at FROM inquiries
	         WHERE email = ? AND property_id = ?
	           AND created_at >= (UTC_TIMESTAMP() - INTERVAL 7 DAY)
	           AND status NOT IN (` + terminalPlaceholders() + `)
	         ORDER BY created_at DESC LIMIT 1`
	args := []interface{}{strings.ToLower(strings.TrimSpace(inq.Email)), inq.PropertyID}
	for _, s := range model.TerminalInquiryStatuses {
		args = append(args, s)
	}
	var existingTicket string
	var submittedAt time.Time
	err = tx.QueryRowContext(ctx, dupQ, args...).Scan(&existingTicket, &submittedAt)
	switch {
	case err == nil:
		return false, &DuplicateInquiryError{Ticket: existingTicket, SubmittedAt: submittedAt}
	case errors.Is(err, sql.ErrNoRows):
		// no duplicate, proceed
	default:
		return false, err
	}

	year := time.Now().UTC().Year()
	prefix := utils.TicketPrefix(year)
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inquiries WHERE ticket_number LIKE ?`, prefix+"%",
	).Scan(&count); err != nil {
		return false, err
	}
	ticket := utils.FormatTicket(year, count+1)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO inquiries
		 (ticket_number, name, email, phone, message,
		  property_id, property_title, property_price, property_location, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		ticket, inq.Name, strings.ToLower(strings.TrimSpace(inq.Email)), inq.Phone, inq.Message,
		inq.PropertyID, inq.PropertyTitle, inq.PropertyPrice, inq.PropertyLocation,
		model.InquiryNew,
	)
	if err != nil {
		if isDuplicateKey(err) {
			// A concurrent submission took this number.
			return true, nil
		}
		return false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	inq.ID = uint64(id)
	inq.TicketNumber = ticket
	inq.Status = model.InquiryNew
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM inquiries WHERE id = ?`, inq.ID,
	).Scan(&inq.CreatedAt, &inq.UpdatedAt); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return false, nil
}

// Claim atomically takes ownership of an unassigned inquiry for the given
// agent. The WHERE clause is the whole race arbiter: of two concurrent
// claims exactly one update matches a row. The loser gets ErrAlreadyClaimed
// (or ErrInquiryNotFound / ErrIllegalTransition after inspection).
func (r *InquiryRepo) Claim(ctx context.Context, id, agentID uint64) (*model.Inquiry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inquiries
		 SET assigned_to = ?, claimed_by = ?, claimed_at = UTC_TIMESTAMP(),
		     status = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND assigned_to IS NULL AND status = ?`,
		agentID, agentID, model.InquiryClaimed, id, model.InquiryNew)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish why: missing row, already owned, or not claimable.
		var assignedTo sql.NullInt64
		var status string
		err := r.db.QueryRowContext(ctx,
			`SELECT assigned_to, status FROM inquiries WHERE id = ?`, id,
		).Scan(&assignedTo, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		if err != nil {
			return nil, err
		}
		if assignedTo.Valid {
			return nil, ErrAlreadyClaimed
		}
		return nil, ErrIllegalTransition
	}
	return r.GetByID(ctx, id)
}

// Assign places or moves ownership of an inquiry onto an agent by admin
// decision. Unlike Claim it overwrites any prior assignment; only terminal
// inquiries refuse it.
func (r *InquiryRepo) Assign(ctx context.Context, id, agentID, adminID uint64) (*model.Inquiry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM inquiries WHERE id = ? FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInquiryNotFound
	}
	if err != nil {
		return nil, err
	}
	if model.IsTerminalInquiryStatus(status) {
		return nil, ErrIllegalTransition
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE inquiries
		 SET assigned_to = ?, assigned_by = ?, assigned_at = UTC_TIMESTAMP(),
		     status = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		agentID, adminID, model.InquiryAssigned, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// UpdateStatus moves an inquiry to a new status, enforcing the transition
// table, and optionally appends a note and sets the next follow-up time in
// the same transaction. The follow-up clock (last_follow_up_at) is stamped
// on every successful update.
func (r *InquiryRepo) UpdateStatus(ctx context.Context, id uint64, newStatus string, agentID uint64, agentName, note string, nextFollowUp *time.Time) (*model.Inquiry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM inquiries WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInquiryNotFound
	}
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionInquiry(current, newStatus) {
		return nil, ErrIllegalTransition
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE inquiries
		 SET status = ?, last_follow_up_at = UTC_TIMESTAMP(), next_follow_up_at = ?,
		     updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		newStatus, nextFollowUp, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(note) != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inquiry_notes (inquiry_id, agent_id, agent_name, note) VALUES (?,?,?,?)`,
			id, agentID, agentName, note); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// AddNote appends a note to an inquiry. Notes are never edited or removed.
func (r *InquiryRepo) AddNote(ctx context.Context, inquiryID, agentID uint64, agentName, note string) (model.InquiryNote, error) {
	var exists uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM inquiries WHERE id = ?`, inquiryID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.InquiryNote{}, ErrInquiryNotFound
	}
	if err != nil {
		return model.InquiryNote{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO inquiry_notes (inquiry_id, agent_id, agent_name, note) VALUES (?,?,?,?)`,
		inquiryID, agentID, agentName, note)
	if err != nil {
		return model.InquiryNote{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.InquiryNote{}, err
	}
	n := model.InquiryNote{ID: uint64(id), AgentID: agentID, AgentName: agentName, Note: note}
	err = r.db.QueryRowContext(ctx, `SELECT created_at FROM inquiry_notes WHERE id = ?`, n.ID).Scan(&n.CreatedAt)
	return n, err
}

// GetByID loads a single inquiry with its notes (oldest first).
func (r *InquiryRepo) GetByID(ctx context.Context, id uint64) (*model.Inquiry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id)
	inq, err := scanInquiry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInquiryNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, agent_id, agent_name, note, created_at FROM inquiry_notes
		 WHERE inquiry_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var n model.InquiryNote
		if err := rows.Scan(&n.ID, &n.AgentID, &n.AgentName, &n.Note, &n.CreatedAt); err != nil {
			return nil, err
		}
		inq.Notes = append(inq.Notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inq, nil
}

// ListForAgent returns the inquiries visible to an agent: their own plus the
// open pool. Inquiries owned by other agents never appear.
func (r *InquiryRepo) ListForAgent(ctx context.Context, agentID uint64) ([]model.Inquiry, error) {
	return r.list(ctx,
		`SELECT `+inquiryColumns+` FROM inquiries
		 WHERE assigned_to = ? OR assigned_to IS NULL
		 ORDER BY created_at DESC`, agentID)
}

// ListAll returns every inquiry, newest first. Admin only.
func (r *InquiryRepo) ListAll(ctx context.Context) ([]model.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries ORDER BY created_at DESC`)
}

// Delete removes an inquiry and its notes (cascade via FK). Explicit admin
// action only.
func (r *InquiryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

func (r *InquiryRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Inquiry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Inquiry, 0)
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inq)
	}
	return items, rows.Err()
}

func scanInquiry(s rowScanner) (*model.Inquiry, error) {
	var inq model.Inquiry
	var assignedTo, claimedBy, assignedBy sql.NullInt64
	var claimedAt, assignedAt, lastFU, nextFU sql.NullTime
	err := s.Scan(
		&inq.ID, &inq.TicketNumber, &inq.Name, &inq.Email, &inq.Phone, &inq.Message,
		&inq.PropertyID, &inq.PropertyTitle, &inq.PropertyPrice, &inq.PropertyLocation,
		&inq.Status, &assignedTo, &claimedBy, &assignedBy, &claimedAt, &assignedAt,
		&lastFU, &nextFU, &inq.CreatedAt, &inq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		v := uint64(assignedTo.Int64)
		inq.AssignedTo = &v
	}
	if claimedBy.Valid {
		v := uint64(claimedBy.Int64)
		inq.ClaimedBy = &v
	}
	if assignedBy.Valid {
		v := uint64(assignedBy.Int64)
		inq.AssignedBy = &v
	}
	if claimedAt.Valid {
		t := claimedAt.Time
		inq.ClaimedAt = &t
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		inq.AssignedAt = &t
	}
	if lastFU.Valid {
		t := lastFU.Time
		inq.LastFollowUpAt = &t
	}
	if nextFU.Valid {
		t := nextFU.Time
		inq.NextFollowUpAt = &t
	}
	return &inq, nil
}

// terminalPlaceholders returns "?,?,?" sized to the terminal status set.
func terminalPlaceholders() string {
	return strings.TrimSuffix(strings.Repeat("?,", len(model.TerminalInquiryStatuses)), ",")
}
