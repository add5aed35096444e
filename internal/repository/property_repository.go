package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/casavia/brokerage-api/internal/model"
)

// PropertyRepo provides data access to the `properties` table and its
// children (features, images, status history, view history). Status changes
// always append a history row in the same transaction, and every mutating
// entry point first sweeps lapsed reservations back to "available"
// (ExpireReservationsTx) so expiry is enforced lazily without a background
// process.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo returns a new PropertyRepo bound to the given database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

// DB exposes the underlying handle.
func (r *PropertyRepo) DB() *sql.DB { return r.db }

const propertyColumns = `id, title, type, price, location, bedrooms, bathrooms,
	area_sqm, description, status, created_by, view_count,
	reserved_by_id, reserved_by_name, reserved_at, reserved_until,
	sold_by_id, sold_by_name, sold_at, sale_price,
	commission_rate, commission_amount, commission_status,
	commission_paid_at, commission_paid_by,
	created_at, updated_at`

// ExpireReservationsTx returns every reserved property whose hold has
// lapsed to "available", clearing the reservation fields and appending a
// history entry attributed to the system. It returns the IDs that were
// released. Callers run this at the start of mutating transactions and
// before reads that show reservation state.
func (r *PropertyRepo) ExpireReservationsTx(ctx context.Context, tx *sql.Tx) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM properties
		 WHERE status = ? AND reserved_until IS NOT NULL AND reserved_until <= UTC_TIMESTAMP()
		 FOR UPDATE`, model.PropertyReserved)
	if err != nil {
		return nil, err
	}
	var expired []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		expired = append(expired, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return []uint64{}, nil
	}
	for _, id := range expired {
		if _, err := tx.ExecContext(ctx,
			`UPDATE properties
			 SET status = ?, reserved_by_id = NULL, reserved_by_name = NULL,
			     reserved_at = NULL, reserved_until = NULL, updated_at = UTC_TIMESTAMP()
			 WHERE id = ?`, model.PropertyAvailable, id); err != nil {
			return nil, err
		}
		if err := appendHistoryTx(ctx, tx, id, model.PropertyAvailable, 0, "system", "reservation expired"); err != nil {
			return nil, err
		}
	}
	return expired, nil
}

// Create inserts a property with its features and images and writes the
// initial history entry, all in one transaction. The record's ID and
// timestamps are populated on success.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property, creatorName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO properties
		 (title, type, price, location, bedrooms, bathrooms, area_sqm, description, status, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.Title, p.Type, p.Price, p.Location, p.Bedrooms, p.Bathrooms, p.AreaSqm,
		p.Description, p.Status, p.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	if err := insertOrdered(ctx, tx, "property_features", "feature", p.ID, p.Features); err != nil {
		return err
	}
	if err := insertOrdered(ctx, tx, "property_images", "url", p.ID, p.Images); err != nil {
		return err
	}
	if err := appendHistoryTx(ctx, tx, p.ID, p.Status, p.CreatedBy, creatorName, "listing created"); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM properties WHERE id = ?`, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertOrdered bulk-inserts an ordered child list (features or images)
// keyed by position.
func insertOrdered(ctx context.Context, tx *sql.Tx, table, column string, propertyID uint64, values []string) error {
	if len(values) == 0 {
		return nil
	}
	query := `INSERT INTO ` + table + ` (property_id, position, ` + column + `) VALUES `
	args := make([]interface{}, 0, len(values)*3)
	for i, v := range values {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, propertyID, i, v)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func appendHistoryTx(ctx context.Context, tx *sql.Tx, propertyID uint64, status string, changedBy uint64, changedByName, reason string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO property_status_history (property_id, status, changed_by, changed_by_name, reason)
		 VALUES (?,?,?,?,?)`,
		propertyID, status, changedBy, changedByName, sql.NullString{String: reason, Valid: reason != ""})
	return err
}

// GetByID loads a property with its features, images and full status
// history. Lapsed reservations are expired first so callers never see a
// stale "reserved".
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*model.Property, error) {
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
	if _, err := r.ExpireReservationsTx(ctx, tx); err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Features, err = selectOrdered(ctx, tx, "property_features", "feature", id); err != nil {
		return nil, err
	}
	if p.Images, err = selectOrdered(ctx, tx, "property_images", "url", id); err != nil {
		return nil, err
	}
	hrows, err := tx.QueryContext(ctx,
		`SELECT status, changed_by, changed_by_name, reason, changed_at
		 FROM property_status_history WHERE property_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var e model.StatusHistoryEntry
		var reason sql.NullString
		if err := hrows.Scan(&e.Status, &e.ChangedBy, &e.ChangedByName, &reason, &e.ChangedAt); err != nil {
			return nil, err
		}
		e.Reason = reason.String
		p.History = append(p.History, e)
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return p, nil
}

func selectOrdered(ctx context.Context, tx *sql.Tx, table, column string, propertyID uint64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+column+` FROM `+table+` WHERE property_id = ? ORDER BY position`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// PropertyFilter narrows the public listing. Zero values mean "no filter".
type PropertyFilter struct {
	Type     string
	Location string
	MinPrice float64
	MaxPrice float64
	Bedrooms uint8
	// Statuses restricts results; empty means the public set (everything
	// except draft, withdrawn and off-market).
	Statuses []string
}

// List returns properties matching the filter, newest first, with their
// cover image populated (full image sets and history are loaded by
// GetByID).
func (r *PropertyRepo) List(ctx context.Context, f PropertyFilter) ([]model.Property, error) {
	where := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = []string{model.PropertyAvailable, model.PropertyReserved, model.PropertyUnderContract, model.PropertySold}
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	where = append(where, "status IN ("+ph+")")
	for _, s := range statuses {
		args = append(args, s)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+f.Location+"%")
	}
	if f.MinPrice > 0 {
		where = append(where, "price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "price <= ?")
		args = append(args, f.MaxPrice)
	}
	if f.Bedrooms > 0 {
		where = append(where, "bedrooms >= ?")
		args = append(args, f.Bedrooms)
	}
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Property, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(items)
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	// Cover images for the whole page in one query.
	ids := make([]interface{}, 0, len(items))
	placeholders := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
		placeholders = append(placeholders, "?")
	}
	irows, err := r.db.QueryContext(ctx,
		`SELECT property_id, url FROM property_images
		 WHERE position = 0 AND property_id IN (`+strings.Join(placeholders, ",")+`)`, ids...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var pid uint64
		var url string
		if err := irows.Scan(&pid, &url); err != nil {
			return nil, err
		}
		if idx, ok := index[pid]; ok {
			items[idx].Images = []string{url}
		}
	}
	return items, irows.Err()
}

// RecordView bumps the view counter and appends a view-history row. Not
// considered a mutation worth an activity-log entry.
func (r *PropertyRepo) RecordView(ctx context.Context, id uint64, viewerIP string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPropertyNotFound
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO property_views (property_id, viewer_ip) VALUES (?,?)`, id, viewerIP)
	return err
}

// Reserve places a time-boxed hold on an available property. The
// precondition is enforced by the conditional UPDATE, not a prior read: a
// property that is anything but "available" (including a reservation that
// just won a race) leaves the row count at zero and state untouched.
func (r *PropertyRepo) Reserve(ctx context.Context, id, agentID uint64, agentName string, hours int) (*model.Property, error) {
	if hours <= 0 {
		hours = model.DefaultReservationHours
	}
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
	if _, err := r.ExpireReservationsTx(ctx, tx); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE properties
		 SET status = ?, reserved_by_id = ?, reserved_by_name = ?,
		     reserved_at = UTC_TIMESTAMP(),
		     reserved_until = UTC_TIMESTAMP() + INTERVAL ? HOUR,
		     updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = ?`,
		model.PropertyReserved, agentID, agentName, hours, id, model.PropertyAvailable)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var exists uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM properties WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrNotAvailable
	}
	if err := appendHistoryTx(ctx, tx, id, model.PropertyReserved, agentID, agentName,
		model.ReservationReason(agentName, hours)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// UpdateStatus moves a property through the status graph with a history
// append. Selling is not accepted here; Sell carries the extra inputs a
// sale requires.
func (r *PropertyRepo) UpdateStatus(ctx context.Context, id uint64, newStatus string, actorID uint64, actorName, reason string) (*model.Property, error) {
	if newStatus == model.PropertySold {
		return nil, ErrIllegalTransition
	}
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
	if _, err := r.ExpireReservationsTx(ctx, tx); err != nil {
		return nil, err
	}
	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM properties WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionProperty(current, newStatus) {
		return nil, ErrIllegalTransition
	}
	// Leaving "reserved" by any route clears the hold fields.
	if _, err := tx.ExecContext(ctx,
		`UPDATE properties
		 SET status = ?, reserved_by_id = NULL, reserved_by_name = NULL,
		     reserved_at = NULL, reserved_until = NULL, updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`, newStatus, id); err != nil {
		return nil, err
	}
	if err := appendHistoryTx(ctx, tx, id, newStatus, actorID, actorName, reason); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// SaleInput carries what is collected at the moment a property is sold.
type SaleInput struct {
	AgentID   uint64
	AgentName string
	SalePrice float64 // 0 means "use the listing price"
	Rate      float64 // 0 means the default commission rate
}

// Sell transitions a property to "sold", recording the sale fields,
// creating the pending commission and appending the history entry, all in
// one transaction. The commission amount is computed here so it can never
// drift from the recorded price and rate.
func (r *PropertyRepo) Sell(ctx context.Context, id uint64, in SaleInput) (*model.Property, error) {
	if in.Rate <= 0 {
		in.Rate = model.DefaultCommissionRate
	}
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
	if _, err := r.ExpireReservationsTx(ctx, tx); err != nil {
		return nil, err
	}
	var current string
	var listPrice float64
	err = tx.QueryRowContext(ctx,
		`SELECT status, price FROM properties WHERE id = ? FOR UPDATE`, id,
	).Scan(&current, &listPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionProperty(current, model.PropertySold) {
		return nil, ErrIllegalTransition
	}
	if in.SalePrice <= 0 {
		in.SalePrice = listPrice
	}
	amount := model.ComputeCommission(in.SalePrice, in.Rate)
	if _, err := tx.ExecContext(ctx,
		`UPDATE properties
		 SET status = ?, sold_by_id = ?, sold_by_name = ?, sold_at = UTC_TIMESTAMP(),
		     sale_price = ?, commission_rate = ?, commission_amount = ?, commission_status = ?,
		     reserved_by_id = NULL, reserved_by_name = NULL, reserved_at = NULL, reserved_until = NULL,
		     updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		model.PropertySold, in.AgentID, in.AgentName, in.SalePrice, in.Rate, amount,
		model.CommissionPending, id); err != nil {
		return nil, err
	}
	if err := appendHistoryTx(ctx, tx, id, model.PropertySold, in.AgentID, in.AgentName,
		model.SaleReason(in.AgentName, in.SalePrice, in.Rate, amount)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// MarkCommissionPaid flips a pending commission to paid. The guard lives in
// the WHERE clause, so paying twice (or concurrently) succeeds exactly once;
// the second attempt is told why it failed.
func (r *PropertyRepo) MarkCommissionPaid(ctx context.Context, id, adminID uint64) (*model.Property, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties
		 SET commission_status = ?, commission_paid_at = UTC_TIMESTAMP(),
		     commission_paid_by = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND commission_status = ?`,
		model.CommissionPaid, adminID, id, model.CommissionPending)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var status sql.NullString
		err := r.db.QueryRowContext(ctx,
			`SELECT commission_status FROM properties WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		if err != nil {
			return nil, err
		}
		if !status.Valid {
			return nil, ErrNoCommission
		}
		return nil, ErrCommissionPaid
	}
	return r.GetByID(ctx, id)
}

// Delete removes a property and its child rows (cascade via FK). Explicit
// admin action only.
func (r *PropertyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func scanProperty(s rowScanner) (*model.Property, error) {
	var p model.Property
	var resByID, soldByID, paidBy sql.NullInt64
	var resByName, soldByName, commStatus sql.NullString
	var resAt, resUntil, soldAt, paidAt sql.NullTime
	var salePrice, commRate, commAmount sql.NullFloat64
	err := s.Scan(
		&p.ID, &p.Title, &p.Type, &p.Price, &p.Location, &p.Bedrooms, &p.Bathrooms,
		&p.AreaSqm, &p.Description, &p.Status, &p.CreatedBy, &p.ViewCount,
		&resByID, &resByName, &resAt, &resUntil,
		&soldByID, &soldByName, &soldAt, &salePrice,
		&commRate, &commAmount, &commStatus, &paidAt, &paidBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if resByID.Valid {
		p.Reservation = &model.Reservation{
			ByID:   uint64(resByID.Int64),
			ByName: resByName.String,
			At:     resAt.Time,
			Until:  resUntil.Time,
		}
	}
	if soldByID.Valid {
		p.Sale = &model.Sale{
			ByID:  uint64(soldByID.Int64),
			By:    soldByName.String,
			At:    soldAt.Time,
			Price: salePrice.Float64,
		}
	}
	if commStatus.Valid {
		c := &model.Commission{
			Rate:   commRate.Float64,
			Amount: commAmount.Float64,
			Status: commStatus.String,
		}
		if paidAt.Valid {
			t := paidAt.Time
			c.PaidAt = &t
		}
		if paidBy.Valid {
			v := uint64(paidBy.Int64)
			c.PaidBy = &v
		}
		p.Commission = c
	}
	return &p, nil
}
