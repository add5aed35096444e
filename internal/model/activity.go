package model

import "time"

// ActivityEntry is one row of the append-only audit log. Rows are written
// by every mutating operation and are never updated or deleted.
type ActivityEntry struct {
	ID          uint64    `json:"id"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	PerformedBy string    `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
