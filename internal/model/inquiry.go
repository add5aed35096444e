package model

import "time"

// DuplicateWindow is how long a submitted inquiry blocks another submission
// for the same email and property, unless the earlier one has reached a
// terminal status.
const DuplicateWindow = 7 * 24 * time.Hour

// Inquiry mirrors the `inquiries` table. The property title, price and
// location are snapshotted at creation so the record keeps showing the terms
// quoted to the customer even if the listing changes later.
type Inquiry struct {
	ID           uint64 `json:"id"`
	TicketNumber string `json:"ticket_number"`

	// Customer fields from the public form.
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`

	PropertyID       uint64  `json:"property_id"`
	PropertyTitle    string  `json:"property_title"`
	PropertyPrice    float64 `json:"property_price"`
	PropertyLocation string  `json:"property_location"`

	Status     string     `json:"status"`
	AssignedTo *uint64    `json:"assigned_to,omitempty"`
	ClaimedBy  *uint64    `json:"claimed_by,omitempty"`
	AssignedBy *uint64    `json:"assigned_by,omitempty"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`

	LastFollowUpAt *time.Time `json:"last_follow_up_at,omitempty"`
	NextFollowUpAt *time.Time `json:"next_follow_up_at,omitempty"`

	Notes []InquiryNote `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InquiryNote is one entry of the append-only note list on an inquiry.
type InquiryNote struct {
	ID        uint64    `json:"id"`
	AgentID   uint64    `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// VisibleToAgent implements the pool rule: an agent sees an inquiry when it
// is assigned to them or still unassigned. Admin visibility is decided by
// role, not here.
func (i *Inquiry) VisibleToAgent(agentID uint64) bool {
	return i.AssignedTo == nil || *i.AssignedTo == agentID
}
