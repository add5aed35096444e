package model

import "time"

// ConflictBuffer is the padding applied on both sides of a proposed viewing
// when checking an agent's schedule. Two events closer than this are
// considered conflicting even if they do not strictly overlap.
const ConflictBuffer = 30 * time.Minute

// Business hours (local time) within which events may be scheduled.
const (
	BusinessOpenHour  = 8
	BusinessCloseHour = 18
)

// Calendar event types.
const (
	EventViewing = "viewing"
	EventMeeting = "meeting"
	EventOther   = "other"
)

// CalendarEvent mirrors the `calendar_events` table. AgentID is the
// exclusive owner; InquiryID is a weak reference used for lookups only.
type CalendarEvent struct {
	ID          uint64    `json:"id"`
	AgentID     uint64    `json:"agent_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	InquiryID   *uint64   `json:"inquiry_id,omitempty"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsEventType reports whether s is a declared calendar event type.
func IsEventType(s string) bool {
	return s == EventViewing || s == EventMeeting || s == EventOther
}

// EventsConflict reports whether an existing event [existStart, existEnd]
// collides with a proposed event [newStart, newEnd] once both sides are
// padded by ConflictBuffer. Events for different agents never conflict;
// callers scope the existing events to one agent before using this.
func EventsConflict(existStart, existEnd, newStart, newEnd time.Time) bool {
	return existStart.Before(newEnd.Add(ConflictBuffer)) &&
		existEnd.After(newStart.Add(-ConflictBuffer))
}

// WithinBusinessHours reports whether the interval [start, end] falls inside
// a single day's business hours. An event ending exactly at close is
// allowed.
func WithinBusinessHours(start, end time.Time) bool {
	if start.Hour() < BusinessOpenHour {
		return false
	}
	if end.Hour() > BusinessCloseHour {
		return false
	}
	if end.Hour() == BusinessCloseHour && (end.Minute() > 0 || end.Second() > 0) {
		return false
	}
	return true
}
