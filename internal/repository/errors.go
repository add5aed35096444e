// Package repository defines error values that are reused across multiple
// repositories. These sentinels let handlers distinguish failure scenarios:
// ErrForbidden maps to 403, the not-found errors to 404, and the conflict
// family (claim races, duplicate inquiries, reservation preconditions,
// double commission payment, illegal transitions) to 409.
package repository

import (
	"errors"
	"fmt"
	"time"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrInquiryNotFound indicates that an inquiry id did not match any row.
var ErrInquiryNotFound = errors.New("inquiry not found")

// ErrPropertyNotFound indicates that a property id did not match any row.
var ErrPropertyNotFound = errors.New("property not found")

// ErrEventNotFound indicates that a calendar event id did not match any row.
var ErrEventNotFound = errors.New("event not found")

// ErrUserNotFound indicates that a user id did not match any row.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when creating a user with an email that is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyClaimed is returned when the conditional claim update affects no
// rows because another agent holds the inquiry. The loser of a claim race
// receives this.
var ErrAlreadyClaimed = errors.New("already claimed by another agent")

// ErrNotAvailable is returned when reserving a property whose status is not
// "available". State is left untouched.
var ErrNotAvailable = errors.New("property is not available")

// ErrNoCommission is returned when marking a commission paid on a property
// that has never been sold.
var ErrNoCommission = errors.New("no commission on this property")

// ErrCommissionPaid is returned when a commission has already been marked
// paid; the pending -> paid transition happens exactly once.
var ErrCommissionPaid = errors.New("commission already paid")

// ErrIllegalTransition is returned when a status update is not permitted by
// the transition table.
var ErrIllegalTransition = errors.New("illegal status transition")

// DuplicateInquiryError is returned when a public submission matches an
// open inquiry for the same email and property inside the duplicate window.
// It carries enough context for the caller to point the customer at the
// existing ticket.
type DuplicateInquiryError struct {
	Ticket      string
	SubmittedAt time.Time
}

func (e *DuplicateInquiryError) Error() string {
	return fmt.Sprintf("duplicate inquiry: ticket %s submitted at %s", e.Ticket, e.SubmittedAt.Format(time.RFC3339))
}
