package model

import (
	"fmt"
	"time"
)

// DefaultCommissionRate is the brokerage percentage applied when a sale is
// recorded without an explicit rate.
const DefaultCommissionRate = 3.0

// DefaultReservationHours is how long a reservation holds a property when no
// duration is given.
const DefaultReservationHours = 24

// Property mirrors the `properties` table plus its child tables (features,
// images, status history). Reservation fields are meaningful only while
// Status is "reserved"; sale and commission fields only once it is "sold".
type Property struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Bedrooms    uint8     `json:"bedrooms"`
	Bathrooms   uint8     `json:"bathrooms"`
	AreaSqm     float64   `json:"area_sqm"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   uint64    `json:"created_by"`
	ViewCount   uint64    `json:"view_count"`
	Features    []string  `json:"features"` // ordered
	Images      []string  `json:"images"`   // ordered, first is the cover
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Reservation *Reservation         `json:"reservation,omitempty"`
	Sale        *Sale                `json:"sale,omitempty"`
	Commission  *Commission          `json:"commission,omitempty"`
	History     []StatusHistoryEntry `json:"status_history,omitempty"`
}

// Reservation is the time-boxed hold an agent places on an available
// property.
type Reservation struct {
	ByID   uint64    `json:"by_id"`
	ByName string    `json:"by_name"`
	At     time.Time `json:"at"`
	Until  time.Time `json:"until"`
}

// Sale records the final transaction details captured when a property is
// marked sold.
type Sale struct {
	ByID  uint64    `json:"by_id"`
	By    string    `json:"by"`
	At    time.Time `json:"at"`
	Price float64   `json:"price"`
}

// Commission tracks the brokerage fee owed to the selling agent. It moves
// pending -> paid exactly once.
type Commission struct {
	Rate   float64    `json:"rate"`
	Amount float64    `json:"amount"`
	Status string     `json:"status"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
	PaidBy *uint64    `json:"paid_by,omitempty"`
}

// StatusHistoryEntry is one row of the append-only property status audit
// trail.
type StatusHistoryEntry struct {
	Status        string    `json:"status"`
	ChangedBy     uint64    `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name"`
	Reason        string    `json:"reason,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

// ComputeCommission returns the commission amount for a sale price and a
// percentage rate.
func ComputeCommission(salePrice, rate float64) float64 {
	return salePrice * rate / 100
}

// SaleReason builds the human-readable history entry for a recorded sale.
func SaleReason(agentName string, salePrice, rate, amount float64) string {
	return fmt.Sprintf("sold by %s for %.2f (commission %.2f at %.2f%%)", agentName, salePrice, amount, rate)
}

// ReservationReason builds the history entry for a new reservation.
func ReservationReason(agentName string, hours int) string {
	return fmt.Sprintf("reserved by %s for %d hours", agentName, hours)
}
