// Package queue defines message payloads exchanged over the message broker.
package queue

// InquiryReceivedQueue and PropertySoldQueue are the durable queue names the
// publisher and consumer agree on.
const (
	InquiryReceivedQueue = "inquiry.received"
	PropertySoldQueue    = "property.sold"
)

// InquiryReceivedEvent is published after a public inquiry submission is
// committed. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type InquiryReceivedEvent struct {
	InquiryID     uint64  `json:"inquiry_id"`
	TicketNumber  string  `json:"ticket_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	PropertyID    uint64  `json:"property_id"`
	PropertyTitle string  `json:"property_title"`
	PropertyPrice float64 `json:"property_price"`
	SubmittedAt   string  `json:"submitted_at"`
}

// PropertySoldEvent is published when a sale is recorded on a property.
type PropertySoldEvent struct {
	PropertyID       uint64  `json:"property_id"`
	Title            string  `json:"title"`
	AgentID          uint64  `json:"agent_id"`
	AgentName        string  `json:"agent_name"`
	SalePrice        float64 `json:"sale_price"`
	CommissionRate   float64 `json:"commission_rate"`
	CommissionAmount float64 `json:"commission_amount"`
	SoldAt           string  `json:"sold_at"`
}
