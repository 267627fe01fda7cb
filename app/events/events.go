// Package events names the domain events and their payloads. Services
// publish them after their transaction commits.
package events

import "context"

const (
	OrderPlaced         = "order.placed"
	OrderCancelled      = "order.cancelled"
	OrderStatusChanged  = "order.status_changed"
	OrderPaymentChanged = "order.payment_changed"

	ConsultationCreated    = "consultation.created"
	ConsultationClaimed    = "consultation.claimed"
	ConsultationAssigned   = "consultation.assigned"
	ConsultationUnassigned = "consultation.unassigned"
	ConsultationResponded  = "consultation.responded"
	ConsultationRated      = "consultation.rated"
	ConsultationCancelled  = "consultation.cancelled"
)

// Publisher is satisfied by *event.Bus.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) {}

type OrderEvent struct {
	OrderID       uint    `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	BuyerID       uint    `json:"buyer_id"`
	FarmerIDs     []uint  `json:"farmer_ids,omitempty"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	TotalAmount   float64 `json:"total_amount"`
}

type ConsultationEvent struct {
	ConsultationID uint   `json:"consultation_id"`
	Title          string `json:"title"`
	FarmerID       uint   `json:"farmer_id"`
	ConsultantID   *uint  `json:"consultant_id,omitempty"`
	Status         string `json:"status"`
	Rating         *int   `json:"rating,omitempty"`
}
