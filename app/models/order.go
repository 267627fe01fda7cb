package models

import "gorm.io/gorm"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// rank orders the forward fulfilment path; cancelled sits outside it.
var orderRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderShipped:   2,
	OrderDelivered: 3,
}

// Cancellable reports whether an order in status s can still be reversed.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// CanAdvanceTo reports whether s -> next is a forward fulfilment step.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok1 := orderRank[s]
	to, ok2 := orderRank[next]
	return ok1 && ok2 && to > from
}

func (s OrderStatus) Valid() bool {
	_, ok := orderRank[s]
	return ok || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// CanMoveTo allows pending -> paid|failed and paid -> refunded.
func (s PaymentStatus) CanMoveTo(next PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return next == PaymentPaid || next == PaymentFailed
	case PaymentPaid:
		return next == PaymentRefunded
	}
	return false
}

// Order is a buyer's committed purchase. TotalAmount always equals the sum
// of its items' TotalPrice.
type Order struct {
	gorm.Model
	OrderNumber     string        `gorm:"size:50;uniqueIndex;not null" json:"order_number"`
	TotalAmount     float64       `gorm:"not null"                     json:"total_amount"`
	Status          OrderStatus   `gorm:"size:20;not null;index"       json:"status"`
	PaymentStatus   PaymentStatus `gorm:"size:20;not null;index"       json:"payment_status"`
	PaymentMethod   string        `gorm:"size:50"                      json:"payment_method,omitempty"`
	ShippingAddress string        `gorm:"type:text;not null"           json:"shipping_address"`
	Notes           string        `gorm:"type:text"                    json:"notes,omitempty"`
	BuyerID         uint          `gorm:"not null;index"               json:"buyer_id"`
	Buyer           *User         `gorm:"foreignKey:BuyerID"           json:"buyer,omitempty"`
	Items           []OrderItem   `gorm:"constraint:OnDelete:CASCADE"  json:"items,omitempty"`
}

// OrderItem is one line of an Order. UnitPrice and TotalPrice are frozen at
// checkout and never follow later crop price edits.
type OrderItem struct {
	gorm.Model
	OrderID    uint    `gorm:"not null;index" json:"order_id"`
	CropID     uint    `gorm:"not null;index" json:"crop_id"`
	Crop       *Crop   `json:"crop,omitempty"`
	Quantity   float64 `gorm:"type:numeric(12,3);not null" json:"quantity"`
	UnitPrice  float64 `gorm:"not null"       json:"unit_price"`
	TotalPrice float64 `gorm:"not null"       json:"total_price"`
}
