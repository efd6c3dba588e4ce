package orders

import "github.com/google/uuid"

// OrderPlaced signals a draft order became a placed order.
type OrderPlaced struct {
	OrderID    uuid.UUID `json:"order_id"`
	Reference  string    `json:"reference"`
	TotalCents int64     `json:"total_cents"`
}

func (OrderPlaced) EventName() string { return "orders.placed" }

// OrderRepriced signals an order total changed.
type OrderRepriced struct {
	OrderID       uuid.UUID `json:"order_id"`
	OldTotalCents int64     `json:"old_total_cents"`
	NewTotalCents int64     `json:"new_total_cents"`
}

func (OrderRepriced) EventName() string { return "orders.repriced" }

// OrderCancelled signals a placed order was cancelled.
type OrderCancelled struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason,omitempty"`
}

func (OrderCancelled) EventName() string { return "orders.cancelled" }
