// Package orders holds the order aggregate and its domain events.
package orders

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/orderdesk-backend/internal/domain/model"
)

const (
	StatusDraft     = "draft"
	StatusPlaced    = "placed"
	StatusCancelled = "cancelled"
)

// Order is an aggregate root. It opts into every persistence capability:
// client-generated identity, optimistic concurrency, creation/modification
// audit, soft delete and a domain-event queue.
type Order struct {
	model.Model
	model.ConcurrencyLock
	model.CreationAudit
	model.ModificationAudit
	model.SoftDeleteAudit
	model.AggregateBase

	Reference  string            `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	CustomerID uuid.UUID         `gorm:"type:uuid;index" json:"customer_id"`
	Status     string            `gorm:"size:32;not null;default:'draft';index" json:"status"`
	Currency   string            `gorm:"size:8;not null;default:'USD'" json:"currency"`
	TotalCents int64             `gorm:"not null;default:0" json:"total_cents"`
	Attributes datatypes.JSONMap `json:"attributes,omitempty"`
	Lines      []OrderLine       `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrderID;references:ID" json:"lines,omitempty"`
}

// OrderLine is a child row owned by an Order. It carries identity and
// creation audit only.
type OrderLine struct {
	model.Model
	model.CreationAudit

	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	SKU       string    `gorm:"size:64;not null" json:"sku"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	UnitCents int64     `gorm:"not null" json:"unit_cents"`
}

func NewOrder(customerID uuid.UUID, reference string) (*Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrEmptyReference
	}
	return &Order{
		Reference:  reference,
		CustomerID: customerID,
		Status:     StatusDraft,
		Currency:   "USD",
	}, nil
}

// AddLine appends a line while the order is still a draft.
func (o *Order) AddLine(sku string, quantity int, unitCents int64) error {
	if o.Status != StatusDraft {
		return ErrNotDraft
	}
	sku = strings.TrimSpace(sku)
	if sku == "" || quantity <= 0 || unitCents < 0 {
		return ErrInvalidLine
	}
	// Lines are inserted through the order's association and never appear as
	// change records of their own, so they get their identity here.
	o.Lines = append(o.Lines, OrderLine{
		Model:     model.Model{ID: uuid.New()},
		SKU:       sku,
		Quantity:  quantity,
		UnitCents: unitCents,
	})
	return nil
}

// Place transitions a draft into a placed order and raises OrderPlaced.
func (o *Order) Place() error {
	if o.Status != StatusDraft {
		return ErrNotDraft
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	o.Status = StatusPlaced
	o.TotalCents = o.computeTotal()
	o.Raise(OrderPlaced{
		OrderID:    o.ID,
		Reference:  o.Reference,
		TotalCents: o.TotalCents,
	})
	return nil
}

// Reprice recomputes the total from the current lines and raises
// OrderRepriced when it changed.
func (o *Order) Reprice() {
	old := o.TotalCents
	o.TotalCents = o.computeTotal()
	if o.TotalCents != old {
		o.Raise(OrderRepriced{
			OrderID:       o.ID,
			OldTotalCents: old,
			NewTotalCents: o.TotalCents,
		})
	}
}

// Cancel marks a placed order cancelled and raises OrderCancelled.
func (o *Order) Cancel(reason string) error {
	switch o.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusPlaced:
	default:
		return ErrNotPlaced
	}
	o.Status = StatusCancelled
	o.Raise(OrderCancelled{
		OrderID: o.ID,
		Reason:  strings.TrimSpace(reason),
	})
	return nil
}

func (o *Order) computeTotal() int64 {
	var total int64
	for _, l := range o.Lines {
		total += int64(l.Quantity) * l.UnitCents
	}
	return total
}
