package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/orderdesk-backend/internal/domain/orders"
	"github.com/yungbote/orderdesk-backend/internal/platform/logger"
	"github.com/yungbote/orderdesk-backend/internal/uow"
)

// UnitOfWorkFactory builds a fresh unit of work per write. A unit of work is
// one save's scope and is never shared across calls.
type UnitOfWorkFactory func() (*uow.UnitOfWork, error)

type CreateOrderLineInput struct {
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitCents int64  `json:"unit_cents"`
}

type CreateOrderInput struct {
	CustomerID uuid.UUID              `json:"customer_id"`
	Reference  string                 `json:"reference"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Lines      []CreateOrderLineInput `json:"lines"`
}

type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*orders.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*orders.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*orders.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	db     *gorm.DB
	log    *logger.Logger
	newUow UnitOfWorkFactory
}

func NewOrderService(db *gorm.DB, log *logger.Logger, newUow UnitOfWorkFactory) OrderService {
	return &orderService{
		db:     db,
		log:    log.With("service", "OrderService"),
		newUow: newUow,
	}
}

func (s *orderService) Create(ctx context.Context, in CreateOrderInput) (*orders.Order, error) {
	order, err := orders.NewOrder(in.CustomerID, in.Reference)
	if err != nil {
		return nil, uow.Wrap(uow.CodeValidation, "orders.create", err)
	}
	for _, l := range in.Lines {
		if err := order.AddLine(l.SKU, l.Quantity, l.UnitCents); err != nil {
			return nil, uow.Wrap(uow.CodeValidation, "orders.create", err)
		}
	}
	if len(in.Attributes) > 0 {
		order.Attributes = datatypes.JSONMap(in.Attributes)
	}
	if err := order.Place(); err != nil {
		return nil, uow.Wrap(uow.CodeValidation, "orders.create", err)
	}

	u, err := s.newUow()
	if err != nil {
		return nil, err
	}
	u.RegisterNew(order)
	affected, err := u.SaveContext(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("order created", "order_id", order.ID.String(), "reference", order.Reference, "affected", affected)
	return order, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("is_deleted = ?", false).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, uow.MapError("orders.get", err)
	}
	return &order, nil
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*orders.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(reason); err != nil {
		return nil, uow.Wrap(uow.CodePreconditionFailed, "orders.cancel", err)
	}

	u, err := s.newUow()
	if err != nil {
		return nil, err
	}
	u.RegisterDirty(order)
	if _, err := u.SaveContext(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	u, err := s.newUow()
	if err != nil {
		return err
	}
	// Soft-delete-capable, so the pipeline rewrites this into an update.
	u.RegisterRemoved(order)
	if _, err := u.SaveContext(ctx); err != nil {
		return err
	}
	s.log.Info("order soft-deleted", "order_id", order.ID.String())
	return nil
}
