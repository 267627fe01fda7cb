package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/events"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/metrics"
	"github.com/krishi360/krishi/pkg/orm"
)

type OrderService struct {
	db     *gorm.DB
	orders *repositories.OrderRepository
	events events.Publisher
}

func NewOrderService(db *gorm.DB, pub events.Publisher) *OrderService {
	return &OrderService{
		db:     db,
		orders: repositories.NewOrderRepository(db),
		events: publisherOrDiscard(pub),
	}
}

// find resolves the order as the actor may see it: admins see all orders,
// buyers their own, farmers those containing their crops.
func (s *OrderService) find(ctx context.Context, orderID uint, actor Actor) (models.Order, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return s.orders.FindByID(ctx, orderID)
	case models.RoleBuyer:
		return s.orders.FindForBuyer(ctx, orderID, actor.UserID)
	case models.RoleFarmer:
		return s.orders.FindForFarmer(ctx, orderID, actor.UserID)
	}
	return models.Order{}, errorx.NotFound("order", orderID)
}

// Cancel flips a pending or confirmed order to cancelled and puts every
// item's quantity back into stock, all in one transaction. Buyers may cancel
// their own orders, admins any order.
func (s *OrderService) Cancel(ctx context.Context, orderID uint, actor Actor) (models.Order, error) {
	if actor.Role != models.RoleBuyer && !actor.IsAdmin() {
		return models.Order{}, errorx.NotFound("order", orderID)
	}

	order, err := s.find(ctx, orderID, actor)
	if err != nil {
		return order, err
	}
	if !order.Status.Cancellable() {
		return order, errorx.InvalidState("order", string(order.Status), "order can no longer be cancelled")
	}

	items := slices.Clone(order.Items)
	slices.SortFunc(items, func(a, b models.OrderItem) int { return cmp.Compare(a.CropID, b.CropID) })

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repositories.NewOrderRepository(tx).TransitionStatus(ctx, order.ID,
			[]models.OrderStatus{models.OrderPending, models.OrderConfirmed}, models.OrderCancelled)
		if err != nil {
			return err
		}
		if !ok {
			var current models.Order
			if err := tx.Select("status").First(&current, order.ID).Error; err != nil {
				return err
			}
			return errorx.InvalidState("order", string(current.Status), "order can no longer be cancelled")
		}

		crops := repositories.NewCropRepository(tx)
		for _, it := range items {
			if err := crops.RestoreStock(ctx, it.CropID, it.Quantity); err != nil {
				return fmt.Errorf("restore crop %d: %w", it.CropID, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	order.Status = models.OrderCancelled
	metrics.OrderCancellations.Inc()
	logger.WithCtx(ctx).Info("order cancelled",
		"order_number", order.OrderNumber,
		"actor_id", actor.UserID,
		"actor_role", actor.Role,
	)
	s.events.Publish(ctx, events.OrderCancelled, orderEvent(order, farmerIDs(order)))
	return order, nil
}

// UpdateStatus advances fulfilment. Only forward moves along
// pending, confirmed, shipped, delivered are allowed; cancellation goes
// through Cancel so stock is restored.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, actor Actor, next models.OrderStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, errorx.Field("status", "is not a known order status")
	}
	if next == models.OrderCancelled {
		return models.Order{}, errorx.Field("status", "orders are cancelled through the cancel action")
	}
	if actor.Role != models.RoleFarmer && !actor.IsAdmin() {
		return models.Order{}, errorx.NotFound("order", orderID)
	}

	order, err := s.find(ctx, orderID, actor)
	if err != nil {
		return order, err
	}
	if !order.Status.CanAdvanceTo(next) {
		return order, errorx.InvalidState("order", string(order.Status), "cannot move order to "+string(next))
	}

	ok, err := s.orders.TransitionStatus(ctx, order.ID, []models.OrderStatus{order.Status}, next)
	if err != nil {
		return order, err
	}
	if !ok {
		return order, errorx.Conflict("order %s was changed by another request", order.OrderNumber)
	}

	prev := order.Status
	order.Status = next
	logger.WithCtx(ctx).Info("order status changed",
		"order_number", order.OrderNumber, "from", prev, "to", next, "actor_id", actor.UserID)
	s.events.Publish(ctx, events.OrderStatusChanged, orderEvent(order, nil))
	return order, nil
}

// UpdatePayment moves payment_status: pending to paid or failed, paid to refunded.
func (s *OrderService) UpdatePayment(ctx context.Context, orderID uint, next models.PaymentStatus) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return order, err
	}
	if !order.PaymentStatus.CanMoveTo(next) {
		return order, errorx.InvalidState("payment", string(order.PaymentStatus), "cannot move payment to "+string(next))
	}

	ok, err := s.orders.TransitionPayment(ctx, order.ID, order.PaymentStatus, next)
	if err != nil {
		return order, err
	}
	if !ok {
		return order, errorx.Conflict("order %s was changed by another request", order.OrderNumber)
	}

	order.PaymentStatus = next
	s.events.Publish(ctx, events.OrderPaymentChanged, orderEvent(order, nil))
	return order, nil
}

func (s *OrderService) Detail(ctx context.Context, orderID uint, actor Actor) (models.Order, error) {
	return s.find(ctx, orderID, actor)
}

func (s *OrderService) ListForBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	return s.orders.ListForBuyer(ctx, buyerID)
}

func (s *OrderService) ListForFarmer(ctx context.Context, farmerID uint) ([]models.Order, error) {
	return s.orders.ListForFarmer(ctx, farmerID)
}

func (s *OrderService) AdminList(ctx context.Context, f repositories.OrderFilter, p orm.Page) ([]models.Order, orm.Pagination, error) {
	return s.orders.List(ctx, f, p)
}
