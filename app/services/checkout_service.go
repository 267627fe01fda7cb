package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/cart"
	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/events"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/pricing"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/metrics"
)

// CheckoutService turns a cart snapshot into an order and takes the ordered
// quantities out of stock in the same transaction.
type CheckoutService struct {
	db     *gorm.DB
	events events.Publisher
	now    func() time.Time
}

func NewCheckoutService(db *gorm.DB, pub events.Publisher) *CheckoutService {
	return &CheckoutService{db: db, events: publisherOrDiscard(pub), now: time.Now}
}

type CheckoutInput struct {
	BuyerID         uint
	Entries         []cart.Entry
	ShippingAddress string
	PaymentMethod   string
	Notes           string
}

// NewOrderNumber renders ORD-<UTC date>-<8 random uppercase hex chars>.
func NewOrderNumber(at time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), token)
}

// Checkout places the order or changes nothing. A decrement that loses a
// race with another checkout rolls the attempt back and the whole attempt is
// retried once against fresh rows.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (models.Order, error) {
	entries, err := normalizeEntries(in)
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.attempt(ctx, in, entries)
	if errorx.IsConflict(err) {
		metrics.InventoryRetries.Inc()
		logger.WithCtx(ctx).Warn("checkout: inventory conflict, retrying", "buyer_id", in.BuyerID)
		order, err = s.attempt(ctx, in, entries)
	}

	var insufficient *errorx.InsufficientInventoryError
	switch {
	case err == nil:
		metrics.Checkouts.WithLabelValues("placed").Inc()
	case errors.As(err, &insufficient):
		metrics.Checkouts.WithLabelValues("insufficient").Inc()
		return models.Order{}, err
	default:
		metrics.Checkouts.WithLabelValues("failed").Inc()
		return models.Order{}, err
	}

	logger.WithCtx(ctx).Info("order placed",
		"order_number", order.OrderNumber,
		"buyer_id", order.BuyerID,
		"items", len(order.Items),
		"total", order.TotalAmount,
	)
	s.events.Publish(ctx, events.OrderPlaced, orderEvent(order, farmerIDs(order)))
	return order, nil
}

// normalizeEntries validates the request and merges repeated crop ids,
// returning entries in crop id order.
func normalizeEntries(in CheckoutInput) ([]cart.Entry, error) {
	if in.BuyerID == 0 {
		return nil, errorx.Validation("buyer is required")
	}
	if trim(in.ShippingAddress) == "" {
		return nil, errorx.Field("shipping_address", "is required")
	}
	if len(in.Entries) == 0 {
		return nil, errorx.Validation("cart is empty")
	}

	var merged cart.Cart
	for _, e := range in.Entries {
		q := pricing.Quantity(e.Quantity)
		if e.CropID == 0 || q <= 0 {
			return nil, errorx.Field("quantity", "must be greater than 0")
		}
		merged.Set(e.CropID, pricing.AddQuantity(merged.Quantity(e.CropID), q))
	}
	return merged.Entries(), nil
}

func (s *CheckoutService) attempt(ctx context.Context, in CheckoutInput, entries []cart.Entry) (models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		crops := repositories.NewCropRepository(tx)

		ids := make([]uint, len(entries))
		for i, e := range entries {
			ids[i] = e.CropID
		}
		live, err := crops.LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		var total pricing.Accumulator
		items := make([]models.OrderItem, 0, len(entries))
		for _, e := range entries {
			crop, ok := live[e.CropID]
			if !ok || !crop.IsActive || e.Quantity > crop.QuantityAvailable {
				return insufficient(e, crop, ok)
			}

			line := pricing.LineTotal(crop.PricePerUnit, e.Quantity)
			total.Add(line)
			items = append(items, models.OrderItem{
				CropID:     crop.ID,
				Quantity:   e.Quantity,
				UnitPrice:  crop.PricePerUnit,
				TotalPrice: line,
			})
		}

		order = models.Order{
			OrderNumber:     NewOrderNumber(s.now()),
			BuyerID:         in.BuyerID,
			TotalAmount:     total.Total(),
			Status:          models.OrderPending,
			PaymentStatus:   models.PaymentPending,
			PaymentMethod:   trim(in.PaymentMethod),
			ShippingAddress: trim(in.ShippingAddress),
			Notes:           trim(in.Notes),
			Items:           items,
		}
		if err := repositories.NewOrderRepository(tx).Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, e := range entries {
			ok, err := crops.DecrementStock(ctx, e.CropID, e.Quantity)
			if err != nil {
				return fmt.Errorf("decrement crop %d: %w", e.CropID, err)
			}
			if !ok {
				return errorx.Conflict("crop %d changed during checkout", e.CropID)
			}
		}

		for i := range order.Items {
			crop := live[order.Items[i].CropID]
			order.Items[i].Crop = &crop
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func insufficient(e cart.Entry, crop models.Crop, found bool) error {
	err := &errorx.InsufficientInventoryError{CropID: e.CropID, Requested: e.Quantity}
	if !found {
		err.CropName = fmt.Sprintf("crop #%d", e.CropID)
		return err
	}
	err.CropName = crop.Name
	if crop.IsActive {
		err.Available = crop.QuantityAvailable
	}
	return err
}

func farmerIDs(order models.Order) []uint {
	var ids []uint
	for _, it := range order.Items {
		if it.Crop != nil && !slices.Contains(ids, it.Crop.FarmerID) {
			ids = append(ids, it.Crop.FarmerID)
		}
	}
	return ids
}

func orderEvent(order models.Order, farmers []uint) events.OrderEvent {
	return events.OrderEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		BuyerID:       order.BuyerID,
		FarmerIDs:     farmers,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount,
	}
}
