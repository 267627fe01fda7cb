package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/cart"
	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/events"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/internal/testdb"
)

type orderFixture struct {
	db     *gorm.DB
	farmer models.User
	buyer  models.User
	crops  []models.Crop
	order  models.Order
}

func placeOrder(t *testing.T) orderFixture {
	t.Helper()

	db := testdb.Open(t)
	f := orderFixture{
		db:     db,
		farmer: testdb.User(t, db, models.RoleFarmer),
		buyer:  testdb.User(t, db, models.RoleBuyer),
	}
	f.crops = []models.Crop{
		testdb.Crop(t, db, f.farmer.ID, "Tomato", 18, 50),
		testdb.Crop(t, db, f.farmer.ID, "Brinjal", 22.5, 20),
	}

	order, err := NewCheckoutService(db, nil).Checkout(context.Background(), CheckoutInput{
		BuyerID: f.buyer.ID,
		Entries: []cart.Entry{
			{CropID: f.crops[0].ID, Quantity: 12.5},
			{CropID: f.crops[1].ID, Quantity: 3},
		},
		ShippingAddress: "Pune",
	})
	require.NoError(t, err)
	f.order = order
	return f
}

func (f orderFixture) buyerActor() Actor { return Actor{UserID: f.buyer.ID, Role: models.RoleBuyer} }

func TestOrderCancel_RestoresStockExactly(t *testing.T) {
	f := placeOrder(t)
	rec := &recorder{}
	svc := NewOrderService(f.db, rec)

	assert.Equal(t, 37.5, testdb.Stock(t, f.db, f.crops[0].ID))

	order, err := svc.Cancel(context.Background(), f.order.ID, f.buyerActor())
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)

	assert.Equal(t, 50.0, testdb.Stock(t, f.db, f.crops[0].ID))
	assert.Equal(t, 20.0, testdb.Stock(t, f.db, f.crops[1].ID))
	assert.Equal(t, []string{events.OrderCancelled}, rec.Names())
	cancelled, ok := rec.values[0].(events.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, []uint{f.farmer.ID}, cancelled.FarmerIDs)
}

func TestOrderCancel_FractionalQuantitiesRoundTrip(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	saffron := testdb.Crop(t, db, farmer.ID, "Saffron", 900, 0.3)

	checkout := NewCheckoutService(db, nil)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	var placed []models.Order
	for _, q := range []float64{0.1, 0.2} {
		o, err := checkout.Checkout(ctx, CheckoutInput{
			BuyerID:         buyer.ID,
			Entries:         []cart.Entry{{CropID: saffron.ID, Quantity: q}},
			ShippingAddress: "Pune",
		})
		require.NoError(t, err)
		placed = append(placed, o)
	}
	assert.Equal(t, 0.0, testdb.Stock(t, db, saffron.ID))

	actor := Actor{UserID: buyer.ID, Role: models.RoleBuyer}
	for _, o := range placed {
		_, err := orders.Cancel(ctx, o.ID, actor)
		require.NoError(t, err)
	}
	assert.Equal(t, 0.3, testdb.Stock(t, db, saffron.ID))
}

func TestOrderCancel_Twice(t *testing.T) {
	f := placeOrder(t)
	svc := NewOrderService(f.db, nil)

	_, err := svc.Cancel(context.Background(), f.order.ID, f.buyerActor())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), f.order.ID, f.buyerActor())
	var ise *errorx.InvalidStateError
	require.True(t, errors.As(err, &ise), "got %v", err)
	assert.Equal(t, string(models.OrderCancelled), ise.State)

	assert.Equal(t, 50.0, testdb.Stock(t, f.db, f.crops[0].ID))
	assert.Equal(t, 20.0, testdb.Stock(t, f.db, f.crops[1].ID))
}

func TestOrderCancel_ShippedOrderRefused(t *testing.T) {
	f := placeOrder(t)
	svc := NewOrderService(f.db, nil)
	farmer := Actor{UserID: f.farmer.ID, Role: models.RoleFarmer}

	_, err := svc.UpdateStatus(context.Background(), f.order.ID, farmer, models.OrderShipped)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), f.order.ID, f.buyerActor())
	var ise *errorx.InvalidStateError
	require.True(t, errors.As(err, &ise), "got %v", err)
	assert.Equal(t, 37.5, testdb.Stock(t, f.db, f.crops[0].ID))
}

func TestOrderCancel_Scoping(t *testing.T) {
	f := placeOrder(t)
	svc := NewOrderService(f.db, nil)
	other := testdb.User(t, f.db, models.RoleBuyer)

	_, err := svc.Cancel(context.Background(), f.order.ID, Actor{UserID: other.ID, Role: models.RoleBuyer})
	assert.True(t, errorx.IsNotFound(err), "got %v", err)

	_, err = svc.Cancel(context.Background(), f.order.ID, Actor{UserID: f.farmer.ID, Role: models.RoleFarmer})
	assert.True(t, errorx.IsNotFound(err), "got %v", err)

	admin := testdb.User(t, f.db, models.RoleAdmin)
	order, err := svc.Cancel(context.Background(), f.order.ID, Actor{UserID: admin.ID, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
}

func TestOrderCancel_RestoresDeletedCrop(t *testing.T) {
	f := placeOrder(t)
	require.NoError(t, f.db.Delete(&models.Crop{}, f.crops[1].ID).Error)

	_, err := NewOrderService(f.db, nil).Cancel(context.Background(), f.order.ID, f.buyerActor())
	require.NoError(t, err)
	assert.Equal(t, 20.0, testdb.Stock(t, f.db, f.crops[1].ID))
}

func TestOrderUpdateStatus(t *testing.T) {
	f := placeOrder(t)
	svc := NewOrderService(f.db, nil)
	farmer := Actor{UserID: f.farmer.ID, Role: models.RoleFarmer}
	ctx := context.Background()

	order, err := svc.UpdateStatus(ctx, f.order.ID, farmer, models.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)

	_, err = svc.UpdateStatus(ctx, f.order.ID, farmer, models.OrderPending)
	var ise *errorx.InvalidStateError
	assert.True(t, errors.As(err, &ise), "backwards move: %v", err)

	_, err = svc.UpdateStatus(ctx, f.order.ID, farmer, models.OrderCancelled)
	var verr *errorx.ValidationError
	assert.True(t, errors.As(err, &verr), "cancel via status: %v", err)

	_, err = svc.UpdateStatus(ctx, f.order.ID, farmer, models.OrderStatus("lost"))
	assert.True(t, errors.As(err, &verr), "unknown status: %v", err)

	stranger := testdb.User(t, f.db, models.RoleFarmer)
	_, err = svc.UpdateStatus(ctx, f.order.ID, Actor{UserID: stranger.ID, Role: models.RoleFarmer}, models.OrderShipped)
	assert.True(t, errorx.IsNotFound(err), "foreign farmer: %v", err)

	_, err = svc.UpdateStatus(ctx, f.order.ID, f.buyerActor(), models.OrderShipped)
	assert.True(t, errorx.IsNotFound(err), "buyer: %v", err)
}

func TestOrderUpdatePayment(t *testing.T) {
	f := placeOrder(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	order, err := svc.UpdatePayment(ctx, f.order.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)

	_, err = svc.UpdatePayment(ctx, f.order.ID, models.PaymentFailed)
	var ise *errorx.InvalidStateError
	assert.True(t, errors.As(err, &ise), "got %v", err)

	order, err = svc.UpdatePayment(ctx, f.order.ID, models.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, order.PaymentStatus)
}

func TestOrderLists(t *testing.T) {
	f := placeOrder(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	mine, err := svc.ListForBuyer(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 2)

	farmerOrders, err := svc.ListForFarmer(ctx, f.farmer.ID)
	require.NoError(t, err)
	assert.Len(t, farmerOrders, 1)

	detail, err := svc.Detail(ctx, f.order.ID, Actor{UserID: f.farmer.ID, Role: models.RoleFarmer})
	require.NoError(t, err)
	assert.Equal(t, f.order.OrderNumber, detail.OrderNumber)
}
