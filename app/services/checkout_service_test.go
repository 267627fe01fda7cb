package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/cart"
	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/internal/testdb"
)

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCheckout_PlacesOrderAndDecrementsStock(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	onion := testdb.Crop(t, db, farmer.ID, "Onion", 12.5, 10)
	mango := testdb.Crop(t, db, farmer.ID, "Mango", 40, 5)

	svc := NewCheckoutService(db, nil)
	order, err := svc.Checkout(context.Background(), CheckoutInput{
		BuyerID:         buyer.ID,
		Entries:         []cart.Entry{{CropID: mango.ID, Quantity: 1}, {CropID: onion.ID, Quantity: 2.5}},
		ShippingAddress: "12 Market Road, Pune",
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), order.OrderNumber)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.InDelta(t, 71.25, order.TotalAmount, 1e-9)

	assert.InDelta(t, 7.5, testdb.Stock(t, db, onion.ID), 1e-9)
	assert.InDelta(t, 4, testdb.Stock(t, db, mango.ID), 1e-9)
}

func TestCheckout_AllOrNothing(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	onion := testdb.Crop(t, db, farmer.ID, "Onion", 12.5, 10)
	mango := testdb.Crop(t, db, farmer.ID, "Mango", 40, 5)

	_, err := NewCheckoutService(db, nil).Checkout(context.Background(), CheckoutInput{
		BuyerID:         buyer.ID,
		Entries:         []cart.Entry{{CropID: onion.ID, Quantity: 3}, {CropID: mango.ID, Quantity: 6}},
		ShippingAddress: "12 Market Road, Pune",
	})

	var insufficient *errorx.InsufficientInventoryError
	require.True(t, errors.As(err, &insufficient), "got %v", err)
	assert.Equal(t, mango.ID, insufficient.CropID)
	assert.Equal(t, "Mango", insufficient.CropName)
	assert.Equal(t, 6.0, insufficient.Requested)
	assert.Equal(t, 5.0, insufficient.Available)

	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Zero(t, countRows(t, db, &models.OrderItem{}))
	assert.Equal(t, 10.0, testdb.Stock(t, db, onion.ID))
	assert.Equal(t, 5.0, testdb.Stock(t, db, mango.ID))
}

func TestCheckout_FractionalStockSellsOut(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	saffron := testdb.Crop(t, db, farmer.ID, "Saffron", 900, 0.3)

	svc := NewCheckoutService(db, nil)
	for _, q := range []float64{0.1, 0.2} {
		_, err := svc.Checkout(context.Background(), CheckoutInput{
			BuyerID:         buyer.ID,
			Entries:         []cart.Entry{{CropID: saffron.ID, Quantity: q}},
			ShippingAddress: "Pune",
		})
		require.NoError(t, err, "buying %v", q)
	}
	assert.Equal(t, 0.0, testdb.Stock(t, db, saffron.ID))

	// Repeated entries merge at the quantity scale: 0.1 + 0.2 fits 0.3.
	ginger := testdb.Crop(t, db, farmer.ID, "Ginger", 120, 0.3)
	order, err := svc.Checkout(context.Background(), CheckoutInput{
		BuyerID:         buyer.ID,
		Entries:         []cart.Entry{{CropID: ginger.ID, Quantity: 0.1}, {CropID: ginger.ID, Quantity: 0.2}},
		ShippingAddress: "Pune",
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 0.3, order.Items[0].Quantity)
	assert.Equal(t, 36.0, order.TotalAmount)

	_, err = svc.Checkout(context.Background(), CheckoutInput{
		BuyerID:         buyer.ID,
		Entries:         []cart.Entry{{CropID: ginger.ID, Quantity: 0.0004}},
		ShippingAddress: "Pune",
	})
	var verr *errorx.ValidationError
	assert.True(t, errors.As(err, &verr), "got %v", err)
}

func TestCheckout_InactiveOrDeletedCropFails(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	inactive := testdb.Crop(t, db, farmer.ID, "Okra", 20, 10)
	deleted := testdb.Crop(t, db, farmer.ID, "Chili", 20, 10)
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)
	require.NoError(t, db.Delete(&deleted).Error)

	svc := NewCheckoutService(db, nil)
	for _, id := range []uint{inactive.ID, deleted.ID} {
		_, err := svc.Checkout(context.Background(), CheckoutInput{
			BuyerID:         buyer.ID,
			Entries:         []cart.Entry{{CropID: id, Quantity: 1}},
			ShippingAddress: "Pune",
		})
		var insufficient *errorx.InsufficientInventoryError
		require.True(t, errors.As(err, &insufficient), "got %v", err)
		assert.Equal(t, id, insufficient.CropID)
		assert.Zero(t, insufficient.Available)
	}
	assert.Zero(t, countRows(t, db, &models.Order{}))
}

func TestCheckout_Validation(t *testing.T) {
	db := testdb.Open(t)
	svc := NewCheckoutService(db, nil)

	cases := map[string]CheckoutInput{
		"empty cart":        {BuyerID: 1, ShippingAddress: "Pune"},
		"no address":        {BuyerID: 1, Entries: []cart.Entry{{CropID: 1, Quantity: 1}}},
		"zero quantity":     {BuyerID: 1, ShippingAddress: "Pune", Entries: []cart.Entry{{CropID: 1, Quantity: 0}}},
		"negative quantity": {BuyerID: 1, ShippingAddress: "Pune", Entries: []cart.Entry{{CropID: 1, Quantity: -2}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), in)
			var verr *errorx.ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestCheckout_UnitPriceFrozen(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	wheat := testdb.Crop(t, db, farmer.ID, "Wheat", 24.69, 100)
	rice := testdb.Crop(t, db, farmer.ID, "Rice", 0.1, 100)

	placed, err := NewCheckoutService(db, nil).Checkout(context.Background(), CheckoutInput{
		BuyerID:         buyer.ID,
		Entries:         []cart.Entry{{CropID: wheat.ID, Quantity: 2.5}, {CropID: rice.ID, Quantity: 3}},
		ShippingAddress: "Pune",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Crop{}).Where("id = ?", wheat.ID).Update("price_per_unit", 99).Error)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, placed.ID).Error)

	sum := 0.0
	for _, it := range order.Items {
		sum += it.TotalPrice
		if it.CropID == wheat.ID {
			assert.Equal(t, 24.69, it.UnitPrice)
			assert.Equal(t, 61.73, it.TotalPrice)
		}
	}
	assert.InDelta(t, order.TotalAmount, sum, 1e-9)
	assert.Equal(t, 62.03, order.TotalAmount)
}

func TestCheckout_ConcurrentOrdersNeverOversell(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyerA := testdb.User(t, db, models.RoleBuyer)
	buyerB := testdb.User(t, db, models.RoleBuyer)
	crop := testdb.Crop(t, db, farmer.ID, "Potato", 30, 15)

	svc := NewCheckoutService(db, nil)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, buyer := range []models.User{buyerA, buyerB} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), CheckoutInput{
				BuyerID:         buyer.ID,
				Entries:         []cart.Entry{{CropID: crop.ID, Quantity: 10}},
				ShippingAddress: "Pune",
			})
		}()
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		var ie *errorx.InsufficientInventoryError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &ie):
			insufficient++
			assert.Equal(t, 5.0, ie.Available)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 5.0, testdb.Stock(t, db, crop.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Order{}))
}

// A decrement that loses its guard rolls the attempt back and the checkout
// is retried once against fresh rows.
func TestCheckout_RetriesOnceAfterConflict(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	buyer := testdb.User(t, db, models.RoleBuyer)
	crop := testdb.Crop(t, db, farmer.ID, "Garlic", 80, 10)

	attempts := 0
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:steal_stock", func(tx *gorm.DB) {
		if tx.Statement.Table != "orders" {
			return
		}
		attempts++
		if attempts == 1 {
			// Another writer drains the crop between the re-read and the decrement.
			tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE crops SET quantity_available = 1 WHERE id = ?", crop.ID)
		}
	}))

	order, err := NewCheckoutService(db, nil).Checkout(context.Background(), CheckoutInput{
		BuyerID:         buyer.ID,
		Entries:         []cart.Entry{{CropID: crop.ID, Quantity: 4}},
		ShippingAddress: "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NotZero(t, order.ID)
	assert.Equal(t, 6.0, testdb.Stock(t, db, crop.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Order{}))
}

func TestNewOrderNumber_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := NewOrderNumber(time.Now())
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
}
