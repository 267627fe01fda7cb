package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi360/krishi/app/cart"
	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/internal/testdb"
)

func TestCartAdd(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	crop := testdb.Crop(t, db, farmer.ID, "Banana", 45, 10)
	svc := NewCartService(db)
	ctx := context.Background()
	c := cart.New()

	require.NoError(t, svc.Add(ctx, c, crop.ID, 4))
	require.NoError(t, svc.Add(ctx, c, crop.ID, 5))
	assert.Equal(t, 9.0, c.Quantity(crop.ID))

	// The accumulated quantity is what must fit the stock.
	err := svc.Add(ctx, c, crop.ID, 2)
	var ie *errorx.InsufficientInventoryError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, 11.0, ie.Requested)
	assert.Equal(t, 10.0, ie.Available)
	assert.Equal(t, 9.0, c.Quantity(crop.ID))

	var verr *errorx.ValidationError
	assert.True(t, errors.As(svc.Add(ctx, c, crop.ID, 0), &verr))
	assert.True(t, errorx.IsNotFound(svc.Add(ctx, c, 4242, 1)))
}

func TestCartAdd_FractionalQuantities(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	crop := testdb.Crop(t, db, farmer.ID, "Saffron", 900, 0.3)
	svc := NewCartService(db)
	ctx := context.Background()
	c := cart.New()

	require.NoError(t, svc.Add(ctx, c, crop.ID, 0.1))
	require.NoError(t, svc.Add(ctx, c, crop.ID, 0.2))
	assert.Equal(t, 0.3, c.Quantity(crop.ID))

	require.NoError(t, svc.Update(ctx, c, crop.ID, 0.12345))
	assert.Equal(t, 0.123, c.Quantity(crop.ID))
}

func TestCartUpdateAndRemove(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	crop := testdb.Crop(t, db, farmer.ID, "Papaya", 30, 8)
	svc := NewCartService(db)
	ctx := context.Background()
	c := cart.New()

	require.NoError(t, svc.Update(ctx, c, crop.ID, 8))
	assert.Equal(t, 8.0, c.Quantity(crop.ID))

	var ie *errorx.InsufficientInventoryError
	assert.True(t, errors.As(svc.Update(ctx, c, crop.ID, 8.5), &ie))

	require.NoError(t, svc.Update(ctx, c, crop.ID, 0))
	assert.True(t, c.IsEmpty())

	require.NoError(t, svc.Add(ctx, c, crop.ID, 1))
	svc.Remove(c, crop.ID)
	svc.Remove(c, crop.ID)
	assert.True(t, c.IsEmpty())
}

func TestCartMaterialize_SkipsUnlistedCrops(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	listed := testdb.Crop(t, db, farmer.ID, "Carrot", 12.5, 100)
	inactive := testdb.Crop(t, db, farmer.ID, "Radish", 10, 100)
	deleted := testdb.Crop(t, db, farmer.ID, "Beet", 10, 100)
	svc := NewCartService(db)
	ctx := context.Background()

	c := cart.New()
	c.Set(listed.ID, 2.5)
	c.Set(inactive.ID, 1)
	c.Set(deleted.ID, 1)
	require.NoError(t, db.Model(&models.Crop{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	require.NoError(t, db.Delete(&models.Crop{}, deleted.ID).Error)

	view, err := svc.View(ctx, c)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, listed.ID, view.Lines[0].Crop.ID)
	assert.Equal(t, 31.25, view.Lines[0].LineTotal)
	assert.Equal(t, 31.25, view.Total)

	// Skipped entries stay in the cart.
	assert.Equal(t, 3, c.Len())
}

func TestCartMaterialize_StopsEarly(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	svc := NewCartService(db)

	c := cart.New()
	for _, name := range []string{"Peas", "Beans", "Corn"} {
		crop := testdb.Crop(t, db, farmer.ID, name, 10, 10)
		c.Set(crop.ID, 1)
	}

	seen := 0
	for _, err := range svc.Materialize(context.Background(), c) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestCartView_Empty(t *testing.T) {
	db := testdb.Open(t)
	view, err := NewCartService(db).View(context.Background(), cart.New())
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.Total)
}
