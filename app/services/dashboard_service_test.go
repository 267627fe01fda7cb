package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/internal/testdb"
)

func TestDashboards(t *testing.T) {
	f := placeOrder(t)
	ctx := context.Background()
	svc := NewDashboardService(f.db)

	spare := testdb.Crop(t, f.db, f.farmer.ID, "Garlic", 90, 15)
	require.NoError(t, f.db.Model(&spare).Update("is_active", false).Error)

	consultant := testdb.User(t, f.db, models.RoleConsultant)
	testdb.Consultation(t, f.db, f.farmer.ID)
	claimed := testdb.Consultation(t, f.db, f.farmer.ID)
	_, err := NewConsultationService(f.db, nil).Claim(ctx, claimed.ID, consultant.ID)
	require.NoError(t, err)

	_, err = NewOrderService(f.db, nil).UpdatePayment(ctx, f.order.ID, models.PaymentPaid)
	require.NoError(t, err)

	t.Run("farmer", func(t *testing.T) {
		d, err := svc.Farmer(ctx, f.farmer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), d.TotalCrops)
		assert.Equal(t, int64(2), d.ActiveCrops)
		assert.Equal(t, int64(1), d.TotalOrders)
		assert.Equal(t, int64(1), d.PendingConsultations)
		require.Len(t, d.RecentOrders, 1)
		assert.Len(t, d.RecentConsultations, 2)
	})

	t.Run("buyer", func(t *testing.T) {
		d, err := svc.Buyer(ctx, f.buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), d.TotalOrders)
		assert.Equal(t, int64(1), d.PendingOrders)
		assert.Zero(t, d.DeliveredOrders)
		assert.InDelta(t, f.order.TotalAmount, d.TotalSpent, 1e-9)
		assert.Len(t, d.RecentOrders, 1)
		assert.Len(t, d.FeaturedCrops, 2)
	})

	t.Run("consultant", func(t *testing.T) {
		d, err := svc.Consultant(ctx, consultant.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), d.Total)
		assert.Equal(t, int64(1), d.InProgress)
		assert.Equal(t, int64(1), d.Available)
		require.Len(t, d.Recent, 1)
		assert.Equal(t, claimed.ID, d.Recent[0].ID)
	})

	t.Run("empty", func(t *testing.T) {
		d, err := svc.Buyer(ctx, f.farmer.ID)
		require.NoError(t, err)
		assert.Zero(t, d.TotalOrders)
		assert.NotNil(t, d.RecentOrders)
	})
}
