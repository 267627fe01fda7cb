package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/orm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Crop", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).Preload("Buyer").First(&order, id).Error
	return order, notFound(err, "order", id)
}

// FindForBuyer scopes the lookup to the buyer's own orders.
func (r *OrderRepository) FindForBuyer(ctx context.Context, id, buyerID uint) (models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).Where("buyer_id = ?", buyerID).First(&order, id).Error
	return order, notFound(err, "order", id)
}

// FindForFarmer returns the order only if it contains one of the farmer's crops.
func (r *OrderRepository) FindForFarmer(ctx context.Context, id, farmerID uint) (models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).Preload("Buyer").
		Where("id IN (?)", r.farmerOrderIDs(ctx, farmerID)).
		First(&order, id).Error
	return order, notFound(err, "order", id)
}

func (r *OrderRepository) farmerOrderIDs(ctx context.Context, farmerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN crops ON crops.id = order_items.crop_id").
		Where("crops.farmer_id = ?", farmerID)
}

func (r *OrderRepository) ListForBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListForFarmer(ctx context.Context, farmerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Preload("Buyer").
		Where("id IN (?)", r.farmerOrderIDs(ctx, farmerID)).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

type OrderFilter struct {
	Status        string
	PaymentStatus string
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter, p orm.Page) ([]models.Order, orm.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var orders []models.Order
	pg, err := orm.Paginate(q, p, &orders, "created_at desc", "Buyer", "Items")
	return orders, pg, err
}

// TransitionStatus moves the order from one of from to to, reporting false
// if the order was no longer in any of from.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id uint, from []models.OrderStatus, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *OrderRepository) TransitionPayment(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	return res.RowsAffected == 1, res.Error
}

// CountByStatus and PaidRevenue feed the admin report.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, err
}

func (r *OrderRepository) PaidRevenue(ctx context.Context) (float64, error) {
	var row struct{ Total float64 }
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("payment_status = ?", models.PaymentPaid).
		Scan(&row).Error
	return row.Total, err
}

// CountForFarmer counts the distinct orders containing the farmer's crops.
func (r *OrderRepository) CountForFarmer(ctx context.Context, farmerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN (?)", r.farmerOrderIDs(ctx, farmerID)).
		Count(&n).Error
	return n, err
}

// BuyerSummary aggregates one buyer's orders.
type BuyerSummary struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	DeliveredOrders int64   `json:"delivered_orders"`
	TotalSpent      float64 `json:"total_spent"`
}

// SummaryForBuyer counts the buyer's orders by fulfilment state and sums
// what they have paid.
func (r *OrderRepository) SummaryForBuyer(ctx context.Context, buyerID uint) (BuyerSummary, error) {
	var out BuyerSummary
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_orders,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS delivered_orders,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS total_spent`,
			models.OrderPending, models.OrderDelivered, models.PaymentPaid).
		Where("buyer_id = ?", buyerID).
		Scan(&out).Error
	return out, err
}

type CropSales struct {
	Name          string
	TotalQuantity float64
	TotalRevenue  float64
}

// TopCrops ranks crops by revenue over paid orders.
func (r *OrderRepository) TopCrops(ctx context.Context, limit int) ([]CropSales, error) {
	var rows []CropSales
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("crops.name AS name, SUM(order_items.quantity) AS total_quantity, SUM(order_items.total_price) AS total_revenue").
		Joins("JOIN crops ON crops.id = order_items.crop_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.payment_status = ?", models.PaymentPaid).
		Group("crops.name").
		Order("total_revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
