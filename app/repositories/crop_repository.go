package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/pricing"
	"github.com/krishi360/krishi/pkg/orm"
)

type CropRepository struct {
	db *gorm.DB
}

func NewCropRepository(db *gorm.DB) *CropRepository {
	return &CropRepository{db: db}
}

func (r *CropRepository) FindByID(ctx context.Context, id uint) (models.Crop, error) {
	var crop models.Crop
	err := r.db.WithContext(ctx).First(&crop, id).Error
	return crop, notFound(err, "crop", id)
}

// FindActive returns the crop only while it is listed.
func (r *CropRepository) FindActive(ctx context.Context, id uint) (models.Crop, error) {
	var crop models.Crop
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Where("is_active = ?", true).
		First(&crop, id).Error
	return crop, notFound(err, "crop", id)
}

// FindOwned scopes the lookup to one farmer's listings.
func (r *CropRepository) FindOwned(ctx context.Context, id, farmerID uint) (models.Crop, error) {
	var crop models.Crop
	err := r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&crop, id).Error
	return crop, notFound(err, "crop", id)
}

// LockForUpdate re-reads the given crops with a row lock, in id order so
// concurrent transactions always acquire locks in the same sequence. On
// dialects without SELECT ... FOR UPDATE the conditional decrement is the
// only guard.
func (r *CropRepository) LockForUpdate(ctx context.Context, ids []uint) (map[uint]models.Crop, error) {
	q := r.db.WithContext(ctx)
	switch r.db.Dialector.Name() {
	case "postgres", "mysql":
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var crops []models.Crop
	err := q.
		Where("id IN ?", ids).
		Order("id").
		Find(&crops).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]models.Crop, len(crops))
	for _, c := range crops {
		out[c.ID] = c
	}
	return out, nil
}

// DecrementStock subtracts qty only if the crop is active and still holds at
// least qty. It reports false when the guard failed. The result is rounded
// to the quantity scale so dialects storing REAL never accumulate drift.
func (r *CropRepository) DecrementStock(ctx context.Context, id uint, qty float64) (bool, error) {
	qty = pricing.Quantity(qty)
	res := r.db.WithContext(ctx).Model(&models.Crop{}).
		Where("id = ? AND is_active = ? AND quantity_available >= ?", id, true, qty).
		UpdateColumn("quantity_available", gorm.Expr("ROUND(quantity_available - ?, ?)", qty, pricing.QuantityPlaces))
	return res.RowsAffected == 1, res.Error
}

// RestoreStock adds qty back. Deactivated crops are restored too; soft
// deleted ones are matched with Unscoped so no stock is lost.
func (r *CropRepository) RestoreStock(ctx context.Context, id uint, qty float64) error {
	return r.db.WithContext(ctx).Unscoped().Model(&models.Crop{}).
		Where("id = ?", id).
		UpdateColumn("quantity_available",
			gorm.Expr("ROUND(quantity_available + ?, ?)", pricing.Quantity(qty), pricing.QuantityPlaces)).Error
}

func (r *CropRepository) Create(ctx context.Context, crop *models.Crop) error {
	return r.db.WithContext(ctx).Create(crop).Error
}

// UpdateColumns writes only the named columns.
func (r *CropRepository) UpdateColumns(ctx context.Context, id uint, cols map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Crop{}).Where("id = ?", id).Updates(cols).Error
}

func (r *CropRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&models.Crop{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// CatalogFilter narrows the buyer-facing listing of active crops.
type CatalogFilter struct {
	Search   string
	Location string
	Organic  *bool
	Limit    int
}

func (r *CropRepository) Catalog(ctx context.Context, f CatalogFilter) ([]models.Crop, error) {
	q := r.db.WithContext(ctx).
		Preload("Farmer").
		Where("is_active = ? AND quantity_available > 0", true).
		Order("created_at desc")
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(variety) LIKE ? OR LOWER(description) LIKE ?", s, s, s)
	}
	if f.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", like(f.Location))
	}
	if f.Organic != nil {
		q = q.Where("is_organic = ?", *f.Organic)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var crops []models.Crop
	return crops, q.Find(&crops).Error
}

func (r *CropRepository) ListByFarmer(ctx context.Context, farmerID uint) ([]models.Crop, error) {
	var crops []models.Crop
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at desc").
		Find(&crops).Error
	return crops, err
}

func (r *CropRepository) List(ctx context.Context, p orm.Page) ([]models.Crop, orm.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Crop{})
	var crops []models.Crop
	pg, err := orm.Paginate(q, p, &crops, "created_at desc", "Farmer")
	return crops, pg, err
}

// CountForFarmer returns how many listings the farmer has and how many of
// them are active.
func (r *CropRepository) CountForFarmer(ctx context.Context, farmerID uint) (total, active int64, err error) {
	var row struct {
		Total  int64
		Active int64
	}
	err = r.db.WithContext(ctx).Model(&models.Crop{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_active = ? THEN 1 ELSE 0 END), 0) AS active", true).
		Where("farmer_id = ?", farmerID).
		Scan(&row).Error
	return row.Total, row.Active, err
}

func (r *CropRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Crop{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var n int64
	return n, q.Count(&n).Error
}
