package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/pricing"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/orm"
)

const dateLayout = "2006-01-02"

type CropService struct {
	crops *repositories.CropRepository
}

func NewCropService(db *gorm.DB) *CropService {
	return &CropService{crops: repositories.NewCropRepository(db)}
}

// CropInput is a farmer's listing form. On update, nil fields are left as
// they are.
type CropInput struct {
	Name              *string  `json:"name"               validate:"omitempty,min=1,max=100"`
	Variety           *string  `json:"variety"            validate:"omitempty,max=100"`
	Description       *string  `json:"description"`
	PricePerUnit      *float64 `json:"price_per_unit"`
	Unit              *string  `json:"unit"`
	QuantityAvailable *float64 `json:"quantity_available"`
	HarvestDate       *string  `json:"harvest_date"`
	Location          *string  `json:"location"           validate:"omitempty,max=200"`
	IsOrganic         *bool    `json:"is_organic"`
	IsActive          *bool    `json:"is_active"`
}

// apply copies the set fields onto crop and checks the result.
func (in CropInput) apply(crop *models.Crop) error {
	if in.Name != nil {
		crop.Name = trim(*in.Name)
	}
	if in.Variety != nil {
		crop.Variety = trim(*in.Variety)
	}
	if in.Description != nil {
		crop.Description = trim(*in.Description)
	}
	if in.PricePerUnit != nil {
		crop.PricePerUnit = *in.PricePerUnit
	}
	if in.Unit != nil {
		crop.Unit = strings.ToLower(trim(*in.Unit))
	}
	if in.QuantityAvailable != nil {
		crop.QuantityAvailable = pricing.Quantity(*in.QuantityAvailable)
	}
	if in.HarvestDate != nil {
		if d := trim(*in.HarvestDate); d == "" {
			crop.HarvestDate = nil
		} else {
			t, err := time.Parse(dateLayout, d)
			if err != nil {
				return errorx.Field("harvest_date", "must be a date formatted as YYYY-MM-DD")
			}
			crop.HarvestDate = &t
		}
	}
	if in.Location != nil {
		crop.Location = trim(*in.Location)
	}
	if in.IsOrganic != nil {
		crop.IsOrganic = *in.IsOrganic
	}
	if in.IsActive != nil {
		crop.IsActive = *in.IsActive
	}

	switch {
	case crop.Name == "":
		return errorx.Field("name", "is required")
	case crop.PricePerUnit <= 0:
		return errorx.Field("price_per_unit", "must be greater than 0")
	case crop.QuantityAvailable < 0:
		return errorx.Field("quantity_available", "must not be negative")
	case !models.ValidUnit(crop.Unit):
		return errorx.Field("unit", "must be one of: "+strings.Join(models.Units, ", "))
	case crop.Location == "":
		return errorx.Field("location", "is required")
	}
	return nil
}

func (s *CropService) Create(ctx context.Context, farmerID uint, in CropInput) (models.Crop, error) {
	crop := models.Crop{FarmerID: farmerID, IsActive: true}
	if err := in.apply(&crop); err != nil {
		return models.Crop{}, err
	}
	if err := s.crops.Create(ctx, &crop); err != nil {
		return models.Crop{}, err
	}

	logger.WithCtx(ctx).Info("crop listed", "crop_id", crop.ID, "farmer_id", farmerID)
	return crop, nil
}

// Update edits the farmer's own listing, including restocking by setting
// quantity_available. Only the submitted columns are written, so an edit
// never overwrites stock a concurrent checkout has just decremented.
func (s *CropService) Update(ctx context.Context, farmerID, cropID uint, in CropInput) (models.Crop, error) {
	crop, err := s.crops.FindOwned(ctx, cropID, farmerID)
	if err != nil {
		return crop, err
	}
	if err := in.apply(&crop); err != nil {
		return models.Crop{}, err
	}

	cols := in.columns(crop)
	if len(cols) == 0 {
		return crop, nil
	}
	if err := s.crops.UpdateColumns(ctx, cropID, cols); err != nil {
		return models.Crop{}, err
	}
	return s.crops.FindByID(ctx, cropID)
}

func (in CropInput) columns(crop models.Crop) map[string]any {
	cols := map[string]any{}
	set := func(ok bool, col string, v any) {
		if ok {
			cols[col] = v
		}
	}
	set(in.Name != nil, "name", crop.Name)
	set(in.Variety != nil, "variety", crop.Variety)
	set(in.Description != nil, "description", crop.Description)
	set(in.PricePerUnit != nil, "price_per_unit", crop.PricePerUnit)
	set(in.Unit != nil, "unit", crop.Unit)
	set(in.QuantityAvailable != nil, "quantity_available", crop.QuantityAvailable)
	set(in.HarvestDate != nil, "harvest_date", crop.HarvestDate)
	set(in.Location != nil, "location", crop.Location)
	set(in.IsOrganic != nil, "is_organic", crop.IsOrganic)
	set(in.IsActive != nil, "is_active", crop.IsActive)
	return cols
}

func (s *CropService) Deactivate(ctx context.Context, farmerID, cropID uint) error {
	if _, err := s.crops.FindOwned(ctx, cropID, farmerID); err != nil {
		return err
	}
	return s.crops.SetActive(ctx, cropID, false)
}

func (s *CropService) ListOwn(ctx context.Context, farmerID uint) ([]models.Crop, error) {
	return s.crops.ListByFarmer(ctx, farmerID)
}

func (s *CropService) Catalog(ctx context.Context, f repositories.CatalogFilter) ([]models.Crop, error) {
	return s.crops.Catalog(ctx, f)
}

// Detail is the buyer view: inactive listings are not found.
func (s *CropService) Detail(ctx context.Context, cropID uint) (models.Crop, error) {
	return s.crops.FindActive(ctx, cropID)
}

func (s *CropService) AdminList(ctx context.Context, p orm.Page) ([]models.Crop, orm.Pagination, error) {
	return s.crops.List(ctx, p)
}

// ToggleActive flips the listing's active flag and returns the new value.
func (s *CropService) ToggleActive(ctx context.Context, cropID uint) (bool, error) {
	crop, err := s.crops.FindByID(ctx, cropID)
	if err != nil {
		return false, err
	}
	if err := s.crops.SetActive(ctx, cropID, !crop.IsActive); err != nil {
		return false, err
	}
	return !crop.IsActive, nil
}
