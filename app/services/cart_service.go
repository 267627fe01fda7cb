package services

import (
	"context"
	"iter"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/cart"
	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/pricing"
	"github.com/krishi360/krishi/app/repositories"
)

// CartService validates cart mutations against the crops' current stock.
// Those checks read a snapshot and are advisory; checkout re-validates.
type CartService struct {
	crops *repositories.CropRepository
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{crops: repositories.NewCropRepository(db)}
}

// CartLine is one materialized cart entry priced at the crop's current price.
type CartLine struct {
	Crop      models.Crop `json:"crop"`
	Quantity  float64     `json:"quantity"`
	LineTotal float64     `json:"line_total"`
}

// CartView is the cart as shown to the buyer.
type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

// Add increases the entry for cropID by quantity. The resulting total must
// fit the crop's current availability.
func (s *CartService) Add(ctx context.Context, c *cart.Cart, cropID uint, quantity float64) error {
	quantity = pricing.Quantity(quantity)
	if quantity <= 0 {
		return errorx.Field("quantity", "must be greater than 0")
	}

	crop, err := s.crops.FindActive(ctx, cropID)
	if err != nil {
		return err
	}

	want := pricing.AddQuantity(c.Quantity(cropID), quantity)
	if want > crop.QuantityAvailable {
		return &errorx.InsufficientInventoryError{
			CropID:    crop.ID,
			CropName:  crop.Name,
			Requested: want,
			Available: crop.QuantityAvailable,
		}
	}

	c.Set(cropID, want)
	return nil
}

// Update replaces the entry's quantity; quantity <= 0 removes it.
func (s *CartService) Update(ctx context.Context, c *cart.Cart, cropID uint, quantity float64) error {
	quantity = pricing.Quantity(quantity)
	if quantity <= 0 {
		c.Remove(cropID)
		return nil
	}

	crop, err := s.crops.FindActive(ctx, cropID)
	if err != nil {
		return err
	}
	if quantity > crop.QuantityAvailable {
		return &errorx.InsufficientInventoryError{
			CropID:    crop.ID,
			CropName:  crop.Name,
			Requested: quantity,
			Available: crop.QuantityAvailable,
		}
	}

	c.Set(cropID, quantity)
	return nil
}

// Remove drops the entry. Absent entries are a no-op.
func (s *CartService) Remove(c *cart.Cart, cropID uint) {
	c.Remove(cropID)
}

// Materialize yields a line for every entry whose crop is still listed.
// Entries for deactivated or deleted crops are skipped but stay in the cart.
// Crops are loaded one at a time as the sequence is consumed; a store error
// is yielded once and ends the sequence.
func (s *CartService) Materialize(ctx context.Context, c *cart.Cart) iter.Seq2[CartLine, error] {
	entries := c.Entries()

	return func(yield func(CartLine, error) bool) {
		for _, e := range entries {
			crop, err := s.crops.FindActive(ctx, e.CropID)
			if errorx.IsNotFound(err) {
				continue
			}
			if err != nil {
				yield(CartLine{}, err)
				return
			}

			line := CartLine{
				Crop:      crop,
				Quantity:  e.Quantity,
				LineTotal: pricing.LineTotal(crop.PricePerUnit, e.Quantity),
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// View collects Materialize into lines and a total.
func (s *CartService) View(ctx context.Context, c *cart.Cart) (CartView, error) {
	view := CartView{Lines: []CartLine{}}
	var total pricing.Accumulator

	for line, err := range s.Materialize(ctx, c) {
		if err != nil {
			return CartView{}, err
		}
		view.Lines = append(view.Lines, line)
		total.Add(line.LineTotal)
	}

	view.Total = total.Total()
	return view, nil
}
