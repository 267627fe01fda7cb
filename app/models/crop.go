package models

import (
	"time"

	"gorm.io/gorm"
)

// Units accepted for a crop listing.
var Units = []string{"kg", "g", "ton", "quintal", "piece", "dozen", "litre", "bunch", "bag"}

func ValidUnit(unit string) bool {
	for _, u := range Units {
		if u == unit {
			return true
		}
	}
	return false
}

// Crop is a farmer's listing. QuantityAvailable is the stock of record and is
// only changed by checkout (decrement), cancellation (restore) and the owning
// farmer's edits.
type Crop struct {
	gorm.Model
	Name              string     `gorm:"size:100;not null;index" json:"name"`
	Variety           string     `gorm:"size:100"                json:"variety,omitempty"`
	Description       string     `gorm:"type:text"               json:"description,omitempty"`
	PricePerUnit      float64    `gorm:"not null"                json:"price_per_unit"`
	Unit              string     `gorm:"size:20;not null"        json:"unit"`
	QuantityAvailable float64    `gorm:"type:numeric(12,3);not null" json:"quantity_available"`
	HarvestDate       *time.Time `gorm:"type:date"               json:"harvest_date,omitempty"`
	Location          string     `gorm:"size:200;not null"       json:"location"`
	ImageURL          string     `gorm:"size:200"                json:"image_url,omitempty"`
	IsOrganic         bool       `gorm:"not null"                json:"is_organic"`
	IsActive          bool       `gorm:"not null;index"          json:"is_active"`
	FarmerID          uint       `gorm:"not null;index"          json:"farmer_id"`
	Farmer            *User      `gorm:"foreignKey:FarmerID"     json:"farmer,omitempty"`
}
