package models

import (
	"time"

	"gorm.io/gorm"
)

type ConsultationStatus string

const (
	ConsultationPending    ConsultationStatus = "pending"
	ConsultationInProgress ConsultationStatus = "in_progress"
	ConsultationCompleted  ConsultationStatus = "completed"
	ConsultationCancelled  ConsultationStatus = "cancelled"
)

var (
	Priorities = []string{"low", "medium", "high", "urgent"}
	Categories = []string{
		"crop_management", "pest_control", "soil_health", "irrigation",
		"fertilizers", "weather", "market_prices", "organic_farming", "other",
	}
)

// Consultation is a farmer's help request. ConsultantID is nil while Status is
// pending and set while in_progress or completed; a cancelled row keeps
// whatever it had.
type Consultation struct {
	gorm.Model
	Title        string             `gorm:"size:200;not null"       json:"title"`
	Description  string             `gorm:"type:text;not null"      json:"description"`
	Category     string             `gorm:"size:50;not null;index"  json:"category"`
	Status       ConsultationStatus `gorm:"size:20;not null;index"  json:"status"`
	Priority     string             `gorm:"size:10;not null"        json:"priority"`
	Response     *string            `gorm:"type:text"               json:"response,omitempty"`
	Rating       *int               `json:"rating,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	FarmerID     uint               `gorm:"not null;index"          json:"farmer_id"`
	Farmer       *User              `gorm:"foreignKey:FarmerID"     json:"farmer,omitempty"`
	ConsultantID *uint              `gorm:"index"                   json:"consultant_id,omitempty"`
	Consultant   *User              `gorm:"foreignKey:ConsultantID" json:"consultant,omitempty"`
}
