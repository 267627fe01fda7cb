package models

import "gorm.io/gorm"

// Notification is a stored message for one user.
type Notification struct {
	gorm.Model
	Title   string `gorm:"size:200;not null"        json:"title"`
	Message string `gorm:"type:text;not null"       json:"message"`
	Type    string `gorm:"size:50;not null"         json:"type"`
	IsRead  bool   `gorm:"not null;default:false"   json:"is_read"`
	UserID  uint   `gorm:"not null;index"           json:"user_id"`
}
