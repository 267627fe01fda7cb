package models

import "gorm.io/gorm"

const (
	RoleFarmer     = "farmer"
	RoleBuyer      = "buyer"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

// Roles lists every role a user may hold.
var Roles = []string{RoleFarmer, RoleBuyer, RoleConsultant, RoleAdmin}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account on the marketplace. Role decides which API surface the
// user can reach.
type User struct {
	gorm.Model
	Username     string `gorm:"size:80;uniqueIndex;not null"  json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null"             json:"-"`
	FirstName    string `gorm:"size:50;not null"              json:"first_name"`
	LastName     string `gorm:"size:50;not null"              json:"last_name"`
	Phone        string `gorm:"size:20"                       json:"phone,omitempty"`
	Address      string `gorm:"type:text"                     json:"address,omitempty"`
	Role         string `gorm:"size:20;not null;index"        json:"role"`
	IsActive     bool   `gorm:"not null"                      json:"is_active"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
