// Package services holds the marketplace's business operations. Each
// service takes its *gorm.DB explicitly and scopes every multi-row write in
// db.Transaction.
package services

import (
	"strings"

	"github.com/krishi360/krishi/app/events"
	"github.com/krishi360/krishi/app/models"
)

// Actor is the authenticated caller as resolved by the auth layer.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func publisherOrDiscard(p events.Publisher) events.Publisher {
	if p == nil {
		return events.Discard{}
	}
	return p
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func trim(s string) string { return strings.TrimSpace(s) }
