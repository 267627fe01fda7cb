// Package repositories wraps gorm queries per aggregate. Every repository is
// bound to a *gorm.DB, which may be a transaction handle.
package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
)

// notFound turns gorm's record-not-found into the domain error.
func notFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.NotFound(entity, id)
	}
	return err
}

// like builds a case-insensitive contains pattern for LOWER(col) LIKE ?.
func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
