// Package seeders holds the demo data loaded by `krishi seed`.
//
// Seeders register themselves from init() and run in registration order:
//
//	func init() { Register("users", seedUsers) }
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/logger"
)

type SeederFunc func(db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder inside one transaction. It does
// nothing when the users table already has rows, so running it twice is safe.
func RunAll(db *gorm.DB) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if users > 0 {
		logger.Info("database already has users, skipping seed", "users", users)
		return nil
	}

	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range current {
			if err := e.fn(tx); err != nil {
				return fmt.Errorf("seeder %q: %w", e.name, err)
			}
			logger.Info("seeded", "seeder", e.name)
		}
		return nil
	})
}
