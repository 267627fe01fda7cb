// Package testdb gives tests a migrated SQLite database and row fixtures.
package testdb

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/krishi360/krishi/database/migrations"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/database"
	"github.com/krishi360/krishi/pkg/migration"
)

// Open creates a fresh database file under t.TempDir and runs every
// registered migration against it.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "krishi.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	_, err = migration.New(db).Run()
	require.NoError(t, err)
	return db
}

var seq atomic.Int64

// User inserts an active user with the given role. The password hash is a
// placeholder; tests that log in hash their own.
func User(t testing.TB, db *gorm.DB, role string) models.User {
	t.Helper()

	n := seq.Add(1)
	u := models.User{
		Username:     fmt.Sprintf("%s%d", role, n),
		Email:        fmt.Sprintf("%s%d@example.com", role, n),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     role,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Crop inserts an active listing owned by farmerID.
func Crop(t testing.TB, db *gorm.DB, farmerID uint, name string, price, qty float64) models.Crop {
	t.Helper()

	c := models.Crop{
		Name:              name,
		PricePerUnit:      price,
		Unit:              "kg",
		QuantityAvailable: qty,
		Location:          "Nashik",
		IsActive:          true,
		FarmerID:          farmerID,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Consultation inserts a pending consultation for farmerID.
func Consultation(t testing.TB, db *gorm.DB, farmerID uint) models.Consultation {
	t.Helper()

	c := models.Consultation{
		Title:       "Yellowing leaves",
		Description: "Lower leaves turning yellow after rain",
		Category:    "crop_management",
		Priority:    "high",
		Status:      models.ConsultationPending,
		FarmerID:    farmerID,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Stock reads a crop's current quantity_available.
func Stock(t testing.TB, db *gorm.DB, cropID uint) float64 {
	t.Helper()

	var c models.Crop
	require.NoError(t, db.Unscoped().First(&c, cropID).Error)
	return c.QuantityAvailable
}
