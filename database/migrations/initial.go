// Package migrations registers the schema migrations. Importing it for side
// effects is enough for the migration runner to see them.
package migrations

import (
	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/migration"
)

func init() {
	migration.Register("20250301000000_create_users_table", &createUsers{})
	migration.Register("20250301000001_create_crops_table", &createCrops{})
	migration.Register("20250301000002_create_orders_tables", &createOrders{})
	migration.Register("20250301000003_create_consultations_table", &createConsultations{})
	migration.Register("20250301000004_create_notifications_table", &createNotifications{})
}

type createUsers struct{}

func (createUsers) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.User{}) }
func (createUsers) Down(db *gorm.DB) error { return db.Migrator().DropTable(&models.User{}) }

type createCrops struct{}

func (createCrops) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Crop{}) }
func (createCrops) Down(db *gorm.DB) error { return db.Migrator().DropTable(&models.Crop{}) }

// -------- orders + order_items --------

type createOrders struct{}

func (createOrders) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (createOrders) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderItem{}, &models.Order{})
}

type createConsultations struct{}

func (createConsultations) Up(db *gorm.DB) error { return db.AutoMigrate(&models.Consultation{}) }
func (createConsultations) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Consultation{})
}

type createNotifications struct{}

func (createNotifications) Up(db *gorm.DB) error { return db.AutoMigrate(&models.Notification{}) }
func (createNotifications) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Notification{})
}
