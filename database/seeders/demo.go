package seeders

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

func init() {
	Register("users", seedUsers)
	Register("crops", seedCrops)
	Register("consultations", seedConsultations)
}

var demoUsers = []models.User{
	{Username: "admin", Email: "admin@krishi.local", FirstName: "Asha", LastName: "Rao", Role: models.RoleAdmin},
	{Username: "farmer", Email: "farmer@krishi.local", FirstName: "Ravi", LastName: "Patil", Phone: "9876500001", Address: "Nashik, Maharashtra", Role: models.RoleFarmer},
	{Username: "buyer", Email: "buyer@krishi.local", FirstName: "Meera", LastName: "Shah", Phone: "9876500002", Address: "Andheri, Mumbai", Role: models.RoleBuyer},
	{Username: "consultant", Email: "consultant@krishi.local", FirstName: "Dev", LastName: "Kulkarni", Role: models.RoleConsultant},
}

func seedUsers(db *gorm.DB) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for _, u := range demoUsers {
		u.PasswordHash = hash
		u.IsActive = true
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("create %s: %w", u.Username, err)
		}
	}
	return nil
}

func farmerID(db *gorm.DB) (uint, error) {
	var farmer models.User
	if err := db.Where("username = ?", "farmer").First(&farmer).Error; err != nil {
		return 0, fmt.Errorf("find demo farmer: %w", err)
	}
	return farmer.ID, nil
}

func seedCrops(db *gorm.DB) error {
	id, err := farmerID(db)
	if err != nil {
		return err
	}

	harvest := time.Now().UTC().AddDate(0, 0, -7).Truncate(24 * time.Hour)
	crops := []models.Crop{
		{Name: "Tomato", Variety: "Hybrid", PricePerUnit: 24, Unit: "kg", QuantityAvailable: 500, Location: "Nashik", IsOrganic: false},
		{Name: "Onion", Variety: "Red", PricePerUnit: 30, Unit: "kg", QuantityAvailable: 1200, Location: "Lasalgaon"},
		{Name: "Grapes", Variety: "Thompson Seedless", PricePerUnit: 85.5, Unit: "kg", QuantityAvailable: 300, Location: "Nashik", IsOrganic: true},
		{Name: "Wheat", Variety: "Lokwan", PricePerUnit: 2450, Unit: "quintal", QuantityAvailable: 40, Location: "Niphad"},
	}
	for i := range crops {
		crops[i].FarmerID = id
		crops[i].IsActive = true
		crops[i].HarvestDate = &harvest
	}
	return db.Create(&crops).Error
}

func seedConsultations(db *gorm.DB) error {
	id, err := farmerID(db)
	if err != nil {
		return err
	}
	return db.Create(&models.Consultation{
		Title:       "Leaf curl on tomato plants",
		Description: "Young leaves are curling upwards on about a third of the plot.",
		Category:    "pest_control",
		Priority:    "high",
		Status:      models.ConsultationPending,
		FarmerID:    id,
	}).Error
}
