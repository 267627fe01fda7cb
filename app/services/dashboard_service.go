package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
)

const (
	featuredCrops = 6
	recentRows    = 5
)

// DashboardService builds the per-role landing summaries. The admin
// equivalent is AdminService.Report.
type DashboardService struct {
	crops         *repositories.CropRepository
	orders        *repositories.OrderRepository
	consultations *repositories.ConsultationRepository
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		crops:         repositories.NewCropRepository(db),
		orders:        repositories.NewOrderRepository(db),
		consultations: repositories.NewConsultationRepository(db),
	}
}

type FarmerDashboard struct {
	TotalCrops           int64                 `json:"total_crops"`
	ActiveCrops          int64                 `json:"active_crops"`
	TotalOrders          int64                 `json:"total_orders"`
	PendingConsultations int64                 `json:"pending_consultations"`
	RecentOrders         []models.Order        `json:"recent_orders"`
	RecentConsultations  []models.Consultation `json:"recent_consultations"`
}

func (s *DashboardService) Farmer(ctx context.Context, farmerID uint) (FarmerDashboard, error) {
	var (
		d   FarmerDashboard
		err error
	)
	if d.TotalCrops, d.ActiveCrops, err = s.crops.CountForFarmer(ctx, farmerID); err != nil {
		return d, err
	}
	if d.TotalOrders, err = s.orders.CountForFarmer(ctx, farmerID); err != nil {
		return d, err
	}
	if d.PendingConsultations, err = s.consultations.CountForFarmer(ctx, farmerID, models.ConsultationPending); err != nil {
		return d, err
	}

	orders, err := s.orders.ListForFarmer(ctx, farmerID)
	if err != nil {
		return d, err
	}
	d.RecentOrders = head(orders, recentRows)

	consultations, err := s.consultations.ListForFarmer(ctx, farmerID)
	if err != nil {
		return d, err
	}
	d.RecentConsultations = head(consultations, recentRows)
	return d, nil
}

type BuyerDashboard struct {
	repositories.BuyerSummary
	RecentOrders  []models.Order `json:"recent_orders"`
	FeaturedCrops []models.Crop  `json:"featured_crops"`
}

func (s *DashboardService) Buyer(ctx context.Context, buyerID uint) (BuyerDashboard, error) {
	var d BuyerDashboard

	summary, err := s.orders.SummaryForBuyer(ctx, buyerID)
	if err != nil {
		return d, err
	}
	d.BuyerSummary = summary

	orders, err := s.orders.ListForBuyer(ctx, buyerID)
	if err != nil {
		return d, err
	}
	d.RecentOrders = head(orders, recentRows)

	crops, err := s.crops.Catalog(ctx, repositories.CatalogFilter{Limit: featuredCrops})
	if err != nil {
		return d, err
	}
	d.FeaturedCrops = head(crops, featuredCrops)
	return d, nil
}

type ConsultantDashboard struct {
	repositories.ConsultantStats
	Available int64                 `json:"available"`
	Recent    []models.Consultation `json:"recent"`
}

func (s *DashboardService) Consultant(ctx context.Context, consultantID uint) (ConsultantDashboard, error) {
	var d ConsultantDashboard

	stats, err := s.consultations.StatsFor(ctx, consultantID)
	if err != nil {
		return d, err
	}
	d.ConsultantStats = stats

	if d.Available, err = s.consultations.CountAvailable(ctx); err != nil {
		return d, err
	}

	mine, err := s.consultations.ListForConsultant(ctx, consultantID)
	if err != nil {
		return d, err
	}
	d.Recent = head(mine, recentRows)
	return d, nil
}

// head returns at most n leading elements, never nil.
func head[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[:n]
	}
	if rows == nil {
		return []T{}
	}
	return rows
}
