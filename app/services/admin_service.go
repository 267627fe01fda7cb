package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/pkg/orm"
)

// AdminService covers user management and the platform report.
type AdminService struct {
	users         *repositories.UserRepository
	crops         *repositories.CropRepository
	orders        *repositories.OrderRepository
	consultations *repositories.ConsultationRepository
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{
		users:         repositories.NewUserRepository(db),
		crops:         repositories.NewCropRepository(db),
		orders:        repositories.NewOrderRepository(db),
		consultations: repositories.NewConsultationRepository(db),
	}
}

func (s *AdminService) Users(ctx context.Context, f repositories.UserFilter, p orm.Page) ([]models.User, orm.Pagination, error) {
	return s.users.List(ctx, f, p)
}

// ToggleUser flips the active flag. Admins cannot deactivate themselves.
func (s *AdminService) ToggleUser(ctx context.Context, actor Actor, userID uint) (models.User, error) {
	if actor.UserID == userID {
		return models.User{}, errorx.Validation("you cannot deactivate your own account")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return user, err
	}
	user.IsActive = !user.IsActive
	return user, s.users.Save(ctx, &user)
}

func (s *AdminService) ChangeRole(ctx context.Context, actor Actor, userID uint, role string) (models.User, error) {
	if !models.ValidRole(role) {
		return models.User{}, errorx.Field("role", "is not a known role")
	}
	if actor.UserID == userID {
		return models.User{}, errorx.Validation("you cannot change your own role")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return user, err
	}
	user.Role = role
	return user, s.users.Save(ctx, &user)
}

type TopCrop struct {
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Report is the admin dashboard summary.
type Report struct {
	Users         map[string]int64 `json:"users_by_role"`
	TotalUsers    int64            `json:"total_users"`
	ActiveCrops   int64            `json:"active_crops"`
	TotalCrops    int64            `json:"total_crops"`
	Orders        map[string]int64 `json:"orders_by_status"`
	Consultations map[string]int64 `json:"consultations_by_status"`
	PaidRevenue   float64          `json:"paid_revenue"`
	TopCrops      []TopCrop        `json:"top_crops"`
}

func (s *AdminService) Report(ctx context.Context) (Report, error) {
	var (
		rep Report
		err error
	)
	if rep.Users, err = s.users.CountByRole(ctx); err != nil {
		return rep, err
	}
	if rep.TotalUsers, err = s.users.Count(ctx); err != nil {
		return rep, err
	}
	if rep.ActiveCrops, err = s.crops.Count(ctx, true); err != nil {
		return rep, err
	}
	if rep.TotalCrops, err = s.crops.Count(ctx, false); err != nil {
		return rep, err
	}
	if rep.Orders, err = s.orders.CountByStatus(ctx); err != nil {
		return rep, err
	}
	if rep.Consultations, err = s.consultations.CountByStatus(ctx); err != nil {
		return rep, err
	}
	if rep.PaidRevenue, err = s.orders.PaidRevenue(ctx); err != nil {
		return rep, err
	}

	rows, err := s.orders.TopCrops(ctx, 10)
	if err != nil {
		return rep, err
	}
	rep.TopCrops = make([]TopCrop, len(rows))
	for i, r := range rows {
		rep.TopCrops[i] = TopCrop(r)
	}
	return rep, nil
}
