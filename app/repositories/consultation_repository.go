package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/pkg/orm"
)

type ConsultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

func (r *ConsultationRepository) Create(ctx context.Context, c *models.Consultation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConsultationRepository) FindByID(ctx context.Context, id uint) (models.Consultation, error) {
	var c models.Consultation
	err := r.db.WithContext(ctx).Preload("Farmer").Preload("Consultant").First(&c, id).Error
	return c, notFound(err, "consultation", id)
}

func (r *ConsultationRepository) FindForFarmer(ctx context.Context, id, farmerID uint) (models.Consultation, error) {
	var c models.Consultation
	err := r.db.WithContext(ctx).Preload("Consultant").
		Where("farmer_id = ?", farmerID).
		First(&c, id).Error
	return c, notFound(err, "consultation", id)
}

// Exists reports whether a consultation row with id is present.
func (r *ConsultationRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Claim assigns consultantID only if the consultation is still pending and
// unassigned. The check and the write are one statement.
func (r *ConsultationRepository) Claim(ctx context.Context, id, consultantID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND status = ? AND consultant_id IS NULL", id, models.ConsultationPending).
		Updates(map[string]any{
			"consultant_id": consultantID,
			"status":        models.ConsultationInProgress,
		})
	return res.RowsAffected == 1, res.Error
}

// Assign sets the assignee while the consultation is pending or in progress.
func (r *ConsultationRepository) Assign(ctx context.Context, id, consultantID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND status IN ?", id, []models.ConsultationStatus{models.ConsultationPending, models.ConsultationInProgress}).
		Updates(map[string]any{
			"consultant_id": consultantID,
			"status":        models.ConsultationInProgress,
		})
	return res.RowsAffected == 1, res.Error
}

// Unassign returns the consultation to the open queue. A reopened
// consultation keeps no trace of the previous answer or its rating.
func (r *ConsultationRepository) Unassign(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"consultant_id": nil,
			"status":        models.ConsultationPending,
			"completed_at":  nil,
			"response":      nil,
			"rating":        nil,
		})
	return res.RowsAffected == 1, res.Error
}

// Complete stores the response if consultantID is the in-progress assignee.
func (r *ConsultationRepository) Complete(ctx context.Context, id, consultantID uint, response string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND consultant_id = ? AND status = ?", id, consultantID, models.ConsultationInProgress).
		Updates(map[string]any{
			"response":     response,
			"status":       models.ConsultationCompleted,
			"completed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

// Rate overwrites the rating of a completed consultation owned by farmerID.
func (r *ConsultationRepository) Rate(ctx context.Context, id, farmerID uint, rating int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND farmer_id = ? AND status = ?", id, farmerID, models.ConsultationCompleted).
		Update("rating", rating)
	return res.RowsAffected == 1, res.Error
}

func (r *ConsultationRepository) Cancel(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND status IN ?", id, []models.ConsultationStatus{models.ConsultationPending, models.ConsultationInProgress}).
		Update("status", models.ConsultationCancelled)
	return res.RowsAffected == 1, res.Error
}

func (r *ConsultationRepository) ListForFarmer(ctx context.Context, farmerID uint) ([]models.Consultation, error) {
	var out []models.Consultation
	err := r.db.WithContext(ctx).Preload("Consultant").
		Where("farmer_id = ?", farmerID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *ConsultationRepository) ListForConsultant(ctx context.Context, consultantID uint) ([]models.Consultation, error) {
	var out []models.Consultation
	err := r.db.WithContext(ctx).Preload("Farmer").
		Where("consultant_id = ?", consultantID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListAvailable is the open queue: pending and unassigned, most urgent first.
func (r *ConsultationRepository) ListAvailable(ctx context.Context) ([]models.Consultation, error) {
	var out []models.Consultation
	err := r.db.WithContext(ctx).Preload("Farmer").
		Where("status = ? AND consultant_id IS NULL", models.ConsultationPending).
		Order("CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at").
		Find(&out).Error
	return out, err
}

type ConsultationFilter struct {
	Status   string
	Category string
}

func (r *ConsultationRepository) List(ctx context.Context, f ConsultationFilter, p orm.Page) ([]models.Consultation, orm.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Consultation{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var out []models.Consultation
	pg, err := orm.Paginate(q, p, &out, "created_at desc", "Farmer", "Consultant")
	return out, pg, err
}

// ConsultantStats summarises one consultant's work.
type ConsultantStats struct {
	Total         int64    `json:"total"`
	Completed     int64    `json:"completed"`
	InProgress    int64    `json:"in_progress"`
	AverageRating *float64 `json:"average_rating"`
}

func (r *ConsultationRepository) StatsFor(ctx context.Context, consultantID uint) (ConsultantStats, error) {
	var row struct {
		Total      int64
		Completed  int64
		InProgress int64
		AvgRating  *float64
	}
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress,
			AVG(rating) AS avg_rating`, models.ConsultationCompleted, models.ConsultationInProgress).
		Where("consultant_id = ?", consultantID).
		Scan(&row).Error

	return ConsultantStats{
		Total:         row.Total,
		Completed:     row.Completed,
		InProgress:    row.InProgress,
		AverageRating: row.AvgRating,
	}, err
}

// CategoryStats is one row of a consultant's specialization breakdown.
type CategoryStats struct {
	Category      string   `json:"category"`
	Total         int64    `json:"total"`
	Completed     int64    `json:"completed"`
	AverageRating *float64 `json:"average_rating"`
}

// CategoryStatsFor groups a consultant's consultations by category, busiest
// category first.
func (r *ConsultationRepository) CategoryStatsFor(ctx context.Context, consultantID uint) ([]CategoryStats, error) {
	rows := []CategoryStats{}
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Select(`category,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			AVG(rating) AS average_rating`, models.ConsultationCompleted).
		Where("consultant_id = ?", consultantID).
		Group("category").
		Order("total DESC, category").
		Scan(&rows).Error
	return rows, err
}

// CountForFarmer counts one farmer's consultations in status.
func (r *ConsultationRepository) CountForFarmer(ctx context.Context, farmerID uint, status models.ConsultationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("farmer_id = ? AND status = ?", farmerID, status).
		Count(&n).Error
	return n, err
}

// CountAvailable counts the open queue consultants can claim from.
func (r *ConsultationRepository) CountAvailable(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("status = ? AND consultant_id IS NULL", models.ConsultationPending).
		Count(&n).Error
	return n, err
}

func (r *ConsultationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, err
}
