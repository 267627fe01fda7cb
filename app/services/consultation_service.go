package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/events"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/metrics"
	"github.com/krishi360/krishi/pkg/orm"
)

// ConsultationService runs the consultation state machine:
//
//	pending -> in_progress -> completed
//	pending | in_progress -> cancelled (admin)
//
// Every transition is one conditional UPDATE whose WHERE clause is the
// transition's guard, so concurrent callers cannot both pass it.
type ConsultationService struct {
	consultations *repositories.ConsultationRepository
	users         *repositories.UserRepository
	events        events.Publisher
	now           func() time.Time
}

func NewConsultationService(db *gorm.DB, pub events.Publisher) *ConsultationService {
	return &ConsultationService{
		consultations: repositories.NewConsultationRepository(db),
		users:         repositories.NewUserRepository(db),
		events:        publisherOrDiscard(pub),
		now:           time.Now,
	}
}

type ConsultationInput struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"    validate:"required"`
	Priority    string `json:"priority"`
}

func (s *ConsultationService) Create(ctx context.Context, farmerID uint, in ConsultationInput) (models.Consultation, error) {
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	switch {
	case trim(in.Title) == "":
		return models.Consultation{}, errorx.Field("title", "is required")
	case trim(in.Description) == "":
		return models.Consultation{}, errorx.Field("description", "is required")
	case !contains(models.Categories, in.Category):
		return models.Consultation{}, errorx.Field("category", "is not a known category")
	case !contains(models.Priorities, priority):
		return models.Consultation{}, errorx.Field("priority", "must be one of: low, medium, high, urgent")
	}

	c := models.Consultation{
		Title:       trim(in.Title),
		Description: trim(in.Description),
		Category:    in.Category,
		Priority:    priority,
		Status:      models.ConsultationPending,
		FarmerID:    farmerID,
	}
	if err := s.consultations.Create(ctx, &c); err != nil {
		return models.Consultation{}, err
	}

	s.publish(ctx, events.ConsultationCreated, c)
	return c, nil
}

// Claim lets a consultant take an open consultation. Exactly one of several
// concurrent claimants succeeds; the rest get ConflictError.
func (s *ConsultationService) Claim(ctx context.Context, id, consultantID uint) (models.Consultation, error) {
	ok, err := s.consultations.Claim(ctx, id, consultantID)
	if err != nil {
		return models.Consultation{}, err
	}
	if !ok {
		current, err := s.consultations.FindByID(ctx, id)
		if err != nil {
			return models.Consultation{}, err
		}
		switch current.Status {
		case models.ConsultationCompleted, models.ConsultationCancelled:
			return current, errorx.InvalidState("consultation", string(current.Status), "consultation is closed")
		}
		metrics.ConsultationClaims.WithLabelValues("conflict").Inc()
		return current, errorx.Conflict("consultation %d has already been claimed", id)
	}

	metrics.ConsultationClaims.WithLabelValues("claimed").Inc()
	c, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return c, err
	}
	logger.WithCtx(ctx).Info("consultation claimed", "consultation_id", id, "consultant_id", consultantID)
	s.publish(ctx, events.ConsultationClaimed, c)
	return c, nil
}

// Assign is the admin override: it sets or replaces the assignee of a
// pending or in-progress consultation.
func (s *ConsultationService) Assign(ctx context.Context, id, consultantID uint) (models.Consultation, error) {
	consultant, err := s.users.FindByID(ctx, consultantID)
	if err != nil {
		return models.Consultation{}, err
	}
	if consultant.Role != models.RoleConsultant || !consultant.IsActive {
		return models.Consultation{}, errorx.Field("consultant_id", "must reference an active consultant")
	}

	ok, err := s.consultations.Assign(ctx, id, consultantID)
	if err != nil {
		return models.Consultation{}, err
	}
	if !ok {
		return s.stateError(ctx, id, "consultation can no longer be assigned")
	}

	c, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return c, err
	}
	logger.WithCtx(ctx).Info("consultation assigned", "consultation_id", id, "consultant_id", consultantID)
	s.publish(ctx, events.ConsultationAssigned, c)
	return c, nil
}

// Unassign returns the consultation to the open queue from any state.
func (s *ConsultationService) Unassign(ctx context.Context, id uint) (models.Consultation, error) {
	ok, err := s.consultations.Unassign(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if !ok {
		// Some drivers report zero rows when nothing changed.
		exists, err := s.consultations.Exists(ctx, id)
		if err != nil {
			return models.Consultation{}, err
		}
		if !exists {
			return models.Consultation{}, errorx.NotFound("consultation", id)
		}
	}

	c, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return c, err
	}
	logger.WithCtx(ctx).Info("consultation unassigned", "consultation_id", id)
	s.publish(ctx, events.ConsultationUnassigned, c)
	return c, nil
}

// Respond completes an in-progress consultation. Only its assignee may respond.
func (s *ConsultationService) Respond(ctx context.Context, id, consultantID uint, response string) (models.Consultation, error) {
	if trim(response) == "" {
		return models.Consultation{}, errorx.Field("response", "is required")
	}

	ok, err := s.consultations.Complete(ctx, id, consultantID, trim(response), s.now().UTC())
	if err != nil {
		return models.Consultation{}, err
	}
	if !ok {
		current, err := s.consultations.FindByID(ctx, id)
		if err != nil {
			return current, err
		}
		if current.ConsultantID == nil || *current.ConsultantID != consultantID {
			return current, errorx.InvalidState("consultation", string(current.Status), "consultation is not assigned to you")
		}
		return current, errorx.InvalidState("consultation", string(current.Status), "only in-progress consultations can be answered")
	}

	c, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return c, err
	}
	logger.WithCtx(ctx).Info("consultation responded", "consultation_id", id, "consultant_id", consultantID)
	s.publish(ctx, events.ConsultationResponded, c)
	return c, nil
}

// Rate stores the requesting farmer's 1..5 rating of a completed
// consultation. Rating again overwrites.
func (s *ConsultationService) Rate(ctx context.Context, id, farmerID uint, rating int) (models.Consultation, error) {
	if rating < 1 || rating > 5 {
		return models.Consultation{}, errorx.Field("rating", "must be between 1 and 5")
	}

	current, err := s.consultations.FindForFarmer(ctx, id, farmerID)
	if err != nil {
		return current, err
	}
	if current.Status != models.ConsultationCompleted {
		return current, errorx.InvalidState("consultation", string(current.Status), "only completed consultations can be rated")
	}

	ok, err := s.consultations.Rate(ctx, id, farmerID, rating)
	if err != nil {
		return current, err
	}
	if !ok {
		return s.stateError(ctx, id, "only completed consultations can be rated")
	}

	current.Rating = &rating
	s.publish(ctx, events.ConsultationRated, current)
	return current, nil
}

// Cancel is the admin escape hatch for open consultations.
func (s *ConsultationService) Cancel(ctx context.Context, id uint) (models.Consultation, error) {
	ok, err := s.consultations.Cancel(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if !ok {
		return s.stateError(ctx, id, "consultation can no longer be cancelled")
	}

	c, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return c, err
	}
	s.publish(ctx, events.ConsultationCancelled, c)
	return c, nil
}

// stateError explains why a guarded update matched no row.
func (s *ConsultationService) stateError(ctx context.Context, id uint, msg string) (models.Consultation, error) {
	current, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return current, err
	}
	return current, errorx.InvalidState("consultation", string(current.Status), msg)
}

func (s *ConsultationService) publish(ctx context.Context, name string, c models.Consultation) {
	s.events.Publish(ctx, name, events.ConsultationEvent{
		ConsultationID: c.ID,
		Title:          c.Title,
		FarmerID:       c.FarmerID,
		ConsultantID:   c.ConsultantID,
		Status:         string(c.Status),
		Rating:         c.Rating,
	})
}

func (s *ConsultationService) ListForFarmer(ctx context.Context, farmerID uint) ([]models.Consultation, error) {
	return s.consultations.ListForFarmer(ctx, farmerID)
}

func (s *ConsultationService) ListForConsultant(ctx context.Context, consultantID uint) ([]models.Consultation, error) {
	return s.consultations.ListForConsultant(ctx, consultantID)
}

func (s *ConsultationService) Available(ctx context.Context) ([]models.Consultation, error) {
	return s.consultations.ListAvailable(ctx)
}

// DetailForConsultant shows open consultations and the caller's own.
func (s *ConsultationService) DetailForConsultant(ctx context.Context, id, consultantID uint) (models.Consultation, error) {
	c, err := s.consultations.FindByID(ctx, id)
	if err != nil {
		return c, err
	}
	if c.ConsultantID != nil && *c.ConsultantID != consultantID {
		return models.Consultation{}, errorx.NotFound("consultation", id)
	}
	return c, nil
}

func (s *ConsultationService) DetailForFarmer(ctx context.Context, id, farmerID uint) (models.Consultation, error) {
	return s.consultations.FindForFarmer(ctx, id, farmerID)
}

func (s *ConsultationService) Stats(ctx context.Context, consultantID uint) (repositories.ConsultantStats, error) {
	return s.consultations.StatsFor(ctx, consultantID)
}

// Specializations breaks the consultant's work down by category.
func (s *ConsultationService) Specializations(ctx context.Context, consultantID uint) ([]repositories.CategoryStats, error) {
	return s.consultations.CategoryStatsFor(ctx, consultantID)
}

func (s *ConsultationService) AdminList(ctx context.Context, f repositories.ConsultationFilter, p orm.Page) ([]models.Consultation, orm.Pagination, error) {
	return s.consultations.List(ctx, f, p)
}
