package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
)

type NotificationService struct {
	notifications *repositories.NotificationRepository
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{notifications: repositories.NewNotificationRepository(db)}
}

// Notify stores one notification per recipient.
func (s *NotificationService) Notify(ctx context.Context, userIDs []uint, title, message, kind string) error {
	ns := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		ns = append(ns, models.Notification{UserID: id, Title: title, Message: message, Type: kind})
	}
	return s.notifications.CreateMany(ctx, ns)
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	return s.notifications.ListForUser(ctx, userID, unreadOnly, 50)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.NotFound("notification", id)
	}
	return nil
}
