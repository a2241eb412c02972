package services

import (
	"context"
	"log"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/models"
	"github.com/anonto42/campus-social/backend/internal/repositories"
)

type NotificationService struct {
	notifications repositories.NotificationRepository
	authors       *AuthorDirectory
}

func NewNotificationService(notifications repositories.NotificationRepository, authors *AuthorDirectory) *NotificationService {
	return &NotificationService{notifications: notifications, authors: authors}
}

// Notify records a notification from one actor to another. Self
// notifications are skipped, and a failure is logged rather than failing
// the action that triggered it.
func (s *NotificationService) Notify(ctx context.Context, typ models.NotificationType, fromActorID, toActorID uint, targetID, targetType, message string) {
	if fromActorID == toActorID {
		return
	}
	n := &models.Notification{
		Type:             typ,
		ActorID:          fromActorID,
		RecipientActorID: toActorID,
		TargetID:         targetID,
		TargetType:       targetType,
		Message:          message,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		log.Printf("Failed to create %s notification: %v", typ, err)
	}
}

// List returns a page of the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipient *models.Actor, p models.Pagination) ([]models.NotificationView, models.PageMeta, error) {
	items, total, err := s.notifications.GetByRecipient(ctx, recipient.ID, p.Page, p.Limit)
	if err != nil {
		return nil, models.PageMeta{}, storeErr(err, nil)
	}
	ids := make([]uint, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ActorID)
	}
	authors, err := s.authors.Views(ctx, ids, AsViewer(recipient))
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	views := make([]models.NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, models.NotificationView{Notification: n, Actor: authors[n.ActorID]})
	}
	return views, models.NewPageMeta(p, total), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipient *models.Actor) (int64, error) {
	n, err := s.notifications.GetUnreadCount(ctx, recipient.ID)
	return n, storeErr(err, nil)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipient *models.Actor, id uint) error {
	return storeErr(s.notifications.MarkAsRead(ctx, id, recipient.ID), apperr.NotFound("notification"))
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipient *models.Actor) error {
	return storeErr(s.notifications.MarkAllAsRead(ctx, recipient.ID), nil)
}
