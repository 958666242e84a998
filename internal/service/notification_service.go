package service

import (
	"context"
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

// notificationRepository is the subset of store.NotificationStore the service requires.
type notificationRepository interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
}

// NotificationService is the read side of the notification sink.
type NotificationService struct {
	notifications notificationRepository
}

func NewNotificationService(notificationStore notificationRepository) *NotificationService {
	return &NotificationService{notifications: notificationStore}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	return s.notifications.ListForUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notifications.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
	}
	return nil
}
