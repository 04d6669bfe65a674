package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	notificationRepository repository.NotificationRepository
}

func NewNotificationService(notificationRepository repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepository: notificationRepository}
}

// Record writes an audit notification. Best-effort by contract: callers
// invoke it after the HTTP response is sent, and a failed write is only
// logged, never propagated.
func (s *NotificationService) Record(userID, title, message, notificationType string) {
	notification := &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
	}

	err := s.notificationRepository.Create(notification)
	if err != nil {
		slog.Error("failed to record notification", "error", err, "user_id", userID, "type", notificationType)
	}
}

// List returns all notifications for admins, own notifications otherwise.
func (s *NotificationService) List(principal *model.Principal) ([]model.Notification, error) {
	if principal.IsAdmin() {
		return s.notificationRepository.All()
	}
	return s.notificationRepository.ByUser(principal.UserID)
}

func (s *NotificationService) MarkRead(id string, principal *model.Principal) (*model.Notification, error) {
	notification, err := s.notificationRepository.MarkRead(id, principal.UserID, principal.IsAdmin())
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return notification, nil
}

func (s *NotificationService) ClearRead(principal *model.Principal) (int64, error) {
	return s.notificationRepository.ClearRead(principal.UserID, principal.IsAdmin())
}
