package service

import (
	"context"
	"errors"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationCounts is the badge summary for one user.
type NotificationCounts struct {
	Unread int64 `json:"unread"`
	Urgent int64 `json:"urgent"`
}

// NotificationService is the read and read-state surface over notifications.
// Every query for a user covers notifications addressed to them plus broadcasts.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, f repository.NotificationFilter) ([]model.Notification, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	Counts(ctx context.Context, userID uuid.UUID) (*NotificationCounts, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkUnread(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, f repository.NotificationFilter) ([]model.Notification, error) {
	f.UserID = &userID
	return s.repo.List(ctx, f)
}

func (s *notificationService) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.List(ctx, repository.NotificationFilter{UserID: &userID, Limit: limit})
}

func (s *notificationService) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *notificationService) Counts(ctx context.Context, userID uuid.UUID) (*NotificationCounts, error) {
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	urgent, err := s.repo.CountUrgent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationCounts{Unread: unread, Urgent: urgent}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.SetRead(ctx, id, true))
}

func (s *notificationService) MarkUnread(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.SetRead(ctx, id, false))
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id))
}
