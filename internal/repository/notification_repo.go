package repository

import (
	"context"
	"time"

	"inventory-plus/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationFilter narrows List. Zero values mean no filter.
type NotificationFilter struct {
	UserID     *uuid.UUID // own + broadcast notifications of this user
	Type       model.NotificationType
	Priority   model.Priority
	UnreadOnly bool
	Limit      int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, f NotificationFilter) ([]model.Notification, error)
	ExistsSince(ctx context.Context, productID uuid.UUID, t model.NotificationType, since time.Time) (bool, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUrgent(ctx context.Context, userID uuid.UUID) (int64, error)
	SetRead(ctx context.Context, id uuid.UUID, read bool) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error
	FindPending(ctx context.Context, t model.NotificationType, includeSent bool) ([]model.Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Omit("Product", "User").Create(n).Error
}

func (r *notificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).Preload("Product").First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// visibleTo restricts to notifications addressed to the user or broadcast (user_id null).
func visibleTo(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Where("(user_id = ? OR user_id IS NULL)", userID)
}

func (r *notificationRepo) List(ctx context.Context, f NotificationFilter) ([]model.Notification, error) {
	var notifications []model.Notification
	q := r.db.WithContext(ctx).Preload("Product").Order("created_at DESC")
	if f.UserID != nil {
		q = visibleTo(q, *f.UserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

// ExistsSince is the dedup probe on (product_id, type, created_at).
func (r *notificationRepo) ExistsSince(ctx context.Context, productID uuid.UUID, t model.NotificationType, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("product_id = ? AND type = ? AND created_at >= ?", productID, t, since.UTC()).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), userID)
	err := q.Where("is_read = ?", false).Count(&count).Error
	return count, err
}

func (r *notificationRepo) CountUrgent(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), userID)
	err := q.Where("is_read = ? AND priority = ?", false, model.PriorityUrgent).Count(&count).Error
	return count, err
}

func (r *notificationRepo) SetRead(ctx context.Context, id uuid.UUID, read bool) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		UpdateColumn("is_read", read)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	q := visibleTo(r.db.WithContext(ctx).Model(&model.Notification{}), userID)
	res := q.Where("is_read = ?", false).UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"is_email_sent": true,
			"email_sent_at": at.UTC(),
		}).Error
}

// FindPending selects notifications for the send job, oldest first.
func (r *notificationRepo) FindPending(ctx context.Context, t model.NotificationType, includeSent bool) ([]model.Notification, error) {
	var notifications []model.Notification
	q := r.db.WithContext(ctx).Preload("User").Preload("User.Profile").Order("created_at ASC")
	if !includeSent {
		q = q.Where("is_email_sent = ?", false)
	}
	if t != "" {
		q = q.Where("type = ?", t)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
