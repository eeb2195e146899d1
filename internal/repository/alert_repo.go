package repository

import (
	"context"
	"time"

	"inventory-plus/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository interface {
	Upsert(ctx context.Context, alert *model.StockAlert) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockAlert, error)
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]model.StockAlert, error)
	Find(ctx context.Context, productID uuid.UUID, alertType model.NotificationType) (*model.StockAlert, error)
	TouchLastTriggered(ctx context.Context, productID uuid.UUID, alertType model.NotificationType, at time.Time) error
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db}
}

// Upsert keeps one row per (product_id, alert_type) and replaces its notify users.
func (r *alertRepo) Upsert(ctx context.Context, alert *model.StockAlert) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit("Product", "NotifyUsers").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "alert_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"threshold_value", "is_active", "email_notifications", "notify_roles", "updated_at",
			}),
		}).Create(alert).Error
		if err != nil {
			return err
		}

		// On conflict the generated id is not the stored one; reload it.
		var stored model.StockAlert
		if err := tx.First(&stored, "product_id = ? AND alert_type = ?", alert.ProductID, alert.AlertType).Error; err != nil {
			return err
		}
		alert.ID = stored.ID
		alert.CreatedAt = stored.CreatedAt
		alert.LastTriggered = stored.LastTriggered

		if len(alert.NotifyUsers) == 0 {
			return tx.Model(&stored).Association("NotifyUsers").Clear()
		}
		return tx.Model(&stored).Association("NotifyUsers").Replace(alert.NotifyUsers)
	})
}

func (r *alertRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockAlert, error) {
	var alerts []model.StockAlert
	err := r.db.WithContext(ctx).
		Preload("NotifyUsers").
		Where("product_id = ?", productID).
		Order("alert_type ASC").
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepo) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]model.StockAlert, error) {
	var alerts []model.StockAlert
	if len(productIDs) == 0 {
		return alerts, nil
	}
	err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&alerts).Error
	return alerts, err
}

func (r *alertRepo) Find(ctx context.Context, productID uuid.UUID, alertType model.NotificationType) (*model.StockAlert, error) {
	var alert model.StockAlert
	err := r.db.WithContext(ctx).
		Preload("NotifyUsers").
		First(&alert, "product_id = ? AND alert_type = ?", productID, alertType).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// TouchLastTriggered stamps last_triggered; a missing config row is not an error.
func (r *alertRepo) TouchLastTriggered(ctx context.Context, productID uuid.UUID, alertType model.NotificationType, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.StockAlert{}).
		Where("product_id = ? AND alert_type = ?", productID, alertType).
		UpdateColumn("last_triggered", at.UTC()).Error
}
