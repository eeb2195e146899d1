package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertConfigInput configures one alert type for one product.
type AlertConfigInput struct {
	ProductID          uuid.UUID              `json:"product_id" validate:"uuid_required"`
	AlertType          model.NotificationType `json:"alert_type" validate:"required,alert_type"`
	ThresholdValue     *int                   `json:"threshold_value" validate:"omitempty,gte=0"`
	IsActive           bool                   `json:"is_active"`
	EmailNotifications bool                   `json:"email_notifications"`
	NotifyUserIDs      []uuid.UUID            `json:"notify_user_ids"`
	NotifyRoles        []model.Role           `json:"notify_roles"`
}

type AlertConfigService interface {
	Upsert(ctx context.Context, in AlertConfigInput) (*model.StockAlert, error)
	List(ctx context.Context, productID uuid.UUID) ([]model.StockAlert, error)
}

type alertConfigService struct {
	alerts   repository.AlertRepository
	products repository.ProductRepository
	users    repository.UserRepository
}

func NewAlertConfigService(alerts repository.AlertRepository, products repository.ProductRepository, users repository.UserRepository) AlertConfigService {
	return &alertConfigService{alerts: alerts, products: products, users: users}
}

func (s *alertConfigService) Upsert(ctx context.Context, in AlertConfigInput) (*model.StockAlert, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	for _, r := range in.NotifyRoles {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidAlertConfig, r)
		}
	}
	if _, err := s.products.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	users := make([]model.User, 0, len(in.NotifyUserIDs))
	for _, id := range in.NotifyUserIDs {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: notify user %s", ErrUserNotFound, id)
			}
			return nil, err
		}
		users = append(users, *u)
	}

	roles := in.NotifyRoles
	if roles == nil {
		roles = []model.Role{}
	}
	alert := &model.StockAlert{
		ProductID:          in.ProductID,
		AlertType:          in.AlertType,
		ThresholdValue:     in.ThresholdValue,
		IsActive:           in.IsActive,
		EmailNotifications: in.EmailNotifications,
		NotifyUsers:        users,
		NotifyRoles:        roles,
	}
	if err := s.alerts.Upsert(ctx, alert); err != nil {
		return nil, err
	}
	return s.alerts.Find(ctx, in.ProductID, in.AlertType)
}

func (s *alertConfigService) List(ctx context.Context, productID uuid.UUID) ([]model.StockAlert, error) {
	return s.alerts.FindByProduct(ctx, productID)
}
