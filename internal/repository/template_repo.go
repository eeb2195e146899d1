package repository

import (
	"context"

	"inventory-plus/internal/model"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *model.NotificationTemplate) error
	Update(ctx context.Context, tmpl *model.NotificationTemplate) error
	FindByName(ctx context.Context, name string) (*model.NotificationTemplate, error)
	FindAll(ctx context.Context) ([]model.NotificationTemplate, error)
}

type templateRepo struct {
	db *gorm.DB
}

func NewTemplateRepo(db *gorm.DB) TemplateRepository {
	return &templateRepo{db}
}

func (r *templateRepo) Create(ctx context.Context, tmpl *model.NotificationTemplate) error {
	return r.db.WithContext(ctx).Create(tmpl).Error
}

func (r *templateRepo) Update(ctx context.Context, tmpl *model.NotificationTemplate) error {
	return r.db.WithContext(ctx).Save(tmpl).Error
}

func (r *templateRepo) FindByName(ctx context.Context, name string) (*model.NotificationTemplate, error) {
	var tmpl model.NotificationTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepo) FindAll(ctx context.Context) ([]model.NotificationTemplate, error) {
	var templates []model.NotificationTemplate
	err := r.db.WithContext(ctx).Order("name ASC").Find(&templates).Error
	return templates, err
}
