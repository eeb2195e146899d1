package repository

import (
	"context"
	"time"

	"inventory-plus/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(tx *gorm.DB, user *model.User) error
	CreateProfile(tx *gorm.DB, profile *model.UserProfile) error
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdateProfile(ctx context.Context, profile *model.UserProfile) error
	FindAll(ctx context.Context) ([]model.User, error)
	FindPrivilegedRecipients(ctx context.Context) ([]model.User, error)
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
	UpdateLastSeen(ctx context.Context, userID uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(tx *gorm.DB, user *model.User) error {
	return tx.Omit("Profile").Create(user).Error
}

func (r *userRepo) CreateProfile(tx *gorm.DB, profile *model.UserProfile) error {
	return tx.Create(profile).Error
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Profile").Save(user).Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) UpdateProfile(ctx context.Context, profile *model.UserProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Preload("Profile").Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindPrivilegedRecipients returns active admins and managers that have an email address.
func (r *userRepo) FindPrivilegedRecipients(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("users.is_active = ? AND users.email <> ''", true).
		Where("user_profiles.role IN ?", []model.Role{model.RoleAdmin, model.RoleManager}).
		Order("users.email ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", time.Now().UTC()).Error
}
