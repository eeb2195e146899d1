package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*model.UserResponse, error)
	UpdatePermissions(ctx context.Context, userID uuid.UUID, req *UpdatePermissionsRequest) (*model.UserResponse, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email      string     `json:"email" validate:"required,email"`
	Password   string     `json:"password" validate:"required,min=6"`
	FullName   string     `json:"full_name" validate:"required"`
	Role       model.Role `json:"role" validate:"required,role"`
	Department string     `json:"department" validate:"max=100"`
	Phone      string     `json:"phone" validate:"max=20"`
}

// UpdatePermissionsRequest changes the role and/or individual flags. Nil fields are left alone.
// A role change resets the flags to that role's defaults before the explicit flags apply.
type UpdatePermissionsRequest struct {
	Role               *model.Role `json:"role,omitempty" validate:"omitempty,role"`
	ViewReports        *bool       `json:"view_reports,omitempty"`
	ManageUsers        *bool       `json:"manage_users,omitempty"`
	DeleteRecords      *bool       `json:"delete_records,omitempty"`
	AdjustStock        *bool       `json:"adjust_stock,omitempty"`
	ManageTransactions *bool       `json:"manage_transactions,omitempty"`
	ManageAlerts       *bool       `json:"manage_alerts,omitempty"`
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	log      zerolog.Logger
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, log zerolog.Logger) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
		log:      log.With().Str("component", "users").Logger(),
	}
}

// CreateUser writes the user and its profile in one transaction.
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}
		profile := model.NewUserProfile(user.ID, req.Role, req.Department, req.Phone)
		if err := s.userRepo.CreateProfile(tx, profile); err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Str("role", string(user.RoleOf())).Msg("user created")
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdatePermissions(ctx context.Context, userID uuid.UUID, req *UpdatePermissionsRequest) (*model.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile := user.Profile
	if profile == nil {
		profile = model.NewUserProfile(user.ID, model.RoleEmployee, "", "")
	}
	if req.Role != nil && *req.Role != profile.Role {
		profile.Role = *req.Role
		profile.Permissions = model.DefaultPermissions(*req.Role)
	}
	p := &profile.Permissions
	setFlag(&p.ViewReports, req.ViewReports)
	setFlag(&p.ManageUsers, req.ManageUsers)
	setFlag(&p.DeleteRecords, req.DeleteRecords)
	setFlag(&p.AdjustStock, req.AdjustStock)
	setFlag(&p.ManageTransactions, req.ManageTransactions)
	setFlag(&p.ManageAlerts, req.ManageAlerts)

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	resp := user.ToResponse()
	return &resp, nil
}

func setFlag(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *userService) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	user.IsActive = active
	return s.userRepo.Update(ctx, user)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}
