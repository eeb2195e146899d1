package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string         `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	TokenVersion string         `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	LastSeenAt   *time.Time     `json:"last_seen_at,omitempty"`
	Profile      *UserProfile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// UserProfile holds the role and capability flags of a user.
type UserProfile struct {
	BaseModel
	UserID      uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Role        Role        `gorm:"type:varchar(20);not null;index" json:"role"`
	Department  string      `gorm:"type:varchar(100)" json:"department,omitempty"`
	Phone       string      `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Permissions Permissions `gorm:"embedded;embeddedPrefix:can_" json:"permissions"`
}

// NewUserProfile builds the profile row for a freshly created user.
// An unknown role falls back to employee.
func NewUserProfile(userID uuid.UUID, role Role, department, phone string) *UserProfile {
	if !role.Valid() {
		role = RoleEmployee
	}
	return &UserProfile{
		UserID:      userID,
		Role:        role,
		Department:  department,
		Phone:       phone,
		Permissions: DefaultPermissions(role),
	}
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// RoleOf returns the profile role, or employee when the profile is missing.
func (u *User) RoleOf() Role {
	if u.Profile == nil {
		return RoleEmployee
	}
	return u.Profile.Role
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	IsActive    bool        `json:"is_active"`
	Role        Role        `json:"role"`
	Department  string      `json:"department,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Permissions Permissions `json:"permissions"`
	LastSeenAt  *time.Time  `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		Role:       u.RoleOf(),
		LastSeenAt: u.LastSeenAt,
		CreatedAt:  u.CreatedAt,
	}
	if u.Profile != nil {
		resp.Department = u.Profile.Department
		resp.Phone = u.Profile.Phone
		resp.Permissions = u.Profile.Permissions
	}
	return resp
}
