package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/ws"
	"inventory-plus/pkg/jwt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

type LoginResponse struct {
	Token        string             `json:"token"`
	User         model.UserResponse `json:"user"`
	Capabilities []model.Capability `json:"capabilities"`
}

type TokenValidationResponse struct {
	User         model.UserResponse `json:"user"`
	Capabilities []model.Capability `json:"capabilities"`
	Profile      *model.UserProfile `json:"-"`
	Claims       *jwt.Claims        `json:"-"`
}

type authService struct {
	userRepo repository.UserRepository
	signer   *jwt.Signer
	authz    Authorizer
	hub      ws.Broadcaster
	log      zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, signer *jwt.Signer, authz Authorizer, hub ws.Broadcaster, log zerolog.Logger) AuthService {
	if hub == nil {
		hub = ws.Nop{}
	}
	return &authService{
		userRepo: userRepo,
		signer:   signer,
		authz:    authz,
		hub:      hub,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func capabilityStrings(caps []model.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a new token version invalidates older tokens.
	now := time.Now().UTC()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	caps := s.authz.Capabilities(user.Profile)
	token, err := s.signer.GenerateToken(user.ID, user.Email, user.FullName, string(user.RoleOf()), capabilityStrings(caps), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &LoginResponse{
		Token:        token,
		User:         user.ToResponse(),
		Capabilities: caps,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", ErrValidation)
	}
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	// Existing sessions end with the old password.
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String())
}

// ValidateToken checks the signature, then the user's current state and session version.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.signer.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return &TokenValidationResponse{
		User:         user.ToResponse(),
		Capabilities: s.authz.Capabilities(user.Profile),
		Profile:      user.Profile,
		Claims:       claims,
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(ctx, userID); err != nil {
		return err
	}
	s.hub.Publish(ws.Event{
		Type:   "user_status_update",
		Action: "online",
		Data: map[string]interface{}{
			"user_id":      userID.String(),
			"last_seen_at": time.Now().UTC(),
		},
	})
	return nil
}
