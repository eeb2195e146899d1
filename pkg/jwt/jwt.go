package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const devSecret = "dev-only-secret-change-me"

// Claims represents the JWT claims structure
type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Capabilities []string  `json:"capabilities"`
	TokenVersion string    `json:"token_version"`
	jwt.RegisteredClaims
}

// Signer issues and validates HS256 tokens with one secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewSigner falls back to a fixed development secret when secret is empty;
// config validation refuses that outside development.
func NewSigner(secret string, expirationHours int, issuer string) *Signer {
	if secret == "" {
		secret = devSecret
	}
	if expirationHours <= 0 {
		expirationHours = 24
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    time.Duration(expirationHours) * time.Hour,
		issuer: issuer,
	}
}

// GenerateToken creates a new JWT token for a user
func (s *Signer) GenerateToken(userID uuid.UUID, email, name, role string, capabilities []string, tokenVersion string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		Email:        email,
		Name:         name,
		Role:         role,
		Capabilities: capabilities,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a JWT token
func (s *Signer) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
