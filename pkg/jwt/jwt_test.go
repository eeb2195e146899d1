package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("unit-test-secret", 1, "inventory-plus-test")
	id := uuid.New()

	tok, err := s.GenerateToken(id, "a@example.com", "Alice", "manager", []string{"adjust_stock"}, "v1")
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, []string{"adjust_stock"}, claims.Capabilities)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, "inventory-plus-test", claims.Issuer)
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	tok, err := NewSigner("secret-a", 1, "x").GenerateToken(uuid.New(), "", "", "admin", nil, "")
	require.NoError(t, err)

	_, err = NewSigner("secret-b", 1, "x").ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_MissingToken(t *testing.T) {
	_, err := NewSigner("s", 1, "x").ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
