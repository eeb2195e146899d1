package service

import (
	"context"
	"testing"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/testutil"
	"inventory-plus/pkg/jwt"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	db   *gorm.DB
	auth AuthService
	hub  *testutil.Broadcaster
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewDB(t)
	hub := &testutil.Broadcaster{}
	signer := jwt.NewSigner("test-secret", 1, "inventory-plus-test")
	return &authFixture{
		db:   db,
		auth: NewAuthService(repository.NewUserRepo(db), signer, NewAuthorizer(), hub, zerolog.Nop()),
		hub:  hub,
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "manager@example.com", model.RoleManager)

	res, err := f.auth.Login(ctx, " Manager@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.RoleManager, res.User.Role)
	assert.Contains(t, res.Capabilities, model.CapAdjustStock)
	assert.NotContains(t, res.Capabilities, model.CapManageUsers)

	v, err := f.auth.ValidateToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, v.User.ID)
	require.NotNil(t, v.Profile)
	assert.Equal(t, model.RoleManager, v.Profile.Role)

	_, err = f.auth.Login(ctx, "manager@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SingleSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "clerk@example.com", model.RoleEmployee)

	first, err := f.auth.Login(ctx, "clerk@example.com", "secret123")
	require.NoError(t, err)
	second, err := f.auth.Login(ctx, "clerk@example.com", "secret123")
	require.NoError(t, err)

	_, err = f.auth.ValidateToken(ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = f.auth.ValidateToken(ctx, second.Token)
	assert.NoError(t, err)
}

func TestLogin_InactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "clerk@example.com", model.RoleEmployee)

	res, err := f.auth.Login(ctx, "clerk@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
	_, err = f.auth.ValidateToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUserInactive)
	_, err = f.auth.Login(ctx, "clerk@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePassword_EndsSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "clerk@example.com", model.RoleEmployee)

	res, err := f.auth.Login(ctx, "clerk@example.com", "secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, f.auth.ChangePassword(ctx, "clerk@example.com", "nope", "newsecret"), ErrWrongPassword)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, "clerk@example.com", "secret123", "123"), ErrValidation)
	require.NoError(t, f.auth.ChangePassword(ctx, "clerk@example.com", "secret123", "newsecret"))

	_, err = f.auth.ValidateToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)

	_, err = f.auth.Login(ctx, "clerk@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "clerk@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestHeartbeat(t *testing.T) {
	f := newAuthFixture(t)
	u := testutil.CreateUser(t, f.db, "clerk@example.com", model.RoleEmployee)

	require.NoError(t, f.auth.Heartbeat(context.Background(), u.ID))
	assert.Equal(t, []string{"online"}, f.hub.Actions())
}
