package service

import (
	"context"
	"testing"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/testutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	db := testutil.NewDB(t)
	return NewUserService(db, repository.NewUserRepo(db), zerolog.Nop())
}

func TestUserService_CreateUser(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, &CreateUserRequest{
		Email:    " Clerk@Example.com ",
		Password: "secret123",
		FullName: "Store Clerk",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", u.Email)
	assert.Equal(t, model.RoleManager, u.Role)
	assert.Equal(t, model.DefaultPermissions(model.RoleManager), u.Permissions)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{Email: "clerk@example.com", Password: "secret123", FullName: "Again", Role: model.RoleEmployee})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{Email: "x@example.com", Password: "123", FullName: "Short", Role: model.RoleEmployee})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{Email: "y@example.com", Password: "secret123", FullName: "Boss", Role: "owner"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_UpdatePermissions(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, &CreateUserRequest{Email: "clerk@example.com", Password: "secret123", FullName: "Clerk", Role: model.RoleEmployee})
	require.NoError(t, err)

	yes := true
	updated, err := svc.UpdatePermissions(ctx, u.ID, &UpdatePermissionsRequest{AdjustStock: &yes})
	require.NoError(t, err)
	assert.True(t, updated.Permissions.AdjustStock)
	assert.False(t, updated.Permissions.ManageAlerts)

	// A role change resets flags to the new role's defaults first.
	manager := model.RoleManager
	no := false
	updated, err = svc.UpdatePermissions(ctx, u.ID, &UpdatePermissionsRequest{Role: &manager, ManageAlerts: &no})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)
	assert.True(t, updated.Permissions.ManageTransactions)
	assert.False(t, updated.Permissions.ManageAlerts)

	reloaded, err := svc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Permissions, reloaded.Permissions)

	_, err = svc.UpdatePermissions(ctx, uuid.New(), &UpdatePermissionsRequest{AdjustStock: &yes})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_SetActive(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, &CreateUserRequest{Email: "clerk@example.com", Password: "secret123", FullName: "Clerk", Role: model.RoleEmployee})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	got, err := svc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, svc.SetActive(ctx, uuid.New(), true), ErrUserNotFound)
}
