package service

import (
	"context"
	"testing"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertConfigService_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAlertConfigService(repository.NewAlertRepo(db), repository.NewProductRepo(db), repository.NewUserRepo(db))
	ctx := context.Background()

	p := testutil.CreateProduct(t, db, "P-1", 10, 5)
	alice := testutil.CreateUser(t, db, "alice@example.com", model.RoleManager)
	bob := testutil.CreateUser(t, db, "bob@example.com", model.RoleEmployee)
	threshold := 8

	first, err := svc.Upsert(ctx, AlertConfigInput{
		ProductID:          p.ID,
		AlertType:          model.NotifLowStock,
		ThresholdValue:     &threshold,
		IsActive:           true,
		EmailNotifications: true,
		NotifyUserIDs:      []uuid.UUID{alice.ID, bob.ID},
		NotifyRoles:        []model.Role{model.RoleManager},
	})
	require.NoError(t, err)
	assert.Len(t, first.NotifyUsers, 2)
	assert.Equal(t, []model.Role{model.RoleManager}, first.NotifyRoles)

	second, err := svc.Upsert(ctx, AlertConfigInput{
		ProductID:     p.ID,
		AlertType:     model.NotifLowStock,
		IsActive:      false,
		NotifyUserIDs: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsActive)
	assert.Nil(t, second.ThresholdValue)
	require.Len(t, second.NotifyUsers, 1)
	assert.Equal(t, bob.ID, second.NotifyUsers[0].ID)

	list, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAlertConfigService_Rejects(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAlertConfigService(repository.NewAlertRepo(db), repository.NewProductRepo(db), repository.NewUserRepo(db))
	ctx := context.Background()
	p := testutil.CreateProduct(t, db, "P-1", 10, 5)

	_, err := svc.Upsert(ctx, AlertConfigInput{ProductID: p.ID, AlertType: model.NotifLowStock, NotifyRoles: []model.Role{"janitor"}})
	assert.ErrorIs(t, err, ErrInvalidAlertConfig)

	_, err = svc.Upsert(ctx, AlertConfigInput{ProductID: uuid.New(), AlertType: model.NotifLowStock})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Upsert(ctx, AlertConfigInput{ProductID: p.ID, AlertType: model.NotifLowStock, NotifyUserIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Upsert(ctx, AlertConfigInput{ProductID: p.ID, AlertType: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)
}
