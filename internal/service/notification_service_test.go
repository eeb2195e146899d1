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

func TestNotificationService_VisibilityAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewNotificationRepo(db)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice@example.com", model.RoleEmployee)
	bob := testutil.CreateUser(t, db, "bob@example.com", model.RoleEmployee)

	seed := []*model.Notification{
		{Type: model.NotifOutOfStock, Title: "Out of Stock: Milk", Message: "m", Priority: model.PriorityUrgent},
		{Type: model.NotifLowStock, Title: "Low Stock Alert: Eggs", Message: "m", Priority: model.PriorityHigh},
		{Type: model.NotifUser, Title: "For Alice", Message: "m", UserID: &alice.ID},
		{Type: model.NotifUser, Title: "For Bob", Message: "m", Priority: model.PriorityUrgent, UserID: &bob.ID},
	}
	for _, n := range seed {
		require.NoError(t, repo.Create(ctx, n))
	}

	list, err := svc.List(ctx, alice.ID, repository.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	for _, n := range list {
		assert.NotEqual(t, "For Bob", n.Title)
	}

	counts, err := svc.Counts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, NotificationCounts{Unread: 3, Urgent: 1}, *counts)

	urgent, err := svc.List(ctx, bob.ID, repository.NotificationFilter{Priority: model.PriorityUrgent})
	require.NoError(t, err)
	assert.Len(t, urgent, 2)

	recent, err := svc.Recent(ctx, alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestNotificationService_ReadState(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewNotificationRepo(db)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice@example.com", model.RoleEmployee)

	a := &model.Notification{Type: model.NotifSystem, Title: "a", Message: "m", Priority: model.PriorityUrgent}
	b := &model.Notification{Type: model.NotifSystem, Title: "b", Message: "m"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, svc.MarkRead(ctx, a.ID))
	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	counts, err := svc.Counts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, NotificationCounts{Unread: 1, Urgent: 0}, *counts)

	require.NoError(t, svc.MarkUnread(ctx, a.ID))
	n, err := svc.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	unread, err := svc.List(ctx, alice.ID, repository.NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationService_NotFound(t *testing.T) {
	svc := NewNotificationService(repository.NewNotificationRepo(testutil.NewDB(t)))
	ctx := context.Background()
	missing := uuid.New()

	assert.ErrorIs(t, svc.MarkRead(ctx, missing), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkUnread(ctx, missing), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, missing), ErrNotificationNotFound)
	_, err := svc.Get(ctx, missing)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
