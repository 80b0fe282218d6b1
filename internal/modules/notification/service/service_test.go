package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/realorai/internal/entity"
	notifRepo "anoa.com/realorai/internal/modules/notification/repository"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notify(t *testing.T, svc notifService.NotificationService, user *entity.User, msg string) *entity.Notification {
	t.Helper()
	n := &entity.Notification{UserID: user.ID, Type: entity.NotifyVoteScored, Message: msg}
	require.NoError(t, svc.CreateNotification(context.Background(), n))
	return n
}

func TestNotifications_ReadFlow(t *testing.T) {
	db := testutil.SetupDB(t)
	rdb, _ := testutil.SetupRedis(t)
	svc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), rdb, 0)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "reader")
	other := testutil.CreateUser(t, db, "other")

	sub := rdb.Subscribe(ctx, notifService.Channel(user.ID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	first := notify(t, svc, user, "first")
	notify(t, svc, user, "second")
	notify(t, svc, other, "not yours")

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, "first")

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, other.ID, first.ID), apperror.ErrNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, user.ID, uuid.New()), apperror.ErrNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, user.ID, first.ID))

	unread, total, err := svc.GetNotifications(ctx, user.ID, notifRepo.ListFilter{UnreadOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Message)

	updated, err := svc.MarkAllAsRead(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	all, total, err := svc.GetNotifications(ctx, user.ID, notifRepo.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, n := range all {
		assert.True(t, n.IsRead)
		assert.NotNil(t, n.ReadAt)
	}
}

func TestNotifications_Prune(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, 24*time.Hour)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "pruned")
	old := notify(t, svc, user, "old")
	recent := notify(t, svc, user, "recent")
	notify(t, svc, user, "unread")

	require.NoError(t, db.Model(&entity.Notification{}).Where("id = ?", old.ID).
		Updates(map[string]any{"is_read": true, "read_at": time.Now().Add(-48 * time.Hour)}).Error)
	require.NoError(t, svc.MarkAsRead(ctx, user.ID, recent.ID))

	n, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, total, err := svc.GetNotifications(ctx, user.ID, notifRepo.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	keepAll := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, 0)
	n, err = keepAll.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
