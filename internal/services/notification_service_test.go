package services_test

import (
	"context"
	"testing"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationReadFlow(t *testing.T) {
	env := newTestEnv()
	supplier := env.createUser(t, models.SupplierRole, "")

	first, err := env.notifications.CreateNotification(context.Background(), supplier.ID, models.SystemNotification, "Welcome", "Account created", "")
	require.NoError(t, err)
	_, err = env.notifications.CreateNotification(context.Background(), supplier.ID, models.SystemNotification, "Reminder", "Deadline approaching", "")
	require.NoError(t, err)

	count, err := env.notifications.GetUnreadCount(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	read, err := env.notifications.MarkAsRead(context.Background(), first.ID, supplier.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	count, err = env.notifications.GetUnreadCount(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, env.notifications.MarkAllAsRead(context.Background(), supplier.ID))
	count, err = env.notifications.GetUnreadCount(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkAsReadOwnership(t *testing.T) {
	env := newTestEnv()
	supplier := env.createUser(t, models.SupplierRole, "")
	stranger := env.createUser(t, models.SupplierRole, "")

	notification, err := env.notifications.CreateNotification(context.Background(), supplier.ID, models.SystemNotification, "Welcome", "Account created", "")
	require.NoError(t, err)

	_, err = env.notifications.MarkAsRead(context.Background(), notification.ID, stranger.ID)
	requireKind(t, err, models.KindForbidden)

	// Отказ не меняет флаг прочтения: уведомление остаётся непрочитанным.
	count, err := env.notifications.GetUnreadCount(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = env.notifications.MarkAsRead(context.Background(), "no-such-notification", supplier.ID)
	requireKind(t, err, models.KindNotFound)
}

func TestNotificationsRequireUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.notifications.GetUserNotifications(context.Background(), "", "50", "0")
	requireKind(t, err, models.KindUnauthenticated)

	_, err = env.notifications.GetUnreadCount(context.Background(), "")
	requireKind(t, err, models.KindUnauthenticated)

	err = env.notifications.MarkAllAsRead(context.Background(), "")
	requireKind(t, err, models.KindUnauthenticated)
}

func TestGetUserNotificationsPagination(t *testing.T) {
	env := newTestEnv()
	supplier := env.createUser(t, models.SupplierRole, "")

	for i := 0; i < 7; i++ {
		_, err := env.notifications.CreateNotification(context.Background(), supplier.ID, models.SystemNotification, "Ping", "message", "")
		require.NoError(t, err)
	}

	page, err := env.notifications.GetUserNotifications(context.Background(), supplier.ID, "5", "0")
	require.NoError(t, err)
	assert.Len(t, page, 5)

	rest, err := env.notifications.GetUserNotifications(context.Background(), supplier.ID, "5", "5")
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
