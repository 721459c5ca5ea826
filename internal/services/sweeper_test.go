package services_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweeper(env *testEnv) *services.DeadlineSweeper {
	return services.NewDeadlineSweeper(env.store, env.store, env.notifications, time.Minute, log.New(io.Discard, "", 0))
}

func (e *testEnv) createTenderWithDeadline(t *testing.T, ownerId string, deadline time.Time) *models.Tender {
	t.Helper()
	tender, err := e.tenders.CreateTender(context.Background(), models.TenderRequest{
		Title:       "Bridge maintenance",
		Description: "Annual maintenance works",
		Budget:      50000,
		Currency:    "EUR",
		Deadline:    deadline,
		Criteria:    defaultCriteria(),
	}, ownerId)
	require.NoError(t, err)
	return tender
}

func TestSweepOnceClosesExpiredTenders(t *testing.T) {
	env := newTestEnv()
	owner := env.createUser(t, models.OwnerRole, "")
	sweeper := newSweeper(env)

	now := time.Now()
	expired := env.createTenderWithDeadline(t, owner.ID, now.Add(-time.Hour))
	_, err := env.tenders.PublishTender(context.Background(), expired.ID, owner.ID)
	require.NoError(t, err)

	active := env.createTenderWithDeadline(t, owner.ID, now.Add(time.Hour))
	_, err = env.tenders.PublishTender(context.Background(), active.ID, owner.ID)
	require.NoError(t, err)

	expiredDraft := env.createTenderWithDeadline(t, owner.ID, now.Add(-time.Hour))

	closed, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, expired.ID, closed[0].ID)

	status, err := env.tenders.GetTenderStatus(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClosedTender, status)

	status, err = env.tenders.GetTenderStatus(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishedTender, status)

	status, err = env.tenders.GetTenderStatus(context.Background(), expiredDraft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftTender, status)
}

func TestSweepOnceDoesNotReopenResolvedTenders(t *testing.T) {
	env := newTestEnv()
	owner := env.createUser(t, models.OwnerRole, "")
	supplier := env.createUser(t, models.SupplierRole, "")
	sweeper := newSweeper(env)

	awarded := env.createTenderWithDeadline(t, owner.ID, time.Now().Add(-time.Hour))
	_, err := env.tenders.PublishTender(context.Background(), awarded.ID, owner.ID)
	require.NoError(t, err)
	submission := env.createSubmission(t, awarded.ID, supplier.ID, 1000)
	_, err = env.submissions.EvaluateSubmission(context.Background(), submission.ID, owner.ID)
	require.NoError(t, err)
	_, err = env.submissions.SelectWinner(context.Background(), submission.ID, owner.ID)
	require.NoError(t, err)

	closed, err := sweeper.SweepOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, closed)

	status, err := env.tenders.GetTenderStatus(context.Background(), awarded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwardedTender, status)
}

func TestSweepOnceNotifiesSubmitters(t *testing.T) {
	env := newTestEnv()
	owner := env.createUser(t, models.OwnerRole, "")
	supplier := env.createUser(t, models.SupplierRole, "")
	sweeper := newSweeper(env)

	expired := env.createTenderWithDeadline(t, owner.ID, time.Now().Add(time.Minute))
	_, err := env.tenders.PublishTender(context.Background(), expired.ID, owner.ID)
	require.NoError(t, err)
	env.createSubmission(t, expired.ID, supplier.ID, 1000)

	_, err = sweeper.SweepOnce(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	env.notifications.Wait()

	notifications, err := env.notifications.GetUserNotifications(context.Background(), supplier.ID, "50", "0")
	require.NoError(t, err)
	var types []models.NotificationType
	for _, notification := range notifications {
		types = append(types, notification.Type)
	}
	assert.Contains(t, types, models.TenderClosedNotification)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	env := newTestEnv()
	sweeper := services.NewDeadlineSweeper(env.store, env.store, env.notifications, time.Millisecond, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
