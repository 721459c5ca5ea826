package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeOwner() *models.User {
	return &models.User{ID: "owner-1", FirstName: "Anna", LastName: "Keller", Role: models.OwnerRole}
}

func storeSupplier(id string) *models.User {
	return &models.User{ID: id, OrganizationName: "Supplier " + id, Role: models.SupplierRole}
}

func storeTenderRequest(deadline time.Time) models.TenderRequest {
	return models.TenderRequest{
		Title:       "Fleet leasing",
		Description: "Leasing of 20 delivery vans",
		Budget:      400000,
		Currency:    "EUR",
		Deadline:    deadline,
		Criteria: []models.CriteriaRequest{
			{Name: "Price", Weight: 60},
			{Name: "Quality", Weight: 40},
		},
	}
}

func TestMemoryStoreTenderRoundTrip(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	created, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)
	assert.Equal(t, models.DraftTender, created.Status)
	assert.Equal(t, "Anna Keller", created.OwnerName)
	require.Len(t, created.Criteria, 2)

	fetched, err := store.GetTenderByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Criteria, fetched.Criteria)

	missing, err := store.GetTenderByID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreTenderPagination(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
		require.NoError(t, err)
	}

	page, err := store.GetTenders(ctx, 5, 0, nil)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	rest, err := store.GetTenders(ctx, 5, 5, nil)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	beyond, err := store.GetTenders(ctx, 5, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestMemoryStoreEditTenderNoValidFields(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	created, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)

	_, err = store.EditTender(ctx, created.ID, map[string]interface{}{"unknown": "value"})
	require.Error(t, err)
	errorResponse, ok := err.(*models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, models.KindBadRequest, errorResponse.Kind)

	_, err = store.EditTender(ctx, created.ID, map[string]interface{}{"deadline": "not-a-date"})
	require.Error(t, err)
}

func TestMemoryStoreSubmissionExists(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	tender, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)

	exists, err := store.SubmissionExists(ctx, tender.ID, "supplier-1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.CreateSubmission(ctx, models.SubmissionRequest{TenderID: tender.ID, ProposedPrice: 1000}, storeSupplier("supplier-1"))
	require.NoError(t, err)

	exists, err = store.SubmissionExists(ctx, tender.ID, "supplier-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStoreSelectWinnerGuards(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.SelectWinner(ctx, "no-such-submission")
	require.Error(t, err)
	errorResponse, ok := err.(*models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, models.KindNotFound, errorResponse.Kind)

	// Заявку на черновик не подать через сервис, но хранилище всё равно
	// охраняет выбор победителя по статусу тендера.
	tender, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)
	submission, err := store.CreateSubmission(ctx, models.SubmissionRequest{TenderID: tender.ID, ProposedPrice: 1000}, storeSupplier("supplier-1"))
	require.NoError(t, err)

	_, _, err = store.SelectWinner(ctx, submission.ID)
	require.Error(t, err)
	errorResponse, ok = err.(*models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, models.KindInvalidTransition, errorResponse.Kind)
}

func TestMemoryStoreSelectWinnerDisplacesOthers(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	tender, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)
	_, err = store.UpdateTenderStatus(ctx, tender.ID, models.PublishedTender, nil)
	require.NoError(t, err)

	var submissions []*models.Submission
	for i := 0; i < 3; i++ {
		submission, err := store.CreateSubmission(ctx, models.SubmissionRequest{TenderID: tender.ID, ProposedPrice: 1000}, storeSupplier(fmt.Sprintf("supplier-%d", i)))
		require.NoError(t, err)
		submissions = append(submissions, submission)
	}

	winner, displaced, err := store.SelectWinner(ctx, submissions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.WinnerSubmission, winner.Status)
	require.Len(t, displaced, 2)
	for _, submission := range displaced {
		assert.Equal(t, models.NotSelectedSubmission, submission.Status)
	}

	awarded, err := store.GetTenderByID(ctx, tender.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AwardedTender, awarded.Status)
}

func TestMemoryStoreSaveEvaluationGuardsTerminalStatus(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	tender, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)
	_, err = store.UpdateTenderStatus(ctx, tender.ID, models.PublishedTender, nil)
	require.NoError(t, err)

	winner, err := store.CreateSubmission(ctx, models.SubmissionRequest{TenderID: tender.ID, ProposedPrice: 1000}, storeSupplier("supplier-1"))
	require.NoError(t, err)
	displaced, err := store.CreateSubmission(ctx, models.SubmissionRequest{TenderID: tender.ID, ProposedPrice: 1200}, storeSupplier("supplier-2"))
	require.NoError(t, err)

	_, _, err = store.SelectWinner(ctx, winner.ID)
	require.NoError(t, err)

	// Оценка, опоздавшая к уже награждённому тендеру, не воскрешает
	// терминальную заявку.
	for _, submissionId := range []string{winner.ID, displaced.ID} {
		_, err = store.SaveEvaluation(ctx, submissionId, nil, 80, time.Now())
		require.Error(t, err)
		errorResponse, ok := err.(*models.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, models.KindInvalidTransition, errorResponse.Kind)
	}

	fresh, err := store.GetSubmissionByID(ctx, displaced.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotSelectedSubmission, fresh.Status)
	assert.Nil(t, fresh.TotalScore)

	fresh, err = store.GetSubmissionByID(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WinnerSubmission, fresh.Status)
}

func TestMemoryStoreCloseExpiredTenders(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	expired, err := store.CreateTender(ctx, storeTenderRequest(now.Add(-time.Hour)), storeOwner())
	require.NoError(t, err)
	_, err = store.UpdateTenderStatus(ctx, expired.ID, models.PublishedTender, nil)
	require.NoError(t, err)

	active, err := store.CreateTender(ctx, storeTenderRequest(now.Add(time.Hour)), storeOwner())
	require.NoError(t, err)
	_, err = store.UpdateTenderStatus(ctx, active.ID, models.PublishedTender, nil)
	require.NoError(t, err)

	closed, err := store.CloseExpiredTenders(ctx, now)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, expired.ID, closed[0].ID)
	assert.Equal(t, models.ClosedTender, closed[0].Status)

	// Повторный проход ничего не закрывает.
	again, err := store.CloseExpiredTenders(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMemoryStoreCopiesAreIsolated(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	created, err := store.CreateTender(ctx, storeTenderRequest(time.Now().Add(time.Hour)), storeOwner())
	require.NoError(t, err)

	fetched, err := store.GetTenderByID(ctx, created.ID)
	require.NoError(t, err)
	fetched.Criteria[0].Weight = 999
	fetched.Title = "mutated"

	fresh, err := store.GetTenderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, fresh.Criteria[0].Weight)
	assert.Equal(t, "Fleet leasing", fresh.Title)
}
