package services_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/services"

	"github.com/stretchr/testify/require"
)

// fixedScorer возвращает одну и ту же оценку для любого критерия.
type fixedScorer struct {
	score float64
}

func (s fixedScorer) ScoreCriterion(ctx context.Context, tender *models.Tender, submission *models.Submission, criterion models.EvaluationCriteria) (float64, error) {
	return s.score, nil
}

type testEnv struct {
	store         *repository.MemoryStore
	users         *services.UserService
	tenders       *services.TenderService
	submissions   *services.SubmissionService
	notifications *services.NotificationService
}

func newTestEnv() *testEnv {
	store := repository.NewMemoryStore()
	logger := log.New(io.Discard, "", 0)
	notifications := services.NewNotificationService(store, store, logger, time.Second)

	return &testEnv{
		store:         store,
		users:         services.NewUserService(store),
		tenders:       services.NewTenderService(store, store, store, notifications, logger),
		submissions:   services.NewSubmissionService(store, store, store, notifications, fixedScorer{score: 80}),
		notifications: notifications,
	}
}

func (e *testEnv) createUser(t *testing.T, role models.UserRole, organizationName string) *models.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), models.UserRequest{
		Email:            string(role) + "@example.com",
		FirstName:        "Test",
		LastName:         string(role),
		Role:             role,
		OrganizationName: organizationName,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createTender(t *testing.T, ownerId string, criteria []models.CriteriaRequest) *models.Tender {
	t.Helper()
	tender, err := e.tenders.CreateTender(context.Background(), models.TenderRequest{
		Title:       "Office renovation",
		Description: "Full renovation of the main office",
		Budget:      250000,
		Currency:    "EUR",
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
		Criteria:    criteria,
	}, ownerId)
	require.NoError(t, err)
	return tender
}

func defaultCriteria() []models.CriteriaRequest {
	return []models.CriteriaRequest{
		{Name: "Price", Weight: 40},
		{Name: "Quality", Weight: 35},
		{Name: "Delivery time", Weight: 25},
	}
}

func (e *testEnv) createPublishedTender(t *testing.T, ownerId string) *models.Tender {
	t.Helper()
	tender := e.createTender(t, ownerId, defaultCriteria())
	published, err := e.tenders.PublishTender(context.Background(), tender.ID, ownerId)
	require.NoError(t, err)
	return published
}

func (e *testEnv) createSubmission(t *testing.T, tenderId, supplierId string, price float64) *models.Submission {
	t.Helper()
	submission, err := e.submissions.CreateSubmission(context.Background(), models.SubmissionRequest{
		TenderID:      tenderId,
		ProposedPrice: price,
	}, supplierId)
	require.NoError(t, err)
	return submission
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	errorResponse, ok := err.(*models.ErrorResponse)
	require.True(t, ok, "expected *models.ErrorResponse, got %T: %v", err, err)
	require.Equal(t, kind, errorResponse.Kind)
}
