package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/procurement-service/internal/handlers"
	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/router"
	"github.com/senyabanana/procurement-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() http.Handler {
	store := repository.NewMemoryStore()
	logger := log.New(io.Discard, "", 0)
	timeout := time.Second

	notificationService := services.NewNotificationService(store, store, logger, timeout)
	userService := services.NewUserService(store)
	tenderService := services.NewTenderService(store, store, store, notificationService, logger)
	submissionService := services.NewSubmissionService(store, store, store, notificationService, services.NewRandomScorer())

	return router.InitRoutes(
		handlers.NewUserHandler(userService, logger, timeout),
		handlers.NewTenderHandler(tenderService, logger, timeout),
		handlers.NewSubmissionHandler(submissionService, logger, timeout),
		handlers.NewNotificationHandler(notificationService, logger, timeout),
	)
}

func doJSON(t *testing.T, server http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(target))
}

func createTestUser(t *testing.T, server http.Handler, role models.UserRole) models.User {
	t.Helper()
	recorder := doJSON(t, server, http.MethodPost, "/api/users/new", models.UserRequest{
		Email:     string(role) + "@example.com",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var user models.User
	decodeJSON(t, recorder, &user)
	return user
}

func TestPingEndpoint(t *testing.T) {
	server := newTestServer()
	recorder := doJSON(t, server, http.MethodGet, "/api/ping", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
}

func TestTenderLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()
	owner := createTestUser(t, server, models.OwnerRole)

	recorder := doJSON(t, server, http.MethodPost, "/api/tenders/new?userId="+owner.ID, models.TenderRequest{
		Title:       "Office renovation",
		Description: "Full renovation of the main office",
		Budget:      250000,
		Currency:    "EUR",
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
		Criteria: []models.CriteriaRequest{
			{Name: "Price", Weight: 60},
			{Name: "Quality", Weight: 40},
		},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var tender models.Tender
	decodeJSON(t, recorder, &tender)
	assert.Equal(t, models.DraftTender, tender.Status)

	recorder = doJSON(t, server, http.MethodPut, fmt.Sprintf("/api/tenders/%s/publish?userId=%s", tender.ID, owner.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var published models.Tender
	decodeJSON(t, recorder, &published)
	assert.Equal(t, models.PublishedTender, published.Status)
	assert.NotNil(t, published.PublishDate)

	recorder = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/tenders/%s/status", tender.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var status models.TenderStatus
	decodeJSON(t, recorder, &status)
	assert.Equal(t, models.PublishedTender, status)
}

func TestErrorResponseShape(t *testing.T) {
	server := newTestServer()

	// Публикация без userId - ошибка аутентификации в формате {"code","reason"}.
	recorder := doJSON(t, server, http.MethodPut, "/api/tenders/some-id/publish", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	var body map[string]string
	decodeJSON(t, recorder, &body)
	assert.Equal(t, string(models.KindUnauthenticated), body["code"])
	assert.NotEmpty(t, body["reason"])
}

func TestSubmissionConflictOverHTTP(t *testing.T) {
	server := newTestServer()
	owner := createTestUser(t, server, models.OwnerRole)
	supplier := createTestUser(t, server, models.SupplierRole)

	recorder := doJSON(t, server, http.MethodPost, "/api/tenders/new?userId="+owner.ID, models.TenderRequest{
		Title:       "Catering services",
		Description: "Yearly catering contract",
		Budget:      80000,
		Currency:    "EUR",
		Deadline:    time.Now().Add(14 * 24 * time.Hour),
		Criteria:    []models.CriteriaRequest{{Name: "Price", Weight: 100}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var tender models.Tender
	decodeJSON(t, recorder, &tender)

	// Тендер ещё не опубликован - подача заявки отклоняется с 409.
	recorder = doJSON(t, server, http.MethodPost, "/api/submissions/new?userId="+supplier.ID, models.SubmissionRequest{
		TenderID:      tender.ID,
		ProposedPrice: 70000,
	})
	require.Equal(t, http.StatusConflict, recorder.Code)
	var body map[string]string
	decodeJSON(t, recorder, &body)
	assert.Equal(t, string(models.KindTenderNotOpen), body["code"])

	recorder = doJSON(t, server, http.MethodPut, fmt.Sprintf("/api/tenders/%s/publish?userId=%s", tender.ID, owner.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/submissions/new?userId="+supplier.ID, models.SubmissionRequest{
		TenderID:      tender.ID,
		ProposedPrice: 70000,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/submissions/new?userId="+supplier.ID, models.SubmissionRequest{
		TenderID:      tender.ID,
		ProposedPrice: 65000,
	})
	require.Equal(t, http.StatusConflict, recorder.Code)
	decodeJSON(t, recorder, &body)
	assert.Equal(t, string(models.KindDuplicateSubmission), body["code"])
}

func TestDeleteTenderReturnsNoContent(t *testing.T) {
	server := newTestServer()
	owner := createTestUser(t, server, models.OwnerRole)

	recorder := doJSON(t, server, http.MethodPost, "/api/tenders/new?userId="+owner.ID, models.TenderRequest{
		Title:       "Stationery supply",
		Description: "Office stationery",
		Budget:      5000,
		Currency:    "EUR",
		Deadline:    time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var tender models.Tender
	decodeJSON(t, recorder, &tender)

	recorder = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/api/tenders/%s?userId=%s", tender.ID, owner.ID), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/tenders/"+tender.ID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
