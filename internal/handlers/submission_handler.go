package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/services"
	"github.com/senyabanana/procurement-service/internal/utils"
)

// SubmissionHandler - структура для обработки HTTP-запросов к заявкам.
type SubmissionHandler struct {
	Service *services.SubmissionService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewSubmissionHandler создает новый экземпляр SubmissionHandler.
func NewSubmissionHandler(service *services.SubmissionService, logger *log.Logger, timeout time.Duration) *SubmissionHandler {
	return &SubmissionHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *SubmissionHandler) sendError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Kind, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, models.KindInternal, fallback)
}

func (h *SubmissionHandler) sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Println(err)
	}
}

// CreateSubmission обрабатывает запросы для подачи заявки.
func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var submissionReq models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&submissionReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindBadRequest, "invalid request body")
		return
	}

	submission, err := h.Service.CreateSubmission(ctx, submissionReq, r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to create submission")
		return
	}
	h.sendJSON(w, submission)
}

// GetSupplierSubmissions обрабатывает запросы для получения заявок поставщика.
func (h *SubmissionHandler) GetSupplierSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userId := r.URL.Query().Get("userId")

	submissions, err := h.Service.GetSupplierSubmissions(ctx, userId, limitStr, offsetStr)
	if err != nil {
		h.sendError(w, err, "failed to retrieve submissions")
		return
	}
	h.sendJSON(w, submissions)
}

// GetTenderSubmissions обрабатывает запросы для получения заявок по тендеру.
func (h *SubmissionHandler) GetTenderSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userId := r.URL.Query().Get("userId")

	submissions, err := h.Service.GetTenderSubmissions(ctx, r.PathValue("tenderId"), userId, limitStr, offsetStr)
	if err != nil {
		h.sendError(w, err, "failed to retrieve submissions")
		return
	}
	h.sendJSON(w, submissions)
}

// GetSubmissionStatus обрабатывает запросы для получения статуса заявки.
func (h *SubmissionHandler) GetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	status, err := h.Service.GetSubmissionStatus(ctx, r.PathValue("submissionId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to retrieve submission status")
		return
	}
	h.sendJSON(w, status)
}

// EvaluateSubmission обрабатывает запросы для оценки заявки.
func (h *SubmissionHandler) EvaluateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	submission, err := h.Service.EvaluateSubmission(ctx, r.PathValue("submissionId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to evaluate submission")
		return
	}
	h.sendJSON(w, submission)
}

// AcceptSubmission обрабатывает запросы для одобрения заявки.
func (h *SubmissionHandler) AcceptSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	submission, err := h.Service.AcceptSubmission(ctx, r.PathValue("submissionId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to accept submission")
		return
	}
	h.sendJSON(w, submission)
}

// RejectSubmission обрабатывает запросы для отклонения заявки.
func (h *SubmissionHandler) RejectSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	submission, err := h.Service.RejectSubmission(ctx, r.PathValue("submissionId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to reject submission")
		return
	}
	h.sendJSON(w, submission)
}

// SelectWinner обрабатывает запросы для выбора победителя тендера.
func (h *SubmissionHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	winner, err := h.Service.SelectWinner(ctx, r.PathValue("submissionId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to select winner")
		return
	}
	h.sendJSON(w, winner)
}
