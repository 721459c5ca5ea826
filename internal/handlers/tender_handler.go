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

// TenderHandler - структура для обработки HTTP-запросов к тендерам.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewTenderHandler создает новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *log.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *TenderHandler) sendError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Kind, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, models.KindInternal, fallback)
}

func (h *TenderHandler) sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Println(err)
	}
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindBadRequest, "invalid request body")
		return
	}
	userId := r.URL.Query().Get("userId")

	newTender, err := h.Service.CreateTender(ctx, tenderReq, userId)
	if err != nil {
		h.sendError(w, err, "failed to create tender")
		return
	}
	h.sendJSON(w, newTender)
}

// GetTenders обрабатывает запросы для получения списка тендеров.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	statuses := r.URL.Query()["status"]

	tenders, err := h.Service.FetchTenders(ctx, limitStr, offsetStr, statuses)
	if err != nil {
		h.sendError(w, err, "failed to retrieve tenders")
		return
	}
	h.sendJSON(w, tenders)
}

// GetUserTenders обрабатывает запросы для получения тендеров владельца.
func (h *TenderHandler) GetUserTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userId := r.URL.Query().Get("userId")

	tenders, err := h.Service.GetUserTenders(ctx, limitStr, offsetStr, userId)
	if err != nil {
		h.sendError(w, err, "failed to retrieve tenders")
		return
	}
	h.sendJSON(w, tenders)
}

// GetTender обрабатывает запросы для получения тендера по ID.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.GetTenderByID(ctx, r.PathValue("tenderId"))
	if err != nil {
		h.sendError(w, err, "failed to retrieve tender")
		return
	}
	h.sendJSON(w, tender)
}

// GetTenderStatus обрабатывает запросы для получения статуса тендера.
func (h *TenderHandler) GetTenderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	status, err := h.Service.GetTenderStatus(ctx, r.PathValue("tenderId"))
	if err != nil {
		h.sendError(w, err, "failed to retrieve tender status")
		return
	}
	h.sendJSON(w, status)
}

// PublishTender обрабатывает запросы для публикации тендера.
func (h *TenderHandler) PublishTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.PublishTender(ctx, r.PathValue("tenderId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to publish tender")
		return
	}
	h.sendJSON(w, tender)
}

// CloseTender обрабатывает запросы для закрытия тендера.
func (h *TenderHandler) CloseTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.CloseTender(ctx, r.PathValue("tenderId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to close tender")
		return
	}
	h.sendJSON(w, tender)
}

// EditTender обрабатывает запросы для изменения черновика тендера.
func (h *TenderHandler) EditTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var updateFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateFields); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.EditTender(ctx, r.PathValue("tenderId"), r.URL.Query().Get("userId"), updateFields)
	if err != nil {
		h.sendError(w, err, "failed to edit tender")
		return
	}
	h.sendJSON(w, tender)
}

// DeleteTender обрабатывает запросы для удаления черновика тендера.
func (h *TenderHandler) DeleteTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteTender(ctx, r.PathValue("tenderId"), r.URL.Query().Get("userId")); err != nil {
		h.sendError(w, err, "failed to delete tender")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTenderStatistics обрабатывает запросы для получения статистики по тендерам.
func (h *TenderHandler) GetTenderStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	stats, err := h.Service.GetTenderStatistics(ctx)
	if err != nil {
		h.sendError(w, err, "failed to retrieve tender statistics")
		return
	}
	h.sendJSON(w, stats)
}
