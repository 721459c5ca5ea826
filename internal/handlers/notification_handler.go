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

// NotificationHandler - структура для обработки HTTP-запросов к уведомлениям.
type NotificationHandler struct {
	Service *services.NotificationService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewNotificationHandler создает новый экземпляр NotificationHandler.
func NewNotificationHandler(service *services.NotificationService, logger *log.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *NotificationHandler) sendError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Kind, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, models.KindInternal, fallback)
}

func (h *NotificationHandler) sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Println(err)
	}
}

// GetUserNotifications обрабатывает запросы для получения уведомлений пользователя.
func (h *NotificationHandler) GetUserNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userId := r.URL.Query().Get("userId")

	notifications, err := h.Service.GetUserNotifications(ctx, userId, limitStr, offsetStr)
	if err != nil {
		h.sendError(w, err, "failed to retrieve notifications")
		return
	}
	h.sendJSON(w, notifications)
}

// GetUnreadCount обрабатывает запросы для получения числа непрочитанных уведомлений.
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	count, err := h.Service.GetUnreadCount(ctx, r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to retrieve unread count")
		return
	}
	h.sendJSON(w, map[string]int{"unreadCount": count})
}

// MarkAsRead обрабатывает запросы для пометки уведомления прочитанным.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	notification, err := h.Service.MarkAsRead(ctx, r.PathValue("notificationId"), r.URL.Query().Get("userId"))
	if err != nil {
		h.sendError(w, err, "failed to mark notification as read")
		return
	}
	h.sendJSON(w, notification)
}

// MarkAllAsRead обрабатывает запросы для пометки всех уведомлений прочитанными.
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.MarkAllAsRead(ctx, r.URL.Query().Get("userId")); err != nil {
		h.sendError(w, err, "failed to mark notifications as read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
