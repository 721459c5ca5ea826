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

// UserHandler - структура для обработки HTTP-запросов к пользователям.
type UserHandler struct {
	Service *services.UserService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(service *services.UserService, logger *log.Logger, timeout time.Duration) *UserHandler {
	return &UserHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *UserHandler) sendError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Kind, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, models.KindInternal, fallback)
}

// CreateUser обрабатывает запросы для создания пользователя.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var userReq models.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&userReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.CreateUser(ctx, userReq)
	if err != nil {
		h.sendError(w, err, "failed to create user")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(user); err != nil {
		h.Logger.Println(err)
	}
}

// GetUser обрабатывает запросы для получения пользователя по ID.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	user, err := h.Service.GetUserByID(ctx, r.PathValue("userId"))
	if err != nil {
		h.sendError(w, err, "failed to retrieve user")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(user); err != nil {
		h.Logger.Println(err)
	}
}
