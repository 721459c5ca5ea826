package services

import (
	"context"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
)

// requireUser разрешает действующего пользователя по userId из запроса.
// Пустой или неизвестный userId - ошибка Unauthenticated.
func requireUser(ctx context.Context, users repository.UserRepository, userId string) (*models.User, error) {
	if userId == "" {
		return nil, models.NewUnauthenticated("missing required query parameter: userId")
	}
	user, err := users.GetUserByID(ctx, userId)
	if err != nil {
		return nil, models.NewInternal("failed to check user existence")
	}
	if user == nil {
		return nil, models.NewUnauthenticated("user does not exist")
	}
	return user, nil
}

// requireRole проверяет роль действующего пользователя.
func requireRole(user *models.User, role models.UserRole) error {
	if user.Role != role {
		return models.NewForbidden("this operation requires the " + string(role) + " role")
	}
	return nil
}
