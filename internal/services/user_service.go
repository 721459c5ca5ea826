package services

import (
	"context"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
)

type UserService struct {
	Repo repository.UserRepository
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

// CreateUser создает нового пользователя.
func (s *UserService) CreateUser(ctx context.Context, userReq models.UserRequest) (*models.User, error) {
	if userReq.Email == "" || userReq.FirstName == "" || userReq.LastName == "" {
		return nil, models.NewBadRequest("missing required fields: email, firstName or lastName")
	}

	allowedRoles := map[models.UserRole]bool{
		models.AdminRole:    true,
		models.OwnerRole:    true,
		models.SupplierRole: true,
	}
	if !allowedRoles[userReq.Role] {
		return nil, models.NewBadRequest("invalid role, must be 'ADMIN', 'OWNER' or 'SUPPLIER'")
	}

	user, err := s.Repo.CreateUser(ctx, userReq)
	if err != nil {
		return nil, models.NewInternal("failed to create user")
	}
	return user, nil
}

// GetUserByID получает пользователя по ID.
func (s *UserService) GetUserByID(ctx context.Context, userId string) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userId)
	if err != nil {
		return nil, models.NewInternal("failed to retrieve user")
	}
	if user == nil {
		return nil, models.NewNotFound("user not found")
	}
	return user, nil
}
