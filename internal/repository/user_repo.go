package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository - интерфейс для работы с пользователями.
// Хранение токенов и аутентификация остаются за внешним сервисом,
// здесь только учётные записи для проверок прав и рассылок.
type UserRepository interface {
	CreateUser(ctx context.Context, userReq models.UserRequest) (*models.User, error)
	GetUserByID(ctx context.Context, userId string) (*models.User, error)
	GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresUserRepository создает новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, email, first_name, last_name, role, organization_name, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.OrganizationName,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser создает нового пользователя.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, userReq models.UserRequest) (*models.User, error) {
	newUser := models.User{
		ID:               uuid.New().String(),
		Email:            userReq.Email,
		FirstName:        userReq.FirstName,
		LastName:         userReq.LastName,
		Role:             userReq.Role,
		OrganizationName: userReq.OrganizationName,
		CreatedAt:        time.Now().UTC(),
	}
	insertQuery := `INSERT INTO users (id, email, first_name, last_name, role, organization_name, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newUser.ID,
		newUser.Email,
		newUser.FirstName,
		newUser.LastName,
		newUser.Role,
		newUser.OrganizationName,
		newUser.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newUser, nil
}

// GetUserByID возвращает пользователя по ID, (nil, nil) если не найден.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, userId string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRow(ctx, query, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUsersByRole возвращает всех пользователей с указанной ролью.
func (r *PostgresUserRepository) GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
