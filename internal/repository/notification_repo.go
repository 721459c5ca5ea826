package repository

import (
	"context"
	"errors"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository - интерфейс для работы с уведомлениями.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification models.Notification) error
	GetNotificationByID(ctx context.Context, notificationId string) (*models.Notification, error)
	GetUserNotifications(ctx context.Context, userId string, limit, offset int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, userId string) (int, error)
	MarkAsRead(ctx context.Context, notificationId string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userId string) error
}

// PostgresNotificationRepository - реализация NotificationRepository для базы данных.
type PostgresNotificationRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresNotificationRepository создает новый экземпляр PostgresNotificationRepository.
func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{DB: db}
}

const notificationColumns = `id, user_id, type, title, message, read, related_entity_id, created_at`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var notification models.Notification
	err := row.Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Type,
		&notification.Title,
		&notification.Message,
		&notification.Read,
		&notification.RelatedEntityID,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// CreateNotification сохраняет уведомление.
func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, notification models.Notification) error {
	insertQuery := `INSERT INTO notification (id, user_id, type, title, message, read, related_entity_id, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Read,
		notification.RelatedEntityID,
		notification.CreatedAt)
	return err
}

// GetNotificationByID возвращает уведомление по ID, (nil, nil) если не найдено.
func (r *PostgresNotificationRepository) GetNotificationByID(ctx context.Context, notificationId string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notification WHERE id = $1`
	notification, err := scanNotification(r.DB.QueryRow(ctx, query, notificationId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return notification, nil
}

// GetUserNotifications возвращает уведомления пользователя, свежие первыми.
func (r *PostgresNotificationRepository) GetUserNotifications(ctx context.Context, userId string, limit, offset int) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notification
	          WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}
	return notifications, rows.Err()
}

// GetUnreadCount возвращает количество непрочитанных уведомлений пользователя.
func (r *PostgresNotificationRepository) GetUnreadCount(ctx context.Context, userId string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notification WHERE user_id = $1 AND read = FALSE`
	err := r.DB.QueryRow(ctx, query, userId).Scan(&count)
	return count, err
}

// MarkAsRead помечает уведомление прочитанным.
func (r *PostgresNotificationRepository) MarkAsRead(ctx context.Context, notificationId string) (*models.Notification, error) {
	query := `UPDATE notification SET read = TRUE WHERE id = $1 RETURNING ` + notificationColumns
	notification, err := scanNotification(r.DB.QueryRow(ctx, query, notificationId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return notification, nil
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
func (r *PostgresNotificationRepository) MarkAllAsRead(ctx context.Context, userId string) error {
	_, err := r.DB.Exec(ctx, `UPDATE notification SET read = TRUE WHERE user_id = $1`, userId)
	return err
}
