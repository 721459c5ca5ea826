package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// TenderRepository - интерфейс для работы с тендерами.
// Методы чтения возвращают (nil, nil), если сущность не найдена.
type TenderRepository interface {
	CreateTender(ctx context.Context, tenderReq models.TenderRequest, owner *models.User) (*models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error)
	GetUserTenders(ctx context.Context, limit, offset int, ownerId string) ([]models.Tender, error)
	GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error)
	UpdateTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus, publishDate *time.Time) (*models.Tender, error)
	EditTender(ctx context.Context, tenderId string, updateFields map[string]interface{}) (*models.Tender, error)
	DeleteTender(ctx context.Context, tenderId string) error
	CloseExpiredTenders(ctx context.Context, now time.Time) ([]models.Tender, error)
	GetTenderStatistics(ctx context.Context) (*models.TenderStatistics, error)
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

const tenderColumns = `id, title, description, budget, currency, status, owner_id, owner_name, publish_date, deadline, document_ids, created_at, updated_at`

func scanTender(row pgx.Row) (*models.Tender, error) {
	var tender models.Tender
	err := row.Scan(
		&tender.ID,
		&tender.Title,
		&tender.Description,
		&tender.Budget,
		&tender.Currency,
		&tender.Status,
		&tender.OwnerID,
		&tender.OwnerName,
		&tender.PublishDate,
		&tender.Deadline,
		&tender.DocumentIDs,
		&tender.CreatedAt,
		&tender.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tender, nil
}

// loadCriteria подгружает критерии оценки для тендера.
func (r *PostgresTenderRepository) loadCriteria(ctx context.Context, tenderId string) ([]models.EvaluationCriteria, error) {
	query := `SELECT id, name, weight, description FROM tender_criteria WHERE tender_id = $1 ORDER BY position`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []models.EvaluationCriteria
	for rows.Next() {
		var criterion models.EvaluationCriteria
		if err := rows.Scan(&criterion.ID, &criterion.Name, &criterion.Weight, &criterion.Description); err != nil {
			return nil, err
		}
		criteria = append(criteria, criterion)
	}
	return criteria, rows.Err()
}

// CreateTender создает новый тендер вместе с критериями оценки в одной транзакции.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, tenderReq models.TenderRequest, owner *models.User) (*models.Tender, error) {
	now := time.Now().UTC()
	newTender := models.Tender{
		ID:          uuid.New().String(),
		Title:       tenderReq.Title,
		Description: tenderReq.Description,
		Budget:      tenderReq.Budget,
		Currency:    tenderReq.Currency,
		Status:      models.DraftTender,
		OwnerID:     owner.ID,
		OwnerName:   owner.DisplayName(),
		Deadline:    tenderReq.Deadline,
		DocumentIDs: tenderReq.DocumentIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if newTender.DocumentIDs == nil {
		newTender.DocumentIDs = []string{}
	}
	for _, criterionReq := range tenderReq.Criteria {
		newTender.Criteria = append(newTender.Criteria, models.EvaluationCriteria{
			ID:          uuid.New().String(),
			Name:        criterionReq.Name,
			Weight:      criterionReq.Weight,
			Description: criterionReq.Description,
		})
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
       INSERT INTO tender (id, title, description, budget, currency, status, owner_id, owner_name, deadline, document_ids, created_at, updated_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
   `,
		newTender.ID,
		newTender.Title,
		newTender.Description,
		newTender.Budget,
		newTender.Currency,
		newTender.Status,
		newTender.OwnerID,
		newTender.OwnerName,
		newTender.Deadline,
		pq.Array(newTender.DocumentIDs),
		newTender.CreatedAt,
		newTender.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tender: %w", err)
	}

	criteriaInsertQuery := `INSERT INTO tender_criteria (id, tender_id, name, weight, description, position)
	                        VALUES ($1, $2, $3, $4, $5, $6)`
	for i, criterion := range newTender.Criteria {
		_, err = tx.Exec(ctx, criteriaInsertQuery, criterion.ID, newTender.ID, criterion.Name, criterion.Weight, criterion.Description, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert tender criteria: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &newTender, nil
}

// GetTenders возвращает список тендеров с фильтром по статусам.
func (r *PostgresTenderRepository) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender`
	var filters []string
	var args []interface{}
	argIndex := 1

	if len(statuses) > 0 {
		filters = append(filters, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return r.queryTenders(ctx, query, args...)
}

// GetUserTenders возвращает список тендеров владельца.
func (r *PostgresTenderRepository) GetUserTenders(ctx context.Context, limit, offset int, ownerId string) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryTenders(ctx, query, ownerId, limit, offset)
}

func (r *PostgresTenderRepository) queryTenders(ctx context.Context, query string, args ...interface{}) ([]models.Tender, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, *tender)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tenders {
		criteria, err := r.loadCriteria(ctx, tenders[i].ID)
		if err != nil {
			return nil, err
		}
		tenders[i].Criteria = criteria
	}
	return tenders, nil
}

// GetTenderByID возвращает тендер по ID вместе с критериями.
func (r *PostgresTenderRepository) GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE id = $1`
	tender, err := scanTender(r.DB.QueryRow(ctx, query, tenderId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	criteria, err := r.loadCriteria(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	tender.Criteria = criteria
	return tender, nil
}

// UpdateTenderStatus меняет статус тендера. Дата публикации задаётся при публикации.
func (r *PostgresTenderRepository) UpdateTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus, publishDate *time.Time) (*models.Tender, error) {
	var updateQuery string
	var args []interface{}
	if publishDate != nil {
		updateQuery = `UPDATE tender SET status = $1, publish_date = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, publishDate, time.Now().UTC(), tenderId}
	} else {
		updateQuery = `UPDATE tender SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, time.Now().UTC(), tenderId}
	}
	_, err := r.DB.Exec(ctx, updateQuery, args...)
	if err != nil {
		return nil, err
	}
	return r.GetTenderByID(ctx, tenderId)
}

// EditTender меняет поля тендера из набора updateFields.
func (r *PostgresTenderRepository) EditTender(ctx context.Context, tenderId string, updateFields map[string]interface{}) (*models.Tender, error) {
	var updates []string
	args := []interface{}{tenderId} // Первый аргумент всегда будет tenderId
	argIndex := 2

	if title, ok := updateFields["title"].(string); ok && title != "" {
		updates = append(updates, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, title)
		argIndex++
	}

	if description, ok := updateFields["description"].(string); ok && description != "" {
		updates = append(updates, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, description)
		argIndex++
	}

	if budget, ok := updateFields["budget"].(float64); ok && budget > 0 {
		updates = append(updates, fmt.Sprintf("budget = $%d", argIndex))
		args = append(args, budget)
		argIndex++
	}

	if deadline, ok := updateFields["deadline"].(string); ok && deadline != "" {
		parsed, err := time.Parse(time.RFC3339, deadline)
		if err != nil {
			return nil, models.NewBadRequest("invalid deadline format, expected RFC3339")
		}
		updates = append(updates, fmt.Sprintf("deadline = $%d", argIndex))
		args = append(args, parsed)
		argIndex++
	}

	if len(updates) == 0 {
		return nil, models.NewBadRequest("no valid fields to update")
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())

	updateQuery := fmt.Sprintf("UPDATE tender SET %s WHERE id = $1", strings.Join(updates, ", "))
	_, err := r.DB.Exec(ctx, updateQuery, args...)
	if err != nil {
		return nil, err
	}
	return r.GetTenderByID(ctx, tenderId)
}

// DeleteTender удаляет тендер вместе с критериями.
func (r *PostgresTenderRepository) DeleteTender(ctx context.Context, tenderId string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM tender_criteria WHERE tender_id = $1`, tenderId); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM tender WHERE id = $1`, tenderId); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CloseExpiredTenders закрывает опубликованные тендеры с истёкшим дедлайном.
// Один UPDATE с условием по статусу: уже закрытые и награждённые тендеры не затрагиваются.
func (r *PostgresTenderRepository) CloseExpiredTenders(ctx context.Context, now time.Time) ([]models.Tender, error) {
	query := `UPDATE tender SET status = $1, updated_at = $2
	          WHERE status = $3 AND deadline < $2
	          RETURNING ` + tenderColumns
	rows, err := r.DB.Query(ctx, query, models.ClosedTender, now.UTC(), models.PublishedTender)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closed []models.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		closed = append(closed, *tender)
	}
	return closed, rows.Err()
}

// GetTenderStatistics возвращает количество тендеров по статусам.
func (r *PostgresTenderRepository) GetTenderStatistics(ctx context.Context) (*models.TenderStatistics, error) {
	query := `SELECT
	            COUNT(*),
	            COUNT(*) FILTER (WHERE status = $1),
	            COUNT(*) FILTER (WHERE status = $2),
	            COUNT(*) FILTER (WHERE status = $3),
	            COUNT(*) FILTER (WHERE status = $4)
	          FROM tender`
	var stats models.TenderStatistics
	err := r.DB.QueryRow(ctx, query,
		models.DraftTender,
		models.PublishedTender,
		models.ClosedTender,
		models.AwardedTender,
	).Scan(&stats.Total, &stats.Draft, &stats.Open, &stats.Closed, &stats.Awarded)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
