package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// SubmissionRepository - интерфейс для работы с заявками поставщиков.
// Методы чтения возвращают (nil, nil), если сущность не найдена.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, submissionReq models.SubmissionRequest, supplier *models.User) (*models.Submission, error)
	GetSubmissionByID(ctx context.Context, submissionId string) (*models.Submission, error)
	GetTenderSubmissions(ctx context.Context, tenderId string, limit, offset int) ([]models.Submission, error)
	GetSupplierSubmissions(ctx context.Context, supplierId string, limit, offset int) ([]models.Submission, error)
	SubmissionExists(ctx context.Context, tenderId, supplierId string) (bool, error)
	UpdateSubmissionStatus(ctx context.Context, submissionId string, status models.SubmissionStatus) (*models.Submission, error)
	SaveEvaluation(ctx context.Context, submissionId string, scores []models.SubmissionScore, totalScore float64, evaluatedAt time.Time) (*models.Submission, error)
	SelectWinner(ctx context.Context, submissionId string) (*models.Submission, []models.Submission, error)
}

// PostgresSubmissionRepository - реализация SubmissionRepository для базы данных.
type PostgresSubmissionRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresSubmissionRepository создает новый экземпляр PostgresSubmissionRepository.
func NewPostgresSubmissionRepository(db *pgxpool.Pool) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{DB: db}
}

const submissionColumns = `id, tender_id, supplier_id, supplier_name, status, proposed_price, technical_document_ids, financial_document_ids, total_score, submitted_at, evaluated_at`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var submission models.Submission
	err := row.Scan(
		&submission.ID,
		&submission.TenderID,
		&submission.SupplierID,
		&submission.SupplierName,
		&submission.Status,
		&submission.ProposedPrice,
		&submission.TechnicalDocumentIDs,
		&submission.FinancialDocumentIDs,
		&submission.TotalScore,
		&submission.SubmittedAt,
		&submission.EvaluatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// loadScores подгружает оценки по критериям для заявки.
func (r *PostgresSubmissionRepository) loadScores(ctx context.Context, submissionId string) ([]models.SubmissionScore, error) {
	query := `SELECT criteria_id, criteria_name, score, weight, weighted_score
	          FROM submission_score WHERE submission_id = $1 ORDER BY position`
	rows, err := r.DB.Query(ctx, query, submissionId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.SubmissionScore
	for rows.Next() {
		var score models.SubmissionScore
		if err := rows.Scan(&score.CriteriaID, &score.CriteriaName, &score.Score, &score.Weight, &score.WeightedScore); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// CreateSubmission создает новую заявку в статусе SUBMITTED.
func (r *PostgresSubmissionRepository) CreateSubmission(ctx context.Context, submissionReq models.SubmissionRequest, supplier *models.User) (*models.Submission, error) {
	newSubmission := models.Submission{
		ID:                   uuid.New().String(),
		TenderID:             submissionReq.TenderID,
		SupplierID:           supplier.ID,
		SupplierName:         supplier.DisplayName(),
		Status:               models.SubmittedSubmission,
		ProposedPrice:        submissionReq.ProposedPrice,
		TechnicalDocumentIDs: submissionReq.TechnicalDocumentIDs,
		FinancialDocumentIDs: submissionReq.FinancialDocumentIDs,
		SubmittedAt:          time.Now().UTC(),
	}
	if newSubmission.TechnicalDocumentIDs == nil {
		newSubmission.TechnicalDocumentIDs = []string{}
	}
	if newSubmission.FinancialDocumentIDs == nil {
		newSubmission.FinancialDocumentIDs = []string{}
	}

	insertQuery := `INSERT INTO submission (id, tender_id, supplier_id, supplier_name, status, proposed_price, technical_document_ids, financial_document_ids, submitted_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newSubmission.ID,
		newSubmission.TenderID,
		newSubmission.SupplierID,
		newSubmission.SupplierName,
		newSubmission.Status,
		newSubmission.ProposedPrice,
		pq.Array(newSubmission.TechnicalDocumentIDs),
		pq.Array(newSubmission.FinancialDocumentIDs),
		newSubmission.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &newSubmission, nil
}

// GetSubmissionByID возвращает заявку по ID вместе с оценками.
func (r *PostgresSubmissionRepository) GetSubmissionByID(ctx context.Context, submissionId string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submission WHERE id = $1`
	submission, err := scanSubmission(r.DB.QueryRow(ctx, query, submissionId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	scores, err := r.loadScores(ctx, submissionId)
	if err != nil {
		return nil, err
	}
	submission.Scores = scores
	return submission, nil
}

// GetTenderSubmissions возвращает список заявок по тендеру.
func (r *PostgresSubmissionRepository) GetTenderSubmissions(ctx context.Context, tenderId string, limit, offset int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submission
	          WHERE tender_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`
	return r.querySubmissions(ctx, query, tenderId, limit, offset)
}

// GetSupplierSubmissions возвращает список заявок поставщика.
func (r *PostgresSubmissionRepository) GetSupplierSubmissions(ctx context.Context, supplierId string, limit, offset int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submission
	          WHERE supplier_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`
	return r.querySubmissions(ctx, query, supplierId, limit, offset)
}

func (r *PostgresSubmissionRepository) querySubmissions(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *submission)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range submissions {
		scores, err := r.loadScores(ctx, submissions[i].ID)
		if err != nil {
			return nil, err
		}
		submissions[i].Scores = scores
	}
	return submissions, nil
}

// SubmissionExists проверяет, подавал ли поставщик заявку на тендер.
func (r *PostgresSubmissionRepository) SubmissionExists(ctx context.Context, tenderId, supplierId string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM submission WHERE tender_id = $1 AND supplier_id = $2)`
	err := r.DB.QueryRow(ctx, query, tenderId, supplierId).Scan(&exists)
	return exists, err
}

// UpdateSubmissionStatus меняет статус заявки.
func (r *PostgresSubmissionRepository) UpdateSubmissionStatus(ctx context.Context, submissionId string, status models.SubmissionStatus) (*models.Submission, error) {
	updateQuery := `UPDATE submission SET status = $1 WHERE id = $2`
	_, err := r.DB.Exec(ctx, updateQuery, status, submissionId)
	if err != nil {
		return nil, err
	}
	return r.GetSubmissionByID(ctx, submissionId)
}

// SaveEvaluation сохраняет результат оценки заявки: оценки по критериям,
// итоговый балл и время оценки в одной транзакции. Повторная оценка
// перезаписывает прежние оценки. Статус перепроверяется под блокировкой
// строки: конкурентный выбор победителя мог перевести заявку в терминальный
// статус после проверки в сервисе.
func (r *PostgresSubmissionRepository) SaveEvaluation(ctx context.Context, submissionId string, scores []models.SubmissionScore, totalScore float64, evaluatedAt time.Time) (*models.Submission, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status models.SubmissionStatus
	err = tx.QueryRow(ctx, `SELECT status FROM submission WHERE id = $1 FOR UPDATE`, submissionId).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if status != models.SubmittedSubmission && status != models.InEvaluationSubmission {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot evaluate submission in status %s", status))
	}

	if _, err = tx.Exec(ctx, `DELETE FROM submission_score WHERE submission_id = $1`, submissionId); err != nil {
		return nil, err
	}

	scoreInsertQuery := `INSERT INTO submission_score (submission_id, criteria_id, criteria_name, score, weight, weighted_score, position)
	                     VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, score := range scores {
		_, err = tx.Exec(ctx, scoreInsertQuery, submissionId, score.CriteriaID, score.CriteriaName, score.Score, score.Weight, score.WeightedScore, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert submission score: %w", err)
		}
	}

	updateQuery := `UPDATE submission SET status = $1, total_score = $2, evaluated_at = $3 WHERE id = $4`
	if _, err = tx.Exec(ctx, updateQuery, models.InEvaluationSubmission, totalScore, evaluatedAt, submissionId); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetSubmissionByID(ctx, submissionId)
}

// SelectWinner выбирает заявку победителем. Победитель, все остальные заявки
// тендера и сам тендер обновляются в одной транзакции: тендер блокируется
// через SELECT FOR UPDATE, поэтому два конкурентных вызова не дадут двух
// победителей. Возвращает победителя и вытесненные заявки.
func (r *PostgresSubmissionRepository) SelectWinner(ctx context.Context, submissionId string) (*models.Submission, []models.Submission, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	winner, err := scanSubmission(tx.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submission WHERE id = $1 FOR UPDATE`, submissionId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, models.NewNotFound("submission not found")
		}
		return nil, nil, err
	}

	var tenderStatus models.TenderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM tender WHERE id = $1 FOR UPDATE`, winner.TenderID).Scan(&tenderStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, models.NewNotFound("tender not found")
		}
		return nil, nil, err
	}
	if tenderStatus == models.AwardedTender {
		return nil, nil, models.NewInvalidTransition("tender is already awarded")
	}
	if tenderStatus == models.DraftTender {
		return nil, nil, models.NewInvalidTransition("tender is not published")
	}
	if winner.Status == models.WinnerSubmission || winner.Status == models.NotSelectedSubmission || winner.Status == models.RejectedSubmission {
		return nil, nil, models.NewInvalidTransition(fmt.Sprintf("cannot select winner from status %s", winner.Status))
	}

	displacedQuery := `UPDATE submission SET status = $1
	                   WHERE tender_id = $2 AND id <> $3 AND status <> $1
	                   RETURNING ` + submissionColumns
	rows, err := tx.Query(ctx, displacedQuery, models.NotSelectedSubmission, winner.TenderID, winner.ID)
	if err != nil {
		return nil, nil, err
	}
	var displaced []models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		displaced = append(displaced, *submission)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if _, err = tx.Exec(ctx, `UPDATE submission SET status = $1 WHERE id = $2`, models.WinnerSubmission, winner.ID); err != nil {
		return nil, nil, err
	}
	winner.Status = models.WinnerSubmission

	if _, err = tx.Exec(ctx, `UPDATE tender SET status = $1, updated_at = $2 WHERE id = $3`,
		models.AwardedTender, time.Now().UTC(), winner.TenderID); err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return winner, displaced, nil
}
