package services

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/utils"
)

type SubmissionService struct {
	Repo          repository.SubmissionRepository
	Tenders       repository.TenderRepository
	Users         repository.UserRepository
	Notifications *NotificationService
	Scorer        CriterionScorer
}

// NewSubmissionService создает новый экземпляр SubmissionService.
func NewSubmissionService(repo repository.SubmissionRepository, tenders repository.TenderRepository, users repository.UserRepository, notifications *NotificationService, scorer CriterionScorer) *SubmissionService {
	return &SubmissionService{
		Repo:          repo,
		Tenders:       tenders,
		Users:         users,
		Notifications: notifications,
		Scorer:        scorer,
	}
}

// Допустимые переходы статуса заявки. WINNER и NOT_SELECTED терминальны,
// повторная оценка из IN_EVALUATION разрешена.
var allowedSubmissionTransitions = map[models.SubmissionStatus][]models.SubmissionStatus{
	models.SubmittedSubmission:    {models.InEvaluationSubmission, models.NotSelectedSubmission},
	models.InEvaluationSubmission: {models.InEvaluationSubmission, models.AcceptedSubmission, models.RejectedSubmission, models.WinnerSubmission, models.NotSelectedSubmission},
	models.AcceptedSubmission:     {models.WinnerSubmission, models.NotSelectedSubmission},
	models.RejectedSubmission:     {models.NotSelectedSubmission},
	models.WinnerSubmission:       {},
	models.NotSelectedSubmission:  {},
}

// CreateSubmission создает новую заявку поставщика на опубликованный тендер.
func (s *SubmissionService) CreateSubmission(ctx context.Context, submissionReq models.SubmissionRequest, userId string) (*models.Submission, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, err
	}
	if err := requireRole(user, models.SupplierRole); err != nil {
		return nil, err
	}

	if submissionReq.TenderID == "" {
		return nil, models.NewBadRequest("missing required field: tenderId")
	}
	if submissionReq.ProposedPrice <= 0 {
		return nil, models.NewBadRequest("proposedPrice must be positive")
	}

	tender, err := s.Tenders.GetTenderByID(ctx, submissionReq.TenderID)
	if err != nil {
		return nil, models.NewInternal("failed to retrieve tender")
	}
	if tender == nil {
		return nil, models.NewNotFound("tender not found")
	}
	if tender.Status != models.PublishedTender {
		return nil, models.NewTenderNotOpen("tender is not open for submissions")
	}

	exists, err := s.Repo.SubmissionExists(ctx, tender.ID, user.ID)
	if err != nil {
		return nil, models.NewInternal("failed to check submission existence")
	}
	if exists {
		return nil, models.NewDuplicateSubmission("you have already submitted a proposal for this tender")
	}

	submission, err := s.Repo.CreateSubmission(ctx, submissionReq, user)
	if err != nil {
		return nil, models.NewInternal("failed to create submission")
	}

	s.Notifications.NotifySubmissionReceived(tender, submission)
	return submission, nil
}

// GetTenderSubmissions получает список заявок по тендеру. Доступно только владельцу.
func (s *SubmissionService) GetTenderSubmissions(ctx context.Context, tenderId, userId, limitStr, offsetStr string) ([]models.Submission, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, err
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewBadRequest(err.Error())
	}

	tender, err := s.Tenders.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, models.NewInternal("failed to retrieve tender")
	}
	if tender == nil {
		return nil, models.NewNotFound("tender not found")
	}
	if tender.OwnerID != user.ID {
		return nil, models.NewForbidden("you are not authorized to view submissions for this tender")
	}
	return s.Repo.GetTenderSubmissions(ctx, tenderId, limit, offset)
}

// GetSupplierSubmissions получает список заявок действующего поставщика.
func (s *SubmissionService) GetSupplierSubmissions(ctx context.Context, userId, limitStr, offsetStr string) ([]models.Submission, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, err
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewBadRequest(err.Error())
	}
	return s.Repo.GetSupplierSubmissions(ctx, user.ID, limit, offset)
}

// getSubmissionForActor получает заявку и проверяет право доступа:
// заявку видят её поставщик и владелец тендера.
func (s *SubmissionService) getSubmissionForActor(ctx context.Context, submissionId, userId string) (*models.Submission, *models.Tender, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, nil, err
	}

	submission, err := s.Repo.GetSubmissionByID(ctx, submissionId)
	if err != nil {
		return nil, nil, models.NewInternal("failed to retrieve submission")
	}
	if submission == nil {
		return nil, nil, models.NewNotFound("submission not found")
	}

	tender, err := s.Tenders.GetTenderByID(ctx, submission.TenderID)
	if err != nil {
		return nil, nil, models.NewInternal("failed to retrieve tender")
	}
	if tender == nil {
		return nil, nil, models.NewNotFound("tender not found")
	}

	if submission.SupplierID != user.ID && tender.OwnerID != user.ID {
		return nil, nil, models.NewForbidden("you are not authorized to view this submission")
	}
	return submission, tender, nil
}

// GetSubmissionByID получает заявку по ID.
func (s *SubmissionService) GetSubmissionByID(ctx context.Context, submissionId, userId string) (*models.Submission, error) {
	submission, _, err := s.getSubmissionForActor(ctx, submissionId, userId)
	return submission, err
}

// GetSubmissionStatus получает статус заявки.
func (s *SubmissionService) GetSubmissionStatus(ctx context.Context, submissionId, userId string) (models.SubmissionStatus, error) {
	submission, _, err := s.getSubmissionForActor(ctx, submissionId, userId)
	if err != nil {
		return "", err
	}
	return submission.Status, nil
}

// getOwnedSubmission получает заявку и проверяет, что действующий пользователь -
// владелец родительского тендера.
func (s *SubmissionService) getOwnedSubmission(ctx context.Context, submissionId, userId string) (*models.Submission, *models.Tender, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, nil, err
	}

	submission, err := s.Repo.GetSubmissionByID(ctx, submissionId)
	if err != nil {
		return nil, nil, models.NewInternal("failed to retrieve submission")
	}
	if submission == nil {
		return nil, nil, models.NewNotFound("submission not found")
	}

	tender, err := s.Tenders.GetTenderByID(ctx, submission.TenderID)
	if err != nil {
		return nil, nil, models.NewInternal("failed to retrieve tender")
	}
	if tender == nil {
		return nil, nil, models.NewNotFound("tender not found")
	}
	if tender.OwnerID != user.ID {
		return nil, nil, models.NewForbidden("you are not authorized to evaluate submissions for this tender")
	}
	return submission, tender, nil
}

// EvaluateSubmission оценивает заявку по критериям тендера. Повторный вызов
// пересчитывает оценки заново по текущим критериям.
func (s *SubmissionService) EvaluateSubmission(ctx context.Context, submissionId, userId string) (*models.Submission, error) {
	submission, tender, err := s.getOwnedSubmission(ctx, submissionId, userId)
	if err != nil {
		return nil, err
	}

	if !utils.ContainsSubmissionStatus(allowedSubmissionTransitions[submission.Status], models.InEvaluationSubmission) {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot evaluate submission in status %s", submission.Status))
	}
	if len(tender.Criteria) == 0 {
		return nil, models.NewEmptyCriteria("tender has no evaluation criteria")
	}

	scores, totalScore, err := ComputeScores(ctx, s.Scorer, tender, submission)
	if err != nil {
		return nil, err
	}

	evaluated, err := s.Repo.SaveEvaluation(ctx, submissionId, scores, totalScore, time.Now().UTC())
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			return nil, errorResponse
		}
		return nil, models.NewInternal("failed to save evaluation")
	}
	if evaluated == nil {
		return nil, models.NewNotFound("submission not found")
	}

	s.Notifications.NotifyEvaluationComplete(tender, evaluated)
	return evaluated, nil
}

// AcceptSubmission одобряет заявку после оценки.
func (s *SubmissionService) AcceptSubmission(ctx context.Context, submissionId, userId string) (*models.Submission, error) {
	return s.resolveSubmission(ctx, submissionId, userId, models.AcceptedSubmission)
}

// RejectSubmission отклоняет заявку после оценки.
func (s *SubmissionService) RejectSubmission(ctx context.Context, submissionId, userId string) (*models.Submission, error) {
	return s.resolveSubmission(ctx, submissionId, userId, models.RejectedSubmission)
}

func (s *SubmissionService) resolveSubmission(ctx context.Context, submissionId, userId string, status models.SubmissionStatus) (*models.Submission, error) {
	submission, _, err := s.getOwnedSubmission(ctx, submissionId, userId)
	if err != nil {
		return nil, err
	}

	if !utils.ContainsSubmissionStatus(allowedSubmissionTransitions[submission.Status], status) {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot move submission from %s to %s", submission.Status, status))
	}
	updated, err := s.Repo.UpdateSubmissionStatus(ctx, submissionId, status)
	if err != nil {
		return nil, models.NewInternal("failed to update submission status")
	}
	return updated, nil
}

// SelectWinner выбирает заявку победителем тендера. Победитель, все остальные
// заявки тендера и сам тендер обновляются атомарно; затем в фоне рассылаются
// уведомления победителю и вытесненным поставщикам.
func (s *SubmissionService) SelectWinner(ctx context.Context, submissionId, userId string) (*models.Submission, error) {
	submission, tender, err := s.getOwnedSubmission(ctx, submissionId, userId)
	if err != nil {
		return nil, err
	}

	if !utils.ContainsSubmissionStatus(allowedSubmissionTransitions[submission.Status], models.WinnerSubmission) {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot select winner from status %s", submission.Status))
	}

	winner, displaced, err := s.Repo.SelectWinner(ctx, submissionId)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			return nil, errorResponse
		}
		return nil, models.NewInternal("failed to select winner")
	}

	s.Notifications.NotifyAwardResult(tender, winner, displaced)
	return winner, nil
}
