package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/utils"
)

// Размер страницы заявок при рассылке уведомлений.
const notifyFanoutLimit = 1000

type TenderService struct {
	Repo          repository.TenderRepository
	Submissions   repository.SubmissionRepository
	Users         repository.UserRepository
	Notifications *NotificationService
	Logger        *log.Logger
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(repo repository.TenderRepository, submissions repository.SubmissionRepository, users repository.UserRepository, notifications *NotificationService, logger *log.Logger) *TenderService {
	return &TenderService{
		Repo:          repo,
		Submissions:   submissions,
		Users:         users,
		Notifications: notifications,
		Logger:        logger,
	}
}

// notifyTenderClosed постранично поднимает заявки закрытого тендера и рассылает
// TENDER_CLOSED подавшим поставщикам. Ошибка чтения логируется и не прерывает
// закрытие.
func notifyTenderClosed(ctx context.Context, repo repository.SubmissionRepository, notifications *NotificationService, logger *log.Logger, tender *models.Tender) {
	for offset := 0; ; offset += notifyFanoutLimit {
		submissions, err := repo.GetTenderSubmissions(ctx, tender.ID, notifyFanoutLimit, offset)
		if err != nil {
			logger.Printf("failed to list submissions for closed tender %s: %v", tender.ID, err)
			return
		}
		if len(submissions) == 0 {
			return
		}
		notifications.NotifyTenderClosed(tender, submissions)
		if len(submissions) < notifyFanoutLimit {
			return
		}
	}
}

// Допустимые переходы статуса тендера: жизненный цикл только вперёд.
// Переход в AWARDED выполняется только через выбор победителя заявки.
var allowedTenderTransitions = map[models.TenderStatus][]models.TenderStatus{
	models.DraftTender:     {models.PublishedTender},
	models.PublishedTender: {models.ClosedTender},
	models.ClosedTender:    {models.AwardedTender},
	models.AwardedTender:   {},
}

// FetchTenders получает список тендеров с фильтром по статусам.
func (s *TenderService) FetchTenders(ctx context.Context, limitStr, offsetStr string, statuses []string) ([]models.Tender, error) {
	allowedStatuses := map[models.TenderStatus]bool{
		models.DraftTender:     true,
		models.PublishedTender: true,
		models.ClosedTender:    true,
		models.AwardedTender:   true,
	}
	for _, status := range statuses {
		if !allowedStatuses[models.TenderStatus(status)] {
			return nil, models.NewBadRequest(fmt.Sprintf("unsupported tender status: %s", status))
		}
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewBadRequest(err.Error())
	}
	return s.Repo.GetTenders(ctx, limit, offset, statuses)
}

// CreateTender создает новый тендер в статусе DRAFT.
func (s *TenderService) CreateTender(ctx context.Context, tenderReq models.TenderRequest, userId string) (*models.Tender, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, err
	}
	if err := requireRole(user, models.OwnerRole); err != nil {
		return nil, err
	}

	if tenderReq.Title == "" || tenderReq.Description == "" || tenderReq.Currency == "" {
		return nil, models.NewBadRequest("missing required fields: title, description or currency")
	}
	if tenderReq.Budget <= 0 {
		return nil, models.NewBadRequest("budget must be positive")
	}
	if tenderReq.Deadline.IsZero() {
		return nil, models.NewBadRequest("missing required field: deadline")
	}
	for _, criterion := range tenderReq.Criteria {
		if criterion.Name == "" {
			return nil, models.NewBadRequest("criteria name must not be empty")
		}
		if criterion.Weight <= 0 || criterion.Weight > 100 {
			return nil, models.NewBadRequest("criteria weight must be in range [1:100]")
		}
	}

	return s.Repo.CreateTender(ctx, tenderReq, user)
}

// GetUserTenders получает список тендеров владельца.
func (s *TenderService) GetUserTenders(ctx context.Context, limitStr, offsetStr, userId string) ([]models.Tender, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, err
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewBadRequest(err.Error())
	}
	return s.Repo.GetUserTenders(ctx, limit, offset, user.ID)
}

// GetTenderByID получает тендер по ID.
func (s *TenderService) GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, models.NewInternal("failed to retrieve tender")
	}
	if tender == nil {
		return nil, models.NewNotFound("tender not found")
	}
	return tender, nil
}

// GetTenderStatus получает статус тендера.
func (s *TenderService) GetTenderStatus(ctx context.Context, tenderId string) (models.TenderStatus, error) {
	tender, err := s.GetTenderByID(ctx, tenderId)
	if err != nil {
		return "", err
	}
	return tender.Status, nil
}

// getOwnedTender получает тендер и проверяет, что действующий пользователь - его владелец.
func (s *TenderService) getOwnedTender(ctx context.Context, tenderId, userId string) (*models.Tender, error) {
	user, err := requireUser(ctx, s.Users, userId)
	if err != nil {
		return nil, err
	}
	tender, err := s.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.OwnerID != user.ID {
		return nil, models.NewForbidden("you are not authorized to edit this tender")
	}
	return tender, nil
}

// PublishTender публикует тендер. Допустим только переход DRAFT -> PUBLISHED,
// и только когда веса критериев в сумме дают ровно 100.
func (s *TenderService) PublishTender(ctx context.Context, tenderId, userId string) (*models.Tender, error) {
	tender, err := s.getOwnedTender(ctx, tenderId, userId)
	if err != nil {
		return nil, err
	}

	if !utils.ContainsTenderStatus(allowedTenderTransitions[tender.Status], models.PublishedTender) {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot publish tender in status %s", tender.Status))
	}
	if weightSum := tender.CriteriaWeightSum(); weightSum != 100 {
		return nil, models.NewInvalidCriteriaWeights(fmt.Sprintf("criteria weights must sum to 100, got %d", weightSum))
	}

	publishDate := time.Now().UTC()
	published, err := s.Repo.UpdateTenderStatus(ctx, tenderId, models.PublishedTender, &publishDate)
	if err != nil {
		return nil, models.NewInternal("failed to publish tender")
	}

	s.Notifications.NotifyTenderPublished(published)
	return published, nil
}

// CloseTender закрывает тендер. Допустим только переход PUBLISHED -> CLOSED.
func (s *TenderService) CloseTender(ctx context.Context, tenderId, userId string) (*models.Tender, error) {
	tender, err := s.getOwnedTender(ctx, tenderId, userId)
	if err != nil {
		return nil, err
	}

	if !utils.ContainsTenderStatus(allowedTenderTransitions[tender.Status], models.ClosedTender) {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot close tender in status %s", tender.Status))
	}

	closed, err := s.Repo.UpdateTenderStatus(ctx, tenderId, models.ClosedTender, nil)
	if err != nil {
		return nil, models.NewInternal("failed to close tender")
	}

	notifyTenderClosed(ctx, s.Submissions, s.Notifications, s.Logger, closed)
	return closed, nil
}

// EditTender меняет поля тендера. Менять можно только черновик.
func (s *TenderService) EditTender(ctx context.Context, tenderId, userId string, updateFields map[string]interface{}) (*models.Tender, error) {
	tender, err := s.getOwnedTender(ctx, tenderId, userId)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.DraftTender {
		return nil, models.NewInvalidTransition("only draft tenders can be edited")
	}
	return s.Repo.EditTender(ctx, tenderId, updateFields)
}

// DeleteTender удаляет тендер. Удалять можно только черновик.
func (s *TenderService) DeleteTender(ctx context.Context, tenderId, userId string) error {
	tender, err := s.getOwnedTender(ctx, tenderId, userId)
	if err != nil {
		return err
	}
	if tender.Status != models.DraftTender {
		return models.NewInvalidTransition("only draft tenders can be deleted")
	}
	if err := s.Repo.DeleteTender(ctx, tenderId); err != nil {
		return models.NewInternal("failed to delete tender")
	}
	return nil
}

// GetTenderStatistics получает количество тендеров по статусам.
func (s *TenderService) GetTenderStatistics(ctx context.Context) (*models.TenderStatistics, error) {
	stats, err := s.Repo.GetTenderStatistics(ctx)
	if err != nil {
		return nil, models.NewInternal("failed to retrieve tender statistics")
	}
	return stats, nil
}
