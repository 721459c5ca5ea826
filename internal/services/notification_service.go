package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/utils"

	"github.com/google/uuid"
)

// NotificationService создаёт и раздаёт уведомления по событиям воркфлоу.
// Рассылки выполняются в фоне: ошибка доставки логируется и никогда не
// возвращается вызвавшему переходу.
type NotificationService struct {
	Repo    repository.NotificationRepository
	Users   repository.UserRepository
	logger  *log.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, logger *log.Logger, timeout time.Duration) *NotificationService {
	return &NotificationService{
		Repo:    repo,
		Users:   users,
		logger:  logger,
		timeout: timeout,
	}
}

// CreateNotification создает и сохраняет уведомление для пользователя.
func (s *NotificationService) CreateNotification(ctx context.Context, userId string, notificationType models.NotificationType, title, message, relatedEntityId string) (*models.Notification, error) {
	notification := models.Notification{
		ID:              uuid.New().String(),
		UserID:          userId,
		Type:            notificationType,
		Title:           title,
		Message:         message,
		Read:            false,
		RelatedEntityID: relatedEntityId,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Repo.CreateNotification(ctx, notification); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, models.KindInternal, "failed to create notification")
	}
	return &notification, nil
}

// GetUserNotifications получает уведомления пользователя.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userId, limitStr, offsetStr string) ([]models.Notification, error) {
	if userId == "" {
		return nil, models.NewUnauthenticated("missing required query parameter: userId")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewBadRequest(err.Error())
	}
	return s.Repo.GetUserNotifications(ctx, userId, limit, offset)
}

// GetUnreadCount получает количество непрочитанных уведомлений пользователя.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userId string) (int, error) {
	if userId == "" {
		return 0, models.NewUnauthenticated("missing required query parameter: userId")
	}
	return s.Repo.GetUnreadCount(ctx, userId)
}

// MarkAsRead помечает уведомление прочитанным. Пользователь может пометить
// только своё уведомление: принадлежность проверяется до записи, чтобы отказ
// не менял флаг прочтения.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationId, userId string) (*models.Notification, error) {
	if userId == "" {
		return nil, models.NewUnauthenticated("missing required query parameter: userId")
	}
	notification, err := s.Repo.GetNotificationByID(ctx, notificationId)
	if err != nil {
		return nil, models.NewInternal("failed to retrieve notification")
	}
	if notification == nil {
		return nil, models.NewNotFound("notification not found")
	}
	if notification.UserID != userId {
		return nil, models.NewForbidden("you are not authorized to read this notification")
	}

	updated, err := s.Repo.MarkAsRead(ctx, notificationId)
	if err != nil {
		return nil, models.NewInternal("failed to mark notification as read")
	}
	if updated == nil {
		return nil, models.NewNotFound("notification not found")
	}
	return updated, nil
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userId string) error {
	if userId == "" {
		return models.NewUnauthenticated("missing required query parameter: userId")
	}
	if err := s.Repo.MarkAllAsRead(ctx, userId); err != nil {
		return models.NewInternal("failed to mark notifications as read")
	}
	return nil
}

// dispatch создает уведомление в фоне. Ошибки логируются и не возвращаются.
func (s *NotificationService) dispatch(userId string, notificationType models.NotificationType, title, message, relatedEntityId string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, err := s.CreateNotification(ctx, userId, notificationType, title, message, relatedEntityId); err != nil {
			s.logger.Printf("failed to dispatch %s notification to user %s: %v", notificationType, userId, err)
		}
	}()
}

// Wait блокирует до завершения фоновых отправок. Вызывается при остановке
// сервиса и в тестах.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// NotifyTenderPublished уведомляет всех поставщиков о публикации тендера.
func (s *NotificationService) NotifyTenderPublished(tender *models.Tender) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		suppliers, err := s.Users.GetUsersByRole(ctx, models.SupplierRole)
		if err != nil {
			s.logger.Printf("failed to list suppliers for tender %s publish fan-out: %v", tender.ID, err)
			return
		}
		for _, supplier := range suppliers {
			notification := models.Notification{
				ID:              uuid.New().String(),
				UserID:          supplier.ID,
				Type:            models.TenderPublishedNotification,
				Title:           "New tender published",
				Message:         fmt.Sprintf("A new tender %q has been published", tender.Title),
				RelatedEntityID: tender.ID,
				CreatedAt:       time.Now().UTC(),
			}
			if err := s.Repo.CreateNotification(ctx, notification); err != nil {
				s.logger.Printf("failed to notify supplier %s about tender %s: %v", supplier.ID, tender.ID, err)
			}
		}
	}()
}

// NotifyTenderClosed уведомляет поставщиков, подавших заявки, о закрытии тендера.
func (s *NotificationService) NotifyTenderClosed(tender *models.Tender, submissions []models.Submission) {
	for _, submission := range submissions {
		s.dispatch(
			submission.SupplierID,
			models.TenderClosedNotification,
			"Tender closed",
			fmt.Sprintf("Tender %q is no longer accepting submissions", tender.Title),
			tender.ID)
	}
}

// NotifySubmissionReceived уведомляет владельца тендера о новой заявке.
func (s *NotificationService) NotifySubmissionReceived(tender *models.Tender, submission *models.Submission) {
	s.dispatch(
		tender.OwnerID,
		models.SubmissionReceivedNotification,
		"New submission",
		fmt.Sprintf("%s submitted a proposal for %q", submission.SupplierName, tender.Title),
		submission.ID)
}

// NotifyEvaluationComplete уведомляет поставщика о завершении оценки его заявки.
func (s *NotificationService) NotifyEvaluationComplete(tender *models.Tender, submission *models.Submission) {
	s.dispatch(
		submission.SupplierID,
		models.EvaluationCompleteNotification,
		"Evaluation complete",
		fmt.Sprintf("Your submission for %q has been evaluated", tender.Title),
		submission.ID)
}

// NotifyAwardResult уведомляет победителя и вытесненных поставщиков об итогах тендера.
func (s *NotificationService) NotifyAwardResult(tender *models.Tender, winner *models.Submission, displaced []models.Submission) {
	s.dispatch(
		winner.SupplierID,
		models.AwardWinnerNotification,
		"Congratulations!",
		fmt.Sprintf("You have won the tender %q", tender.Title),
		winner.ID)
	for _, submission := range displaced {
		s.dispatch(
			submission.SupplierID,
			models.AwardNotSelectedNotification,
			"Tender awarded",
			fmt.Sprintf("Your submission for %q was not selected", tender.Title),
			submission.ID)
	}
}
