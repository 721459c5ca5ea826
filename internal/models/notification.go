package models

import "time"

type NotificationType string // Тип события уведомления

const (
	TenderPublishedNotification    NotificationType = "TENDER_PUBLISHED"    // Опубликован новый тендер
	SubmissionReceivedNotification NotificationType = "SUBMISSION_RECEIVED" // Получена новая заявка
	TenderClosedNotification       NotificationType = "TENDER_CLOSED"       // Приём заявок по тендеру завершён
	EvaluationCompleteNotification NotificationType = "EVALUATION_COMPLETE" // Оценка заявки завершена
	AwardWinnerNotification        NotificationType = "AWARD_WINNER"        // Заявка выбрана победителем
	AwardNotSelectedNotification   NotificationType = "AWARD_NOT_SELECTED"  // Заявка не выбрана
	SystemNotification             NotificationType = "SYSTEM"              // Служебное уведомление
)

// Notification представляет модель уведомления пользователя.
// Уведомления создаются только воркфлоу, пользователь их не создаёт.
type Notification struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Type            NotificationType `json:"type"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	Read            bool             `json:"read"`
	RelatedEntityID string           `json:"relatedEntityId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}
