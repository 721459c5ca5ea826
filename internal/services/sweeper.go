package services

import (
	"context"
	"log"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
)

// DeadlineSweeper - фоновая проверка дедлайнов: раз в интервал закрывает
// опубликованные тендеры с истёкшим дедлайном. Закрытие выполняется одним
// условным обновлением в хранилище, поэтому уже закрытый или награждённый
// тендер развёрнут обратно не будет.
type DeadlineSweeper struct {
	Tenders       repository.TenderRepository
	Submissions   repository.SubmissionRepository
	Notifications *NotificationService
	Interval      time.Duration
	Logger        *log.Logger
}

// NewDeadlineSweeper создает новый экземпляр DeadlineSweeper.
func NewDeadlineSweeper(tenders repository.TenderRepository, submissions repository.SubmissionRepository, notifications *NotificationService, interval time.Duration, logger *log.Logger) *DeadlineSweeper {
	return &DeadlineSweeper{
		Tenders:       tenders,
		Submissions:   submissions,
		Notifications: notifications,
		Interval:      interval,
		Logger:        logger,
	}
}

// Run запускает цикл проверки дедлайнов до отмены контекста.
func (s *DeadlineSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			closed, err := s.SweepOnce(ctx, now)
			if err != nil {
				s.Logger.Printf("deadline sweep failed: %v", err)
				continue
			}
			if len(closed) > 0 {
				s.Logger.Printf("deadline sweep closed %d tender(s)", len(closed))
			}
		}
	}
}

// SweepOnce выполняет один проход: закрывает просроченные тендеры и
// уведомляет поставщиков, подавших заявки.
func (s *DeadlineSweeper) SweepOnce(ctx context.Context, now time.Time) ([]models.Tender, error) {
	closed, err := s.Tenders.CloseExpiredTenders(ctx, now)
	if err != nil {
		return nil, err
	}

	for i := range closed {
		notifyTenderClosed(ctx, s.Submissions, s.Notifications, s.Logger, &closed[i])
	}
	return closed, nil
}
