package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
)

// MemoryStore - хранилище всех сущностей в памяти. Реализует интерфейсы
// TenderRepository, SubmissionRepository, NotificationRepository и
// UserRepository под одним мьютексом, поэтому составные операции
// (выбор победителя, закрытие просроченных тендеров) атомарны
// относительно конкурентных вызовов. Чтение после записи в рамках
// одного процесса всегда видит последнее состояние.
type MemoryStore struct {
	mu            sync.RWMutex
	tenders       map[string]models.Tender
	submissions   map[string]models.Submission
	notifications map[string]models.Notification
	users         map[string]models.User
}

// NewMemoryStore создает новый экземпляр MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenders:       make(map[string]models.Tender),
		submissions:   make(map[string]models.Submission),
		notifications: make(map[string]models.Notification),
		users:         make(map[string]models.User),
	}
}

func copyTender(tender models.Tender) models.Tender {
	copied := tender
	copied.Criteria = append([]models.EvaluationCriteria(nil), tender.Criteria...)
	copied.DocumentIDs = append([]string(nil), tender.DocumentIDs...)
	if tender.PublishDate != nil {
		publishDate := *tender.PublishDate
		copied.PublishDate = &publishDate
	}
	return copied
}

func copySubmission(submission models.Submission) models.Submission {
	copied := submission
	copied.TechnicalDocumentIDs = append([]string(nil), submission.TechnicalDocumentIDs...)
	copied.FinancialDocumentIDs = append([]string(nil), submission.FinancialDocumentIDs...)
	copied.Scores = append([]models.SubmissionScore(nil), submission.Scores...)
	if submission.TotalScore != nil {
		totalScore := *submission.TotalScore
		copied.TotalScore = &totalScore
	}
	if submission.EvaluatedAt != nil {
		evaluatedAt := *submission.EvaluatedAt
		copied.EvaluatedAt = &evaluatedAt
	}
	return copied
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// CreateTender создает новый тендер вместе с критериями оценки.
func (s *MemoryStore) CreateTender(ctx context.Context, tenderReq models.TenderRequest, owner *models.User) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
		DocumentIDs: append([]string{}, tenderReq.DocumentIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, criterionReq := range tenderReq.Criteria {
		newTender.Criteria = append(newTender.Criteria, models.EvaluationCriteria{
			ID:          uuid.New().String(),
			Name:        criterionReq.Name,
			Weight:      criterionReq.Weight,
			Description: criterionReq.Description,
		})
	}

	s.tenders[newTender.ID] = copyTender(newTender)
	return &newTender, nil
}

// GetTenders возвращает список тендеров с фильтром по статусам.
func (s *MemoryStore) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make(map[models.TenderStatus]bool, len(statuses))
	for _, status := range statuses {
		allowed[models.TenderStatus(status)] = true
	}

	var tenders []models.Tender
	for _, tender := range s.tenders {
		if len(allowed) > 0 && !allowed[tender.Status] {
			continue
		}
		tenders = append(tenders, copyTender(tender))
	}
	sort.Slice(tenders, func(i, j int) bool {
		return tenders[i].CreatedAt.After(tenders[j].CreatedAt)
	})
	return paginate(tenders, limit, offset), nil
}

// GetUserTenders возвращает список тендеров владельца.
func (s *MemoryStore) GetUserTenders(ctx context.Context, limit, offset int, ownerId string) ([]models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tenders []models.Tender
	for _, tender := range s.tenders {
		if tender.OwnerID == ownerId {
			tenders = append(tenders, copyTender(tender))
		}
	}
	sort.Slice(tenders, func(i, j int) bool {
		return tenders[i].CreatedAt.After(tenders[j].CreatedAt)
	})
	return paginate(tenders, limit, offset), nil
}

// GetTenderByID возвращает тендер по ID, (nil, nil) если не найден.
func (s *MemoryStore) GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tender, ok := s.tenders[tenderId]
	if !ok {
		return nil, nil
	}
	copied := copyTender(tender)
	return &copied, nil
}

// UpdateTenderStatus меняет статус тендера.
func (s *MemoryStore) UpdateTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus, publishDate *time.Time) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tender, ok := s.tenders[tenderId]
	if !ok {
		return nil, nil
	}
	tender.Status = status
	tender.UpdatedAt = time.Now().UTC()
	if publishDate != nil {
		date := *publishDate
		tender.PublishDate = &date
	}
	s.tenders[tenderId] = tender

	copied := copyTender(tender)
	return &copied, nil
}

// EditTender меняет поля тендера из набора updateFields.
func (s *MemoryStore) EditTender(ctx context.Context, tenderId string, updateFields map[string]interface{}) (*models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tender, ok := s.tenders[tenderId]
	if !ok {
		return nil, nil
	}

	updated := false
	if title, ok := updateFields["title"].(string); ok && title != "" {
		tender.Title = title
		updated = true
	}
	if description, ok := updateFields["description"].(string); ok && description != "" {
		tender.Description = description
		updated = true
	}
	if budget, ok := updateFields["budget"].(float64); ok && budget > 0 {
		tender.Budget = budget
		updated = true
	}
	if deadline, ok := updateFields["deadline"].(string); ok && deadline != "" {
		parsed, err := time.Parse(time.RFC3339, deadline)
		if err != nil {
			return nil, models.NewBadRequest("invalid deadline format, expected RFC3339")
		}
		tender.Deadline = parsed
		updated = true
	}
	if !updated {
		return nil, models.NewBadRequest("no valid fields to update")
	}

	tender.UpdatedAt = time.Now().UTC()
	s.tenders[tenderId] = tender

	copied := copyTender(tender)
	return &copied, nil
}

// DeleteTender удаляет тендер.
func (s *MemoryStore) DeleteTender(ctx context.Context, tenderId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tenders, tenderId)
	return nil
}

// CloseExpiredTenders закрывает опубликованные тендеры с истёкшим дедлайном.
// Уже закрытые и награждённые тендеры не затрагиваются.
func (s *MemoryStore) CloseExpiredTenders(ctx context.Context, now time.Time) ([]models.Tender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed []models.Tender
	for id, tender := range s.tenders {
		if tender.Status == models.PublishedTender && tender.Deadline.Before(now) {
			tender.Status = models.ClosedTender
			tender.UpdatedAt = now.UTC()
			s.tenders[id] = tender
			closed = append(closed, copyTender(tender))
		}
	}
	return closed, nil
}

// GetTenderStatistics возвращает количество тендеров по статусам.
func (s *MemoryStore) GetTenderStatistics(ctx context.Context) (*models.TenderStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.TenderStatistics
	for _, tender := range s.tenders {
		stats.Total++
		switch tender.Status {
		case models.DraftTender:
			stats.Draft++
		case models.PublishedTender:
			stats.Open++
		case models.ClosedTender:
			stats.Closed++
		case models.AwardedTender:
			stats.Awarded++
		}
	}
	return &stats, nil
}

// CreateSubmission создает новую заявку в статусе SUBMITTED.
func (s *MemoryStore) CreateSubmission(ctx context.Context, submissionReq models.SubmissionRequest, supplier *models.User) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newSubmission := models.Submission{
		ID:                   uuid.New().String(),
		TenderID:             submissionReq.TenderID,
		SupplierID:           supplier.ID,
		SupplierName:         supplier.DisplayName(),
		Status:               models.SubmittedSubmission,
		ProposedPrice:        submissionReq.ProposedPrice,
		TechnicalDocumentIDs: append([]string{}, submissionReq.TechnicalDocumentIDs...),
		FinancialDocumentIDs: append([]string{}, submissionReq.FinancialDocumentIDs...),
		SubmittedAt:          time.Now().UTC(),
	}
	s.submissions[newSubmission.ID] = copySubmission(newSubmission)
	return &newSubmission, nil
}

// GetSubmissionByID возвращает заявку по ID, (nil, nil) если не найдена.
func (s *MemoryStore) GetSubmissionByID(ctx context.Context, submissionId string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	submission, ok := s.submissions[submissionId]
	if !ok {
		return nil, nil
	}
	copied := copySubmission(submission)
	return &copied, nil
}

// GetTenderSubmissions возвращает список заявок по тендеру.
func (s *MemoryStore) GetTenderSubmissions(ctx context.Context, tenderId string, limit, offset int) ([]models.Submission, error) {
	return s.listSubmissions(func(submission models.Submission) bool {
		return submission.TenderID == tenderId
	}, limit, offset)
}

// GetSupplierSubmissions возвращает список заявок поставщика.
func (s *MemoryStore) GetSupplierSubmissions(ctx context.Context, supplierId string, limit, offset int) ([]models.Submission, error) {
	return s.listSubmissions(func(submission models.Submission) bool {
		return submission.SupplierID == supplierId
	}, limit, offset)
}

func (s *MemoryStore) listSubmissions(match func(models.Submission) bool, limit, offset int) ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var submissions []models.Submission
	for _, submission := range s.submissions {
		if match(submission) {
			submissions = append(submissions, copySubmission(submission))
		}
	}
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].SubmittedAt.After(submissions[j].SubmittedAt)
	})
	return paginate(submissions, limit, offset), nil
}

// SubmissionExists проверяет, подавал ли поставщик заявку на тендер.
func (s *MemoryStore) SubmissionExists(ctx context.Context, tenderId, supplierId string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, submission := range s.submissions {
		if submission.TenderID == tenderId && submission.SupplierID == supplierId {
			return true, nil
		}
	}
	return false, nil
}

// UpdateSubmissionStatus меняет статус заявки.
func (s *MemoryStore) UpdateSubmissionStatus(ctx context.Context, submissionId string, status models.SubmissionStatus) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission, ok := s.submissions[submissionId]
	if !ok {
		return nil, nil
	}
	submission.Status = status
	s.submissions[submissionId] = submission

	copied := copySubmission(submission)
	return &copied, nil
}

// SaveEvaluation сохраняет результат оценки заявки. Повторная оценка
// перезаписывает прежние оценки. Статус перепроверяется под мьютексом:
// конкурентный выбор победителя мог перевести заявку в терминальный статус
// после проверки в сервисе.
func (s *MemoryStore) SaveEvaluation(ctx context.Context, submissionId string, scores []models.SubmissionScore, totalScore float64, evaluatedAt time.Time) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission, ok := s.submissions[submissionId]
	if !ok {
		return nil, nil
	}
	if submission.Status != models.SubmittedSubmission && submission.Status != models.InEvaluationSubmission {
		return nil, models.NewInvalidTransition(fmt.Sprintf("cannot evaluate submission in status %s", submission.Status))
	}
	submission.Status = models.InEvaluationSubmission
	submission.Scores = append([]models.SubmissionScore(nil), scores...)
	total := totalScore
	submission.TotalScore = &total
	evaluated := evaluatedAt
	submission.EvaluatedAt = &evaluated
	s.submissions[submissionId] = submission

	copied := copySubmission(submission)
	return &copied, nil
}

// SelectWinner выбирает заявку победителем. Победитель, все остальные заявки
// тендера и сам тендер обновляются под одним мьютексом, поэтому два
// конкурентных вызова не дадут двух победителей.
func (s *MemoryStore) SelectWinner(ctx context.Context, submissionId string) (*models.Submission, []models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner, ok := s.submissions[submissionId]
	if !ok {
		return nil, nil, models.NewNotFound("submission not found")
	}
	tender, ok := s.tenders[winner.TenderID]
	if !ok {
		return nil, nil, models.NewNotFound("tender not found")
	}
	if tender.Status == models.AwardedTender {
		return nil, nil, models.NewInvalidTransition("tender is already awarded")
	}
	if tender.Status == models.DraftTender {
		return nil, nil, models.NewInvalidTransition("tender is not published")
	}
	if winner.Status == models.WinnerSubmission || winner.Status == models.NotSelectedSubmission || winner.Status == models.RejectedSubmission {
		return nil, nil, models.NewInvalidTransition(fmt.Sprintf("cannot select winner from status %s", winner.Status))
	}

	var displaced []models.Submission
	for id, submission := range s.submissions {
		if submission.TenderID == winner.TenderID && submission.ID != winner.ID && submission.Status != models.NotSelectedSubmission {
			submission.Status = models.NotSelectedSubmission
			s.submissions[id] = submission
			displaced = append(displaced, copySubmission(submission))
		}
	}

	winner.Status = models.WinnerSubmission
	s.submissions[winner.ID] = winner

	tender.Status = models.AwardedTender
	tender.UpdatedAt = time.Now().UTC()
	s.tenders[tender.ID] = tender

	copied := copySubmission(winner)
	return &copied, displaced, nil
}

// CreateNotification сохраняет уведомление.
func (s *MemoryStore) CreateNotification(ctx context.Context, notification models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[notification.ID] = notification
	return nil
}

// GetNotificationByID возвращает уведомление по ID, (nil, nil) если не найдено.
func (s *MemoryStore) GetNotificationByID(ctx context.Context, notificationId string) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notification, ok := s.notifications[notificationId]
	if !ok {
		return nil, nil
	}
	return &notification, nil
}

// GetUserNotifications возвращает уведомления пользователя, свежие первыми.
func (s *MemoryStore) GetUserNotifications(ctx context.Context, userId string, limit, offset int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notifications []models.Notification
	for _, notification := range s.notifications {
		if notification.UserID == userId {
			notifications = append(notifications, notification)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return paginate(notifications, limit, offset), nil
}

// GetUnreadCount возвращает количество непрочитанных уведомлений пользователя.
func (s *MemoryStore) GetUnreadCount(ctx context.Context, userId string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	for _, notification := range s.notifications {
		if notification.UserID == userId && !notification.Read {
			count++
		}
	}
	return count, nil
}

// MarkAsRead помечает уведомление прочитанным, (nil, nil) если не найдено.
func (s *MemoryStore) MarkAsRead(ctx context.Context, notificationId string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[notificationId]
	if !ok {
		return nil, nil
	}
	notification.Read = true
	s.notifications[notificationId] = notification
	return &notification, nil
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
func (s *MemoryStore) MarkAllAsRead(ctx context.Context, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, notification := range s.notifications {
		if notification.UserID == userId {
			notification.Read = true
			s.notifications[id] = notification
		}
	}
	return nil
}

// CreateUser создает нового пользователя.
func (s *MemoryStore) CreateUser(ctx context.Context, userReq models.UserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newUser := models.User{
		ID:               uuid.New().String(),
		Email:            userReq.Email,
		FirstName:        userReq.FirstName,
		LastName:         userReq.LastName,
		Role:             userReq.Role,
		OrganizationName: userReq.OrganizationName,
		CreatedAt:        time.Now().UTC(),
	}
	s.users[newUser.ID] = newUser
	return &newUser, nil
}

// GetUserByID возвращает пользователя по ID, (nil, nil) если не найден.
func (s *MemoryStore) GetUserByID(ctx context.Context, userId string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userId]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUsersByRole возвращает всех пользователей с указанной ролью.
func (s *MemoryStore) GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []models.User
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
