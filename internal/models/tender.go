package models

import "time"

type TenderStatus string // Статус тендера

const (
	DraftTender     TenderStatus = "DRAFT"     // Тендер создан, виден только владельцу
	PublishedTender TenderStatus = "PUBLISHED" // Тендер опубликован, открыт для подачи заявок
	ClosedTender    TenderStatus = "CLOSED"    // Приём заявок завершён
	AwardedTender   TenderStatus = "AWARDED"   // По тендеру выбран победитель
)

// EvaluationCriteria представляет взвешенный критерий оценки заявки.
type EvaluationCriteria struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description,omitempty"`
}

// Tender представляет модель тендера.
type Tender struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Budget      float64              `json:"budget"`
	Currency    string               `json:"currency"`
	Status      TenderStatus         `json:"status"`
	OwnerID     string               `json:"ownerId"`
	OwnerName   string               `json:"ownerName"`
	PublishDate *time.Time           `json:"publishDate,omitempty"`
	Deadline    time.Time            `json:"deadline"`
	Criteria    []EvaluationCriteria `json:"criteria"`
	DocumentIDs []string             `json:"documentIds"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// CriteriaRequest представляет критерий в запросе на создание тендера.
type CriteriaRequest struct {
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description,omitempty"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Budget      float64           `json:"budget"`
	Currency    string            `json:"currency"`
	Deadline    time.Time         `json:"deadline"`
	Criteria    []CriteriaRequest `json:"criteria"`
	DocumentIDs []string          `json:"documentIds,omitempty"`
}

// TenderStatistics представляет количество тендеров по статусам.
type TenderStatistics struct {
	Total   int `json:"total"`
	Draft   int `json:"draft"`
	Open    int `json:"open"`
	Closed  int `json:"closed"`
	Awarded int `json:"awarded"`
}

// CriteriaWeightSum считает сумму весов критериев тендера.
func (t *Tender) CriteriaWeightSum() int {
	var sum int
	for _, criterion := range t.Criteria {
		sum += criterion.Weight
	}
	return sum
}
