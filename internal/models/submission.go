package models

import "time"

type SubmissionStatus string // Статус заявки поставщика

const (
	SubmittedSubmission    SubmissionStatus = "SUBMITTED"     // Заявка подана
	InEvaluationSubmission SubmissionStatus = "IN_EVALUATION" // Заявка на оценке
	AcceptedSubmission     SubmissionStatus = "ACCEPTED"      // Заявка одобрена
	RejectedSubmission     SubmissionStatus = "REJECTED"      // Заявка отклонена
	WinnerSubmission       SubmissionStatus = "WINNER"        // Заявка выбрана победителем
	NotSelectedSubmission  SubmissionStatus = "NOT_SELECTED"  // Заявка не выбрана при награждении
)

// SubmissionScore представляет оценку заявки по одному критерию.
type SubmissionScore struct {
	CriteriaID    string  `json:"criteriaId"`
	CriteriaName  string  `json:"criteriaName"`
	Score         float64 `json:"score"`
	Weight        int     `json:"weight"`
	WeightedScore float64 `json:"weightedScore"`
}

// Submission представляет модель заявки поставщика на тендер.
type Submission struct {
	ID                    string            `json:"id"`
	TenderID              string            `json:"tenderId"`
	SupplierID            string            `json:"supplierId"`
	SupplierName          string            `json:"supplierName"`
	Status                SubmissionStatus  `json:"status"`
	ProposedPrice         float64           `json:"proposedPrice"`
	TechnicalDocumentIDs  []string          `json:"technicalDocumentIds"`
	FinancialDocumentIDs  []string          `json:"financialDocumentIds"`
	Scores                []SubmissionScore `json:"scores,omitempty"`
	TotalScore            *float64          `json:"totalScore,omitempty"`
	SubmittedAt           time.Time         `json:"submittedAt"`
	EvaluatedAt           *time.Time        `json:"evaluatedAt,omitempty"`
}

// SubmissionRequest представляет структуру запроса для подачи заявки.
type SubmissionRequest struct {
	TenderID             string   `json:"tenderId"`
	ProposedPrice        float64  `json:"proposedPrice"`
	TechnicalDocumentIDs []string `json:"technicalDocumentIds,omitempty"`
	FinancialDocumentIDs []string `json:"financialDocumentIds,omitempty"`
}
