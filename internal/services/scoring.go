package services

import (
	"context"
	"math/rand"

	"github.com/senyabanana/procurement-service/internal/models"
)

// CriterionScorer - подключаемая способность оценки заявки по одному критерию.
// Возвращаемое значение приводится движком к диапазону [0, 100].
// Продовые оценщики (правила, ML, ручная проверка) подставляются сюда,
// не затрагивая воркфлоу.
type CriterionScorer interface {
	ScoreCriterion(ctx context.Context, tender *models.Tender, submission *models.Submission, criterion models.EvaluationCriteria) (float64, error)
}

// RandomScorer - оценщик-заглушка: равномерная оценка в диапазоне [70, 100].
type RandomScorer struct{}

// NewRandomScorer создает новый экземпляр RandomScorer.
func NewRandomScorer() *RandomScorer {
	return &RandomScorer{}
}

// ScoreCriterion возвращает случайную оценку в диапазоне [70, 100].
func (s *RandomScorer) ScoreCriterion(ctx context.Context, tender *models.Tender, submission *models.Submission, criterion models.EvaluationCriteria) (float64, error) {
	return float64(rand.Intn(31) + 70), nil
}

// ComputeScores считает оценки заявки по всем критериям тендера.
// Для каждого критерия weightedScore = score * weight / 100,
// итог - сумма weightedScore. Тендер без критериев - ошибка EmptyCriteria:
// итог в этом случае не определён, а не равен нулю.
func ComputeScores(ctx context.Context, scorer CriterionScorer, tender *models.Tender, submission *models.Submission) ([]models.SubmissionScore, float64, error) {
	if len(tender.Criteria) == 0 {
		return nil, 0, models.NewEmptyCriteria("tender has no evaluation criteria")
	}

	var scores []models.SubmissionScore
	var totalScore float64
	for _, criterion := range tender.Criteria {
		score, err := scorer.ScoreCriterion(ctx, tender, submission, criterion)
		if err != nil {
			return nil, 0, models.NewInternal("failed to score criterion " + criterion.Name)
		}
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		weightedScore := score * float64(criterion.Weight) / 100
		scores = append(scores, models.SubmissionScore{
			CriteriaID:    criterion.ID,
			CriteriaName:  criterion.Name,
			Score:         score,
			Weight:        criterion.Weight,
			WeightedScore: weightedScore,
		})
		totalScore += weightedScore
	}
	return scores, totalScore, nil
}
