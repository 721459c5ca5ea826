package services_test

import (
	"context"
	"testing"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableScorer возвращает оценки по имени критерия.
type tableScorer struct {
	scores map[string]float64
}

func (s tableScorer) ScoreCriterion(ctx context.Context, tender *models.Tender, submission *models.Submission, criterion models.EvaluationCriteria) (float64, error) {
	return s.scores[criterion.Name], nil
}

func scoringTender(criteria ...models.EvaluationCriteria) *models.Tender {
	return &models.Tender{ID: "tender-1", Title: "Road works", Criteria: criteria}
}

func TestComputeScoresWeightedTotal(t *testing.T) {
	tender := scoringTender(
		models.EvaluationCriteria{ID: "c1", Name: "Price", Weight: 40},
		models.EvaluationCriteria{ID: "c2", Name: "Quality", Weight: 35},
		models.EvaluationCriteria{ID: "c3", Name: "Delivery time", Weight: 25},
	)
	scorer := tableScorer{scores: map[string]float64{
		"Price":         90,
		"Quality":       70,
		"Delivery time": 100,
	}}

	scores, totalScore, err := services.ComputeScores(context.Background(), scorer, tender, &models.Submission{ID: "s1"})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	// 90*0.40 + 70*0.35 + 100*0.25 = 36 + 24.5 + 25 = 85.5
	assert.InDelta(t, 36.0, scores[0].WeightedScore, 1e-9)
	assert.InDelta(t, 24.5, scores[1].WeightedScore, 1e-9)
	assert.InDelta(t, 25.0, scores[2].WeightedScore, 1e-9)
	assert.InDelta(t, 85.5, totalScore, 1e-9)

	assert.Equal(t, "c1", scores[0].CriteriaID)
	assert.Equal(t, "Price", scores[0].CriteriaName)
	assert.Equal(t, 40, scores[0].Weight)
}

func TestComputeScoresClampsToRange(t *testing.T) {
	tender := scoringTender(
		models.EvaluationCriteria{ID: "c1", Name: "Too high", Weight: 50},
		models.EvaluationCriteria{ID: "c2", Name: "Too low", Weight: 50},
	)
	scorer := tableScorer{scores: map[string]float64{
		"Too high": 150,
		"Too low":  -20,
	}}

	scores, totalScore, err := services.ComputeScores(context.Background(), scorer, tender, &models.Submission{ID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, 100.0, scores[0].Score)
	assert.Equal(t, 0.0, scores[1].Score)
	assert.InDelta(t, 50.0, totalScore, 1e-9)
}

func TestComputeScoresEmptyCriteria(t *testing.T) {
	_, _, err := services.ComputeScores(context.Background(), fixedScorer{score: 80}, scoringTender(), &models.Submission{ID: "s1"})
	requireKind(t, err, models.KindEmptyCriteria)
}

func TestRandomScorerRange(t *testing.T) {
	scorer := services.NewRandomScorer()
	tender := scoringTender(models.EvaluationCriteria{ID: "c1", Name: "Price", Weight: 100})

	for i := 0; i < 200; i++ {
		score, err := scorer.ScoreCriterion(context.Background(), tender, &models.Submission{ID: "s1"}, tender.Criteria[0])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, 70.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}
