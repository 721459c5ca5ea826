package utils_test

import (
	"testing"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimitOffsetDefaults(t *testing.T) {
	limit, offset, err := utils.ParseLimitOffset("", "")
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 0, offset)
}

func TestParseLimitOffsetValid(t *testing.T) {
	limit, offset, err := utils.ParseLimitOffset("50", "10")
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 10, offset)
}

func TestParseLimitOffsetInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		limit  string
		offset string
	}{
		{name: "zero limit", limit: "0", offset: ""},
		{name: "limit above 50", limit: "51", offset: ""},
		{name: "non-numeric limit", limit: "abc", offset: ""},
		{name: "negative offset", limit: "", offset: "-1"},
		{name: "non-numeric offset", limit: "", offset: "abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := utils.ParseLimitOffset(tc.limit, tc.offset)
			assert.Error(t, err)
		})
	}
}

func TestContainsTenderStatus(t *testing.T) {
	transitions := []models.TenderStatus{models.PublishedTender}
	assert.True(t, utils.ContainsTenderStatus(transitions, models.PublishedTender))
	assert.False(t, utils.ContainsTenderStatus(transitions, models.ClosedTender))
	assert.False(t, utils.ContainsTenderStatus(nil, models.PublishedTender))
}

func TestContainsSubmissionStatus(t *testing.T) {
	transitions := []models.SubmissionStatus{models.WinnerSubmission, models.NotSelectedSubmission}
	assert.True(t, utils.ContainsSubmissionStatus(transitions, models.WinnerSubmission))
	assert.False(t, utils.ContainsSubmissionStatus(transitions, models.AcceptedSubmission))
}
