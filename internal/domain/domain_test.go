package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRanks() []Rank {
	return []Rank{
		{ID: uuid.New(), Name: "Bronze", MinPoints: 0},
		{ID: uuid.New(), Name: "Silver", MinPoints: 100},
		{ID: uuid.New(), Name: "Gold", MinPoints: 500},
	}
}

func TestRankForPoints_BelowAllThresholds(t *testing.T) {
	ranks := []Rank{{Name: "Silver", MinPoints: 100}}
	assert.Nil(t, RankForPoints(ranks, 50))
}

func TestRankForPoints_HighestEligible(t *testing.T) {
	ranks := sampleRanks()

	r := RankForPoints(ranks, 99)
	require.NotNil(t, r)
	assert.Equal(t, "Bronze", r.Name)

	r = RankForPoints(ranks, 100)
	require.NotNil(t, r)
	assert.Equal(t, "Silver", r.Name)

	// A jump past two thresholds lands on the highest one.
	r = RankForPoints(ranks, 600)
	require.NotNil(t, r)
	assert.Equal(t, "Gold", r.Name)
}

func TestStartingRank(t *testing.T) {
	ranks := sampleRanks()
	r := StartingRank(ranks)
	require.NotNil(t, r)
	assert.Equal(t, "Bronze", r.Name)

	assert.Nil(t, StartingRank(ranks[1:]))
}

func TestSplitForDelivery(t *testing.T) {
	items := []PackItem{
		{FileID: "a", MediaType: MediaPhoto},
		{FileID: "b", MediaType: MediaDocument},
		{FileID: "c", MediaType: MediaVideo},
	}

	grouped, individual := SplitForDelivery(items)
	require.Len(t, grouped, 2)
	require.Len(t, individual, 1)
	assert.Equal(t, "b", individual[0].FileID)
}

func TestValidateRankThresholds(t *testing.T) {
	ranks := sampleRanks()

	assert.NoError(t, ValidateRankThresholds(ranks, 250))
	assert.Error(t, ValidateRankThresholds(ranks, 100))
	assert.Error(t, ValidateRankThresholds(ranks, -1))
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(10))
	assert.Error(t, ValidatePositiveAmount(0))
	assert.Error(t, ValidatePositiveAmount(-5))
}

func TestRankHasRewards(t *testing.T) {
	packID := uuid.New()
	assert.False(t, (&Rank{}).HasRewards())
	assert.True(t, (&Rank{BonusDays: 7}).HasRewards())
	assert.True(t, (&Rank{RewardPackID: &packID}).HasRewards())
}
