package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhaus/backoffice/internal/domain"
)

// seedPack creates a pack with two photos and a document.
func seedPack(t *testing.T, rig *testRig) domain.RewardPack {
	t.Helper()
	ctx := context.Background()
	pack := domain.RewardPack{ID: uuid.New(), Name: "launch"}
	require.NoError(t, rig.store.CreatePack(ctx, &pack))
	items := []domain.PackItem{
		{ID: uuid.New(), PackID: pack.ID, FileID: "f1", UniqueID: "u1", MediaType: domain.MediaPhoto},
		{ID: uuid.New(), PackID: pack.ID, FileID: "f2", UniqueID: "u2", MediaType: domain.MediaPhoto},
		{ID: uuid.New(), PackID: pack.ID, FileID: "f3", UniqueID: "u3", MediaType: domain.MediaDocument},
	}
	for _, it := range items {
		item := it
		require.NoError(t, rig.store.AddPackItem(ctx, &item))
	}
	return pack
}

func TestDeliver_VIPDays(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rank := &domain.Rank{ID: uuid.New(), Name: "Gold", MinPoints: 1000, BonusDays: 7}
	rig.engine.deliverer.Deliver(ctx, 42, rank)

	require.Len(t, rig.extender.calls, 1)
	assert.Equal(t, extendCall{userID: 42, days: 7}, rig.extender.calls[0])

	texts := rig.gateway.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "7 VIP days")
}

func TestDeliver_PackSplitsGroupedAndIndividual(t *testing.T) {
	rig := newTestRig(t)
	pack := seedPack(t, rig)
	ctx := context.Background()

	packID := pack.ID
	rank := &domain.Rank{ID: uuid.New(), Name: "Gold", MinPoints: 1000, RewardPackID: &packID}
	rig.engine.deliverer.Deliver(ctx, 42, rank)

	require.Len(t, rig.gateway.groups, 1, "photos go out as one album")
	assert.Len(t, rig.gateway.groups[0], 2)
	require.Len(t, rig.gateway.media, 1, "documents go out individually")
	assert.Equal(t, domain.MediaDocument, rig.gateway.media[0].MediaType)

	texts := rig.gateway.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "launch")
	assert.Contains(t, texts[0], "Gold")
}

func TestDeliver_NoRewardsNoSends(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rank := &domain.Rank{ID: uuid.New(), Name: "Bronze", MinPoints: 100}
	rig.engine.deliverer.Deliver(ctx, 42, rank)

	assert.Empty(t, rig.extender.calls)
	assert.Empty(t, rig.gateway.sentTexts())
	assert.Empty(t, rig.gateway.groups)
	assert.Empty(t, rig.gateway.media)
}

func TestDeliver_ExtenderFailureDoesNotBlockPack(t *testing.T) {
	rig := newTestRig(t)
	pack := seedPack(t, rig)
	ctx := context.Background()

	rig.extender.err = errors.New("subscription service down")
	packID := pack.ID
	rank := &domain.Rank{ID: uuid.New(), Name: "Gold", MinPoints: 1000, BonusDays: 7, RewardPackID: &packID}
	rig.engine.deliverer.Deliver(ctx, 42, rank)

	assert.Len(t, rig.gateway.groups, 1, "pack delivery proceeds despite the vip failure")
}

func TestAwardPoints_DeliveryFailureDoesNotRollBackPoints(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	pack := seedPack(t, rig)
	packID := pack.ID
	gold := domain.Rank{ID: uuid.New(), Name: "Gold", MinPoints: 100, RewardPackID: &packID}
	require.NoError(t, rig.store.CreateRank(ctx, &gold))

	rig.gateway.failSend = true
	rig.gateway.failText = true

	p, err := rig.engine.AwardPoints(ctx, 42, 150)
	require.NoError(t, err, "a broken gateway must never fail the award")
	rig.bus.Wait()

	assert.Equal(t, 150, p.Points)
	require.NotNil(t, p.CurrentRankID)
	assert.Equal(t, gold.ID, *p.CurrentRankID)
}

func TestAwardPoints_RankUpNotifiesAndDelivers(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	gold := domain.Rank{ID: uuid.New(), Name: "Gold", MinPoints: 100, BonusDays: 3}
	require.NoError(t, rig.store.CreateRank(ctx, &gold))

	_, err := rig.engine.AwardPoints(ctx, 42, 120)
	require.NoError(t, err)
	rig.bus.Wait()

	require.Len(t, rig.extender.calls, 1)
	assert.Equal(t, 3, rig.extender.calls[0].days)

	var sawRankUp bool
	for _, text := range rig.gateway.sentTexts() {
		if strings.Contains(text, "Gold") && strings.Contains(text, "ranked up") {
			sawRankUp = true
		}
	}
	assert.True(t, sawRankUp, "rank-up congratulation should be sent")
}
