package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_DeletePackCascades(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	pack := &domain.RewardPack{ID: uuid.New(), Name: "starter"}
	require.NoError(t, store.CreatePack(ctx, pack))
	require.NoError(t, store.AddPackItem(ctx, &domain.PackItem{
		ID: uuid.New(), PackID: pack.ID, FileID: "f1", UniqueID: "u1", MediaType: domain.MediaPhoto,
	}))
	require.NoError(t, store.AddPackItem(ctx, &domain.PackItem{
		ID: uuid.New(), PackID: pack.ID, FileID: "f2", UniqueID: "u2", MediaType: domain.MediaDocument,
	}))

	require.NoError(t, store.DeletePack(ctx, pack.ID))

	got, err := store.PackByID(ctx, pack.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	items, err := store.PackItems(ctx, pack.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemStore_InTxRollsBackOnError(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.InTx(ctx, func(q Queries) error {
		if err := q.CreateProfile(ctx, &domain.Profile{UserID: 7, Points: 10}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := store.Profile(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMemStore_ReferrerImmutableOnUpdate(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	referrer := int64(1)
	require.NoError(t, store.CreateProfile(ctx, &domain.Profile{UserID: 2, ReferredBy: &referrer}))

	other := int64(9)
	require.NoError(t, store.UpdateProfile(ctx, &domain.Profile{UserID: 2, Points: 5, ReferredBy: &other}))

	p, err := store.Profile(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, p.ReferredBy)
	assert.Equal(t, referrer, *p.ReferredBy)
}

func TestMemStore_TokenSingleUse(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	tok := &domain.InviteToken{ID: uuid.New(), Token: "abc", GeneratedBy: 1, DurationHours: 24}
	require.NoError(t, store.CreateToken(ctx, tok))

	require.NoError(t, store.MarkTokenUsed(ctx, tok.ID, 42, time.Now()))
	err := store.MarkTokenUsed(ctx, tok.ID, 43, time.Now())
	require.Error(t, err)
}

func TestMemStore_OutboxFetchAndMark(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.InsertOutbox(ctx, domain.NewRankIncreasedDraft(domain.RankIncreasedEvent{
		UserID: 1, NewRankID: uuid.New(),
	})))

	drafts, err := store.FetchUnpublishedOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	require.NoError(t, store.MarkOutboxPublished(ctx, []int64{drafts[0].SeqID}))

	drafts, err = store.FetchUnpublishedOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}
