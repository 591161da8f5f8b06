package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhaus/backoffice/internal/bus"
	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
)

type recordingGateway struct {
	mu       sync.Mutex
	texts    []string
	groups   [][]domain.PackItem
	media    []domain.PackItem
	failText bool
	failSend bool
}

func (g *recordingGateway) SendText(_ context.Context, _ int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failText {
		return errors.New("gateway down")
	}
	g.texts = append(g.texts, text)
	return nil
}

func (g *recordingGateway) SendMediaGroup(_ context.Context, _ int64, items []domain.PackItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSend {
		return errors.New("gateway down")
	}
	g.groups = append(g.groups, items)
	return nil
}

func (g *recordingGateway) SendMedia(_ context.Context, _ int64, item domain.PackItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSend {
		return errors.New("gateway down")
	}
	g.media = append(g.media, item)
	return nil
}

func (g *recordingGateway) sentTexts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.texts...)
}

type extendCall struct {
	userID int64
	days   int
}

type fakeExtender struct {
	mu    sync.Mutex
	calls []extendCall
	err   error
}

func (f *fakeExtender) ExtendVIP(_ context.Context, userID int64, days int) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, f.err
	}
	f.calls = append(f.calls, extendCall{userID: userID, days: days})
	return time.Now().AddDate(0, 0, days), nil
}

type testRig struct {
	engine   *Engine
	store    *repository.MemStore
	bus      *bus.Bus
	gateway  *recordingGateway
	extender *fakeExtender
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemStore()
	b := bus.New(logger)
	gw := &recordingGateway{}
	notifier := notify.NewService(gw, logger)
	ext := &fakeExtender{}
	deliverer := NewDeliverer(store, ext, notifier, logger)
	eng := New(store, b, notifier, deliverer, logger)
	return &testRig{engine: eng, store: store, bus: b, gateway: gw, extender: ext}
}

// seedRanks installs a three-tier ladder: Newbie at 0, Bronze at 100,
// Silver at 500.
func seedRanks(t *testing.T, store *repository.MemStore) (newbie, bronze, silver domain.Rank) {
	t.Helper()
	ctx := context.Background()
	newbie = domain.Rank{ID: uuid.New(), Name: "Newbie", MinPoints: 0}
	bronze = domain.Rank{ID: uuid.New(), Name: "Bronze", MinPoints: 100}
	silver = domain.Rank{ID: uuid.New(), Name: "Silver", MinPoints: 500}
	for _, r := range []domain.Rank{newbie, bronze, silver} {
		rank := r
		require.NoError(t, store.CreateRank(ctx, &rank))
	}
	return newbie, bronze, silver
}

func TestAwardPoints_CreatesProfileLazily(t *testing.T) {
	rig := newTestRig(t)
	newbie, _, _ := seedRanks(t, rig.store)
	ctx := context.Background()

	p, err := rig.engine.AwardPoints(ctx, 42, PointsPerReaction)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Points)
	require.NotNil(t, p.CurrentRankID)
	assert.Equal(t, newbie.ID, *p.CurrentRankID)

	stored, err := rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 10, stored.Points)
}

func TestAwardPoints_RejectsNonPositiveAmount(t *testing.T) {
	rig := newTestRig(t)
	seedRanks(t, rig.store)
	ctx := context.Background()

	for _, amount := range []int{0, -50} {
		_, err := rig.engine.AwardPoints(ctx, 42, amount)
		require.Error(t, err)

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}

	p, err := rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, p, "rejected award must not create a profile")
}

func TestAwardPoints_JumpLandsOnHighestRank(t *testing.T) {
	rig := newTestRig(t)
	_, _, silver := seedRanks(t, rig.store)
	ctx := context.Background()

	// One credit crossing both the Bronze and Silver thresholds.
	p, err := rig.engine.AwardPoints(ctx, 42, 550)
	require.NoError(t, err)
	require.NotNil(t, p.CurrentRankID)
	assert.Equal(t, silver.ID, *p.CurrentRankID)

	// Exactly one rank transition recorded, for the landing rank.
	drafts, err := rig.store.FetchUnpublishedOutbox(ctx, 10)
	require.NoError(t, err)
	var rankEvents []domain.OutboxDraft
	for _, d := range drafts {
		if d.EventType == domain.EventRankIncreased {
			rankEvents = append(rankEvents, d)
		}
	}
	require.Len(t, rankEvents, 1)
}

func TestAwardPoints_ConcurrentAwardsAllLand(t *testing.T) {
	rig := newTestRig(t)
	_, bronze, _ := seedRanks(t, rig.store)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rig.engine.AwardPoints(ctx, 42, PointsPerReaction)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	rig.bus.Wait()

	p, err := rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, workers*PointsPerReaction, p.Points)
	require.NotNil(t, p.CurrentRankID)
	assert.Equal(t, bronze.ID, *p.CurrentRankID)
}

func TestClaimDaily_GrantsThenCooldown(t *testing.T) {
	rig := newTestRig(t)
	seedRanks(t, rig.store)
	ctx := context.Background()

	res, err := rig.engine.ClaimDaily(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, DailyClaimPoints, res.Granted)
	assert.Equal(t, DailyClaimPoints, res.Profile.Points)

	res2, err := rig.engine.ClaimDaily(ctx, 42)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COOLDOWN", appErr.Code)
	require.NotNil(t, res2)
	assert.Greater(t, res2.Remaining, 23*time.Hour)
	assert.LessOrEqual(t, res2.Remaining, 24*time.Hour)

	p, err := rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, DailyClaimPoints, p.Points, "rejected claim must not change the balance")
}

func TestClaimDaily_AllowedAfterWindow(t *testing.T) {
	rig := newTestRig(t)
	seedRanks(t, rig.store)
	ctx := context.Background()

	stale := time.Now().Add(-25 * time.Hour)
	require.NoError(t, rig.store.CreateProfile(ctx, &domain.Profile{
		UserID:         42,
		Points:         10,
		LastActivityAt: stale,
		LastDailyClaim: &stale,
		CreatedAt:      stale,
	}))

	res, err := rig.engine.ClaimDaily(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, DailyClaimPoints, res.Granted)
	assert.Equal(t, 10+DailyClaimPoints, res.Profile.Points)
}

func TestClaimDaily_ConcurrentClaimsOneWinner(t *testing.T) {
	rig := newTestRig(t)
	seedRanks(t, rig.store)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = rig.engine.ClaimDaily(ctx, 42)
		}(i)
	}
	wg.Wait()
	rig.bus.Wait()

	granted := 0
	for _, err := range results {
		if err == nil {
			granted++
		}
	}
	assert.Equal(t, 1, granted, "exactly one concurrent claim may win")

	p, err := rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, DailyClaimPoints, p.Points)
}

func TestHandleReaction_DeduplicatesByUserChannelTag(t *testing.T) {
	rig := newTestRig(t)
	seedRanks(t, rig.store)
	ctx := context.Background()

	evt := domain.ReactionEvent{UserID: 42, ChannelID: 100, Tag: "fire"}
	rig.engine.HandleReaction(ctx, domain.EventReactionAdded, evt)
	rig.engine.HandleReaction(ctx, domain.EventReactionAdded, evt)

	p, err := rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, PointsPerReaction, p.Points, "replayed reaction must not double-award")

	// A different tag is a distinct engagement.
	rig.engine.HandleReaction(ctx, domain.EventReactionAdded, domain.ReactionEvent{UserID: 42, ChannelID: 100, Tag: "heart"})
	p, err = rig.store.Profile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2*PointsPerReaction, p.Points)
}

func TestHandleReaction_ViaBusSubscription(t *testing.T) {
	rig := newTestRig(t)
	seedRanks(t, rig.store)
	rig.engine.RegisterHandlers()
	ctx := context.Background()

	rig.bus.Publish(ctx, domain.EventReactionAdded, domain.ReactionEvent{UserID: 7, ChannelID: 1, Tag: "fire"})
	rig.bus.Wait()

	p, err := rig.store.Profile(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, PointsPerReaction, p.Points)
}

func TestProfile_NotFound(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.engine.Profile(context.Background(), 999)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
