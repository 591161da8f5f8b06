package subscription

import (
	"context"
	"io"
	"log/slog"
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

type nullGateway struct{}

func (nullGateway) SendText(context.Context, int64, string) error                  { return nil }
func (nullGateway) SendMediaGroup(context.Context, int64, []domain.PackItem) error { return nil }
func (nullGateway) SendMedia(context.Context, int64, domain.PackItem) error        { return nil }

func newTestService(t *testing.T) (*Service, *repository.MemStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemStore()
	svc := NewService(store, bus.New(logger), notify.NewService(nullGateway{}, logger), logger)
	return svc, store
}

func TestGenerateToken(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, 99, 72)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, 72, token.DurationHours)
	assert.Equal(t, int64(99), token.GeneratedBy)
	assert.False(t, token.Used)

	stored, err := store.TokenByValue(ctx, token.Token)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, token.ID, stored.ID)
}

func TestGenerateToken_RejectsNonPositiveDuration(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GenerateToken(context.Background(), 99, 0)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestRedeem_OpensSubscription(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, 99, 48)
	require.NoError(t, err)

	sub, err := svc.Redeem(ctx, token.Token, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), sub.ExpiresAt, 5*time.Second)

	stored, err := store.TokenByValue(ctx, token.Token)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	require.NotNil(t, stored.UsedBy)
	assert.Equal(t, int64(42), *stored.UsedBy)
}

func TestRedeem_TokenIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, 99, 24)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, token.Token, 42)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, token.Token, 43)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestRedeem_UnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Redeem(context.Background(), "VIP-NOPE", 42)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestValidateToken_DoesNotConsume(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, 99, 24)
	require.NoError(t, err)

	got, err := svc.ValidateToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)

	// Still redeemable after the check.
	_, err = svc.Redeem(ctx, token.Token, 42)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token.Token)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestExtendVIP_NoSubscriptionStartsNow(t *testing.T) {
	svc, _ := newTestService(t)

	expiry, err := svc.ExtendVIP(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), expiry, 5*time.Second)
}

func TestExtendVIP_ActiveExtendsFromExpiry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	current := time.Now().Add(48 * time.Hour)
	require.NoError(t, store.CreateSubscription(ctx, &domain.Subscription{
		ID:        uuid.New(),
		UserID:    42,
		JoinedAt:  time.Now(),
		ExpiresAt: current,
		Status:    domain.SubscriptionActive,
	}))

	expiry, err := svc.ExtendVIP(ctx, 42, 7)
	require.NoError(t, err)
	assert.WithinDuration(t, current.AddDate(0, 0, 7), expiry, time.Second)
}

func TestExtendVIP_LapsedRestartsFromNow(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.CreateSubscription(ctx, &domain.Subscription{
		ID:        uuid.New(),
		UserID:    42,
		JoinedAt:  time.Now().Add(-30 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
		Status:    domain.SubscriptionExpired,
	}))

	expiry, err := svc.ExtendVIP(ctx, 42, 7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), expiry, 5*time.Second)

	sub, err := store.SubscriptionByUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
}

func TestExpireDue(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.CreateSubscription(ctx, &domain.Subscription{
		ID:        uuid.New(),
		UserID:    42,
		JoinedAt:  time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
		Status:    domain.SubscriptionActive,
	}))
	require.NoError(t, store.CreateSubscription(ctx, &domain.Subscription{
		ID:        uuid.New(),
		UserID:    43,
		JoinedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Status:    domain.SubscriptionActive,
	}))

	n, err := svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lapsed, err := store.SubscriptionByUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, lapsed.Status)

	alive, err := store.SubscriptionByUser(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, alive.Status)

	drafts, err := store.FetchUnpublishedOutbox(ctx, 10)
	require.NoError(t, err)
	var sawExpired bool
	for _, d := range drafts {
		if d.EventType == domain.EventSubscriptionExpired {
			sawExpired = true
		}
	}
	assert.True(t, sawExpired)
}

func TestStatus_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Status(context.Background(), 999)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
