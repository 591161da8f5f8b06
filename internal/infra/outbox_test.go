package infra

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/repository"
)

func TestOutboxPoller_PublishesAndMarks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.InsertOutbox(ctx, domain.NewReferralCompletedDraft(domain.ReferralCompletedEvent{
		ReferrerID: 1, RefereeID: 2,
	})))
	require.NoError(t, store.InsertOutbox(ctx, domain.NewSubscriptionDraft(domain.EventSubscriptionCreated, domain.SubscriptionEvent{
		UserID: 2, ExpiresAt: time.Now().Add(24 * time.Hour),
	})))

	// A disabled producer accepts every publish, so the batch drains.
	producer := NewKafkaProducer("", false, logger)
	poller := NewOutboxPoller(store, producer, logger, time.Second)

	require.NoError(t, poller.Poll(ctx))

	left, err := store.FetchUnpublishedOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestOutboxPoller_EmptyBatchIsNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemStore()
	producer := NewKafkaProducer("", false, logger)
	poller := NewOutboxPoller(store, producer, logger, time.Second)

	require.NoError(t, poller.Poll(context.Background()))
}
