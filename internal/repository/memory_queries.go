package repository

import (
	"context"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
)

// Lock-and-delegate wrappers giving MemStore the plain Queries surface.

func (s *MemStore) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Profile(ctx, userID)
}

func (s *MemStore) CreateProfile(ctx context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateProfile(ctx, p)
}

func (s *MemStore) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpdateProfile(ctx, p)
}

func (s *MemStore) CountProfiles(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CountProfiles(ctx)
}

func (s *MemStore) TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().TopProfiles(ctx, limit)
}

func (s *MemStore) Ranks(ctx context.Context) ([]domain.Rank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Ranks(ctx)
}

func (s *MemStore) RankByID(ctx context.Context, id uuid.UUID) (*domain.Rank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().RankByID(ctx, id)
}

func (s *MemStore) CreateRank(ctx context.Context, r *domain.Rank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateRank(ctx, r)
}

func (s *MemStore) UpdateRankRewards(ctx context.Context, id uuid.UUID, bonusDays *int, packID *uuid.UUID) (*domain.Rank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpdateRankRewards(ctx, id, bonusDays, packID)
}

func (s *MemStore) DeleteRank(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().DeleteRank(ctx, id)
}

func (s *MemStore) CreatePack(ctx context.Context, p *domain.RewardPack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreatePack(ctx, p)
}

func (s *MemStore) PackByID(ctx context.Context, id uuid.UUID) (*domain.RewardPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().PackByID(ctx, id)
}

func (s *MemStore) PackByName(ctx context.Context, name string) (*domain.RewardPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().PackByName(ctx, name)
}

func (s *MemStore) ListPacks(ctx context.Context) ([]domain.RewardPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ListPacks(ctx)
}

func (s *MemStore) DeletePack(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().DeletePack(ctx, id)
}

func (s *MemStore) AddPackItem(ctx context.Context, item *domain.PackItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().AddPackItem(ctx, item)
}

func (s *MemStore) PackItems(ctx context.Context, packID uuid.UUID) ([]domain.PackItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().PackItems(ctx, packID)
}

func (s *MemStore) CreateToken(ctx context.Context, t *domain.InviteToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateToken(ctx, t)
}

func (s *MemStore) TokenByValue(ctx context.Context, token string) (*domain.InviteToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().TokenByValue(ctx, token)
}

func (s *MemStore) ListTokens(ctx context.Context, limit int) ([]domain.InviteToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ListTokens(ctx, limit)
}

func (s *MemStore) MarkTokenUsed(ctx context.Context, id uuid.UUID, usedBy int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().MarkTokenUsed(ctx, id, usedBy, at)
}

func (s *MemStore) SubscriptionByUser(ctx context.Context, userID int64) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SubscriptionByUser(ctx, userID)
}

func (s *MemStore) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateSubscription(ctx, sub)
}

func (s *MemStore) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpdateSubscription(ctx, sub)
}

func (s *MemStore) ExpireSubscriptionsDue(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ExpireSubscriptionsDue(ctx, now)
}

func (s *MemStore) CountActiveSubscriptions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CountActiveSubscriptions(ctx, now)
}

func (s *MemStore) Config(ctx context.Context) (*domain.BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Config(ctx)
}

func (s *MemStore) SaveConfig(ctx context.Context, c *domain.BotConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SaveConfig(ctx, c)
}

func (s *MemStore) CreateFreeRequest(ctx context.Context, r *domain.FreeChannelRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateFreeRequest(ctx, r)
}

func (s *MemStore) PendingFreeRequests(ctx context.Context) ([]domain.FreeChannelRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().PendingFreeRequests(ctx)
}

func (s *MemStore) MarkRequestProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().MarkRequestProcessed(ctx, id, at)
}

func (s *MemStore) InsertOutbox(ctx context.Context, draft domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().InsertOutbox(ctx, draft)
}

func (s *MemStore) FetchUnpublishedOutbox(ctx context.Context, limit int) ([]domain.OutboxDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().FetchUnpublishedOutbox(ctx, limit)
}

func (s *MemStore) MarkOutboxPublished(ctx context.Context, seqIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().MarkOutboxPublished(ctx, seqIDs)
}
