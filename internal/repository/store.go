package repository

import (
	"context"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so queries work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Queries is the persistence collaborator contract consumed by the core.
// Lookups return (nil, nil) when the entity does not exist.
type Queries interface {
	// Profiles. Inside a transaction, Profile acquires an exclusive
	// per-profile lock: this is the read-then-conditionally-write primitive
	// the engine's race-safety relies on.
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
	CreateProfile(ctx context.Context, p *domain.Profile) error
	UpdateProfile(ctx context.Context, p *domain.Profile) error
	CountProfiles(ctx context.Context) (int, error)
	TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error)

	// Ranks, ordered ascending by threshold.
	Ranks(ctx context.Context) ([]domain.Rank, error)
	RankByID(ctx context.Context, id uuid.UUID) (*domain.Rank, error)
	CreateRank(ctx context.Context, r *domain.Rank) error
	UpdateRankRewards(ctx context.Context, id uuid.UUID, bonusDays *int, packID *uuid.UUID) (*domain.Rank, error)
	DeleteRank(ctx context.Context, id uuid.UUID) error

	// Reward packs. DeletePack cascades to items.
	CreatePack(ctx context.Context, p *domain.RewardPack) error
	PackByID(ctx context.Context, id uuid.UUID) (*domain.RewardPack, error)
	PackByName(ctx context.Context, name string) (*domain.RewardPack, error)
	ListPacks(ctx context.Context) ([]domain.RewardPack, error)
	DeletePack(ctx context.Context, id uuid.UUID) error
	AddPackItem(ctx context.Context, item *domain.PackItem) error
	PackItems(ctx context.Context, packID uuid.UUID) ([]domain.PackItem, error)

	// Invite tokens and VIP subscriptions.
	CreateToken(ctx context.Context, t *domain.InviteToken) error
	TokenByValue(ctx context.Context, token string) (*domain.InviteToken, error)
	ListTokens(ctx context.Context, limit int) ([]domain.InviteToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID, usedBy int64, at time.Time) error
	SubscriptionByUser(ctx context.Context, userID int64) (*domain.Subscription, error)
	CreateSubscription(ctx context.Context, s *domain.Subscription) error
	UpdateSubscription(ctx context.Context, s *domain.Subscription) error
	ExpireSubscriptionsDue(ctx context.Context, now time.Time) ([]domain.Subscription, error)
	CountActiveSubscriptions(ctx context.Context, now time.Time) (int, error)

	// Bot config (single row) and free-channel requests.
	Config(ctx context.Context) (*domain.BotConfig, error)
	SaveConfig(ctx context.Context, c *domain.BotConfig) error
	CreateFreeRequest(ctx context.Context, r *domain.FreeChannelRequest) error
	PendingFreeRequests(ctx context.Context) ([]domain.FreeChannelRequest, error)
	MarkRequestProcessed(ctx context.Context, id uuid.UUID, at time.Time) error

	// Transactional outbox.
	InsertOutbox(ctx context.Context, draft domain.OutboxDraft) error
	FetchUnpublishedOutbox(ctx context.Context, limit int) ([]domain.OutboxDraft, error)
	MarkOutboxPublished(ctx context.Context, seqIDs []int64) error
}

// Store is Queries plus an atomic execution primitive. InTx runs fn against
// a transactional Queries view; either every write in fn commits or none do.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}
