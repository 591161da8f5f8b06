package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
)

// MemStore implements Store entirely in memory. It backs the unit tests and
// local development; production wiring uses PgStore. A single mutex guards
// all state, and InTx snapshots it so a failing function rolls back cleanly.
type MemStore struct {
	mu sync.Mutex
	st *memState
}

type memState struct {
	profiles  map[int64]*domain.Profile
	ranks     map[uuid.UUID]*domain.Rank
	packs     map[uuid.UUID]*domain.RewardPack
	items     map[uuid.UUID]*domain.PackItem
	tokens    map[uuid.UUID]*domain.InviteToken
	subs      map[uuid.UUID]*domain.Subscription
	requests  map[uuid.UUID]*domain.FreeChannelRequest
	config    *domain.BotConfig
	outbox    []domain.OutboxDraft
	outboxSeq int64
	published map[int64]bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{st: &memState{
		profiles:  make(map[int64]*domain.Profile),
		ranks:     make(map[uuid.UUID]*domain.Rank),
		packs:     make(map[uuid.UUID]*domain.RewardPack),
		items:     make(map[uuid.UUID]*domain.PackItem),
		tokens:    make(map[uuid.UUID]*domain.InviteToken),
		subs:      make(map[uuid.UUID]*domain.Subscription),
		requests:  make(map[uuid.UUID]*domain.FreeChannelRequest),
		published: make(map[int64]bool),
	}}
}

func (s *memState) clone() *memState {
	cp := &memState{
		profiles:  make(map[int64]*domain.Profile, len(s.profiles)),
		ranks:     make(map[uuid.UUID]*domain.Rank, len(s.ranks)),
		packs:     make(map[uuid.UUID]*domain.RewardPack, len(s.packs)),
		items:     make(map[uuid.UUID]*domain.PackItem, len(s.items)),
		tokens:    make(map[uuid.UUID]*domain.InviteToken, len(s.tokens)),
		subs:      make(map[uuid.UUID]*domain.Subscription, len(s.subs)),
		requests:  make(map[uuid.UUID]*domain.FreeChannelRequest, len(s.requests)),
		outbox:    append([]domain.OutboxDraft(nil), s.outbox...),
		outboxSeq: s.outboxSeq,
		published: make(map[int64]bool, len(s.published)),
	}
	for k, v := range s.profiles {
		c := *v
		cp.profiles[k] = &c
	}
	for k, v := range s.ranks {
		c := *v
		cp.ranks[k] = &c
	}
	for k, v := range s.packs {
		c := *v
		cp.packs[k] = &c
	}
	for k, v := range s.items {
		c := *v
		cp.items[k] = &c
	}
	for k, v := range s.tokens {
		c := *v
		cp.tokens[k] = &c
	}
	for k, v := range s.subs {
		c := *v
		cp.subs[k] = &c
	}
	for k, v := range s.requests {
		c := *v
		cp.requests[k] = &c
	}
	if s.config != nil {
		c := *s.config
		cp.config = &c
	}
	for k, v := range s.published {
		cp.published[k] = v
	}
	return cp
}

// InTx runs fn holding the state lock so concurrent callers serialize, and
// restores the previous state if fn fails.
func (s *MemStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(memQueries{s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *MemStore) view() memQueries { return memQueries{s.st} }

// memQueries implements Queries directly on state; the caller holds the lock.
type memQueries struct{ st *memState }

func copyProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (q memQueries) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	return copyProfile(q.st.profiles[userID]), nil
}

func (q memQueries) CreateProfile(ctx context.Context, p *domain.Profile) error {
	if _, ok := q.st.profiles[p.UserID]; ok {
		return domain.ErrConflict("profile already exists")
	}
	c := *p
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.LastActivityAt = time.Now()
	q.st.profiles[p.UserID] = &c
	return nil
}

func (q memQueries) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	existing, ok := q.st.profiles[p.UserID]
	if !ok {
		return domain.ErrNotFound("profile", "")
	}
	c := *p
	c.CreatedAt = existing.CreatedAt
	c.ReferredBy = existing.ReferredBy // immutable after creation
	c.LastActivityAt = time.Now()
	q.st.profiles[p.UserID] = &c
	return nil
}

func (q memQueries) CountProfiles(ctx context.Context) (int, error) {
	return len(q.st.profiles), nil
}

func (q memQueries) TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range q.st.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q memQueries) Ranks(ctx context.Context) ([]domain.Rank, error) {
	var out []domain.Rank
	for _, r := range q.st.ranks {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinPoints < out[j].MinPoints })
	return out, nil
}

func (q memQueries) RankByID(ctx context.Context, id uuid.UUID) (*domain.Rank, error) {
	r, ok := q.st.ranks[id]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (q memQueries) CreateRank(ctx context.Context, r *domain.Rank) error {
	c := *r
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	q.st.ranks[r.ID] = &c
	return nil
}

func (q memQueries) UpdateRankRewards(ctx context.Context, id uuid.UUID, bonusDays *int, packID *uuid.UUID) (*domain.Rank, error) {
	r, ok := q.st.ranks[id]
	if !ok {
		return nil, nil
	}
	if bonusDays != nil {
		r.BonusDays = *bonusDays
	}
	if packID != nil {
		pid := *packID
		r.RewardPackID = &pid
	}
	c := *r
	return &c, nil
}

func (q memQueries) DeleteRank(ctx context.Context, id uuid.UUID) error {
	if _, ok := q.st.ranks[id]; !ok {
		return domain.ErrNotFound("rank", id.String())
	}
	delete(q.st.ranks, id)
	return nil
}

func (q memQueries) CreatePack(ctx context.Context, p *domain.RewardPack) error {
	for _, existing := range q.st.packs {
		if existing.Name == p.Name {
			return domain.ErrConflict("pack name already exists")
		}
	}
	c := *p
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	q.st.packs[p.ID] = &c
	return nil
}

func (q memQueries) PackByID(ctx context.Context, id uuid.UUID) (*domain.RewardPack, error) {
	p, ok := q.st.packs[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (q memQueries) PackByName(ctx context.Context, name string) (*domain.RewardPack, error) {
	for _, p := range q.st.packs {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (q memQueries) ListPacks(ctx context.Context) ([]domain.RewardPack, error) {
	var out []domain.RewardPack
	for _, p := range q.st.packs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (q memQueries) DeletePack(ctx context.Context, id uuid.UUID) error {
	if _, ok := q.st.packs[id]; !ok {
		return domain.ErrNotFound("pack", id.String())
	}
	delete(q.st.packs, id)
	for itemID, item := range q.st.items {
		if item.PackID == id {
			delete(q.st.items, itemID)
		}
	}
	return nil
}

func (q memQueries) AddPackItem(ctx context.Context, item *domain.PackItem) error {
	if _, ok := q.st.packs[item.PackID]; !ok {
		return domain.ErrNotFound("pack", item.PackID.String())
	}
	c := *item
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	q.st.items[item.ID] = &c
	return nil
}

func (q memQueries) PackItems(ctx context.Context, packID uuid.UUID) ([]domain.PackItem, error) {
	var out []domain.PackItem
	for _, item := range q.st.items {
		if item.PackID == packID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (q memQueries) CreateToken(ctx context.Context, t *domain.InviteToken) error {
	c := *t
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	q.st.tokens[t.ID] = &c
	return nil
}

func (q memQueries) TokenByValue(ctx context.Context, token string) (*domain.InviteToken, error) {
	for _, t := range q.st.tokens {
		if t.Token == token {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (q memQueries) ListTokens(ctx context.Context, limit int) ([]domain.InviteToken, error) {
	var out []domain.InviteToken
	for _, t := range q.st.tokens {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q memQueries) MarkTokenUsed(ctx context.Context, id uuid.UUID, usedBy int64, at time.Time) error {
	t, ok := q.st.tokens[id]
	if !ok || t.Used {
		return domain.ErrTokenInvalid("token already used")
	}
	t.Used = true
	t.UsedBy = &usedBy
	t.UsedAt = &at
	return nil
}

func (q memQueries) SubscriptionByUser(ctx context.Context, userID int64) (*domain.Subscription, error) {
	var latest *domain.Subscription
	for _, s := range q.st.subs {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.ExpiresAt.After(latest.ExpiresAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

func (q memQueries) CreateSubscription(ctx context.Context, s *domain.Subscription) error {
	c := *s
	q.st.subs[s.ID] = &c
	return nil
}

func (q memQueries) UpdateSubscription(ctx context.Context, s *domain.Subscription) error {
	existing, ok := q.st.subs[s.ID]
	if !ok {
		return domain.ErrNotFound("subscription", s.ID.String())
	}
	existing.ExpiresAt = s.ExpiresAt
	existing.Status = s.Status
	return nil
}

func (q memQueries) ExpireSubscriptionsDue(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	var expired []domain.Subscription
	for _, s := range q.st.subs {
		if s.Status == domain.SubscriptionActive && !s.ExpiresAt.After(now) {
			s.Status = domain.SubscriptionExpired
			expired = append(expired, *s)
		}
	}
	return expired, nil
}

func (q memQueries) CountActiveSubscriptions(ctx context.Context, now time.Time) (int, error) {
	n := 0
	for _, s := range q.st.subs {
		if s.Active(now) {
			n++
		}
	}
	return n, nil
}

func (q memQueries) Config(ctx context.Context) (*domain.BotConfig, error) {
	if q.st.config == nil {
		return nil, nil
	}
	c := *q.st.config
	return &c, nil
}

func (q memQueries) SaveConfig(ctx context.Context, c *domain.BotConfig) error {
	cp := *c
	cp.ID = 1
	q.st.config = &cp
	return nil
}

func (q memQueries) CreateFreeRequest(ctx context.Context, r *domain.FreeChannelRequest) error {
	c := *r
	q.st.requests[r.ID] = &c
	return nil
}

func (q memQueries) PendingFreeRequests(ctx context.Context) ([]domain.FreeChannelRequest, error) {
	var out []domain.FreeChannelRequest
	for _, r := range q.st.requests {
		if !r.Processed {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (q memQueries) MarkRequestProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r, ok := q.st.requests[id]
	if !ok || r.Processed {
		return domain.ErrNotFound("free channel request", id.String())
	}
	r.Processed = true
	r.ProcessedAt = &at
	return nil
}

func (q memQueries) InsertOutbox(ctx context.Context, draft domain.OutboxDraft) error {
	q.st.outboxSeq++
	draft.SeqID = q.st.outboxSeq
	q.st.outbox = append(q.st.outbox, draft)
	return nil
}

func (q memQueries) FetchUnpublishedOutbox(ctx context.Context, limit int) ([]domain.OutboxDraft, error) {
	var out []domain.OutboxDraft
	for _, d := range q.st.outbox {
		if q.st.published[d.SeqID] {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (q memQueries) MarkOutboxPublished(ctx context.Context, seqIDs []int64) error {
	for _, id := range seqIDs {
		q.st.published[id] = true
	}
	return nil
}
