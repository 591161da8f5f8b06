// Package engine implements the gamification core: point awards, rank
// transitions, daily claims and referral processing. All profile mutation
// funnels through here so the race-safety and reward-delivery rules hold
// no matter which surface triggered the change.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clubhaus/backoffice/internal/bus"
	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/guard"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
)

// Point amounts. Fixed by product, not configurable at runtime.
const (
	PointsPerReaction = 10
	DailyClaimPoints  = 50
	ReferrerBonus     = 100
	RefereeBonus      = 50

	dailyCooldown = 24 * time.Hour
)

// Engine owns every gamification state transition. Writes go through the
// store's transactional view under a per-profile lock; side effects (bus
// events, notifications, reward delivery) run only after commit.
type Engine struct {
	store     repository.Store
	bus       *bus.Bus
	notifier  *notify.Service
	deliverer *Deliverer
	dedupe    *guard.Dedupe
	locks     *keyedMutex
	logger    *slog.Logger
}

// New creates the engine. The deliverer is optional in tests but required
// for rank rewards to reach users.
func New(store repository.Store, b *bus.Bus, notifier *notify.Service, deliverer *Deliverer, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		bus:       b,
		notifier:  notifier,
		deliverer: deliverer,
		dedupe:    guard.NewDedupe(),
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

// RegisterHandlers subscribes the engine to the inbound engagement topics.
func (e *Engine) RegisterHandlers() {
	e.bus.Subscribe(domain.EventReactionAdded, e.HandleReaction)
}

// awardOutcome carries the transactional result out to the side-effect
// phase. rankUp is nil when the award did not change the rank.
type awardOutcome struct {
	profile *domain.Profile
	rankUp  *domain.Rank
	oldRank *uuid.UUID
}

// AwardPoints credits amount to the profile, creating it lazily, and
// promotes the rank when a threshold is crossed. Rejects non-positive
// amounts. Returns the updated profile.
func (e *Engine) AwardPoints(ctx context.Context, userID int64, amount int) (*domain.Profile, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	var out *awardOutcome
	err := e.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		out, err = applyAward(ctx, q, userID, amount, time.Now(), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.afterAward(ctx, out)
	return out.profile, nil
}

// DailyResult reports a daily claim attempt. On a cooldown rejection
// Remaining holds the exact time left until the next claim.
type DailyResult struct {
	Profile   *domain.Profile `json:"profile,omitempty"`
	Granted   int             `json:"granted"`
	Remaining time.Duration   `json:"remaining,omitempty"`
}

// ClaimDaily grants the daily bonus if the last claim is at least 24 hours
// old. Inside the window it returns ErrCooldown and a result carrying the
// remaining wait.
func (e *Engine) ClaimDaily(ctx context.Context, userID int64) (*DailyResult, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	now := time.Now()
	var out *awardOutcome
	var remaining time.Duration

	err := e.store.InTx(ctx, func(q repository.Queries) error {
		p, err := q.Profile(ctx, userID)
		if err != nil {
			return err
		}
		if p != nil && p.LastDailyClaim != nil {
			if elapsed := now.Sub(*p.LastDailyClaim); elapsed < dailyCooldown {
				remaining = dailyCooldown - elapsed
				return domain.ErrCooldown(fmt.Sprintf("next claim available in %s", remaining.Round(time.Second)))
			}
		}
		out, err = applyAward(ctx, q, userID, DailyClaimPoints, now, &now)
		return err
	})
	if err != nil {
		if remaining > 0 {
			return &DailyResult{Remaining: remaining}, err
		}
		return nil, err
	}

	e.bus.Publish(ctx, domain.EventDailyClaimed, domain.ReactionEvent{UserID: userID})
	_ = e.notifier.Send(ctx, userID, notify.TemplateDailyClaim, map[string]any{
		"points": DailyClaimPoints,
		"total":  out.profile.Points,
	})
	e.afterAward(ctx, out)

	return &DailyResult{Profile: out.profile, Granted: DailyClaimPoints}, nil
}

// HandleReaction is the bus handler for inbound reactions. The dedupe key
// covers user, channel and tag, so replays of the same reaction are
// silently dropped. On award failure the key is released for retry.
func (e *Engine) HandleReaction(ctx context.Context, _ domain.EventType, payload any) {
	evt, ok := payload.(domain.ReactionEvent)
	if !ok {
		e.logger.Error("reaction handler got unexpected payload", "type", fmt.Sprintf("%T", payload))
		return
	}

	key := fmt.Sprintf("%d:%d:%s", evt.UserID, evt.ChannelID, evt.Tag)
	if res := e.dedupe.Check(ctx, key); !res.Allowed {
		e.logger.Debug("reaction dropped", "key", key, "reason", res.Reason)
		return
	}

	if _, err := e.AwardPoints(ctx, evt.UserID, PointsPerReaction); err != nil {
		e.dedupe.Remove(key)
		e.logger.Error("reaction award failed", "user_id", evt.UserID, "error", err)
	}
}

// applyAward is the in-transaction award path shared by reactions, daily
// claims and referral bonuses. It re-reads ranks and the profile under the
// transaction's lock, applies the credit, and records the rank transition
// (including the outbox draft) when one happens. claimAt, when set, stamps
// the daily claim in the same write.
func applyAward(ctx context.Context, q repository.Queries, userID int64, amount int, now time.Time, claimAt *time.Time) (*awardOutcome, error) {
	ranks, err := q.Ranks(ctx)
	if err != nil {
		return nil, err
	}

	p, err := q.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	created := false
	if p == nil {
		p = newProfile(userID, ranks, now)
		created = true
	}

	p.Points += amount
	p.LastActivityAt = now
	if claimAt != nil {
		p.LastDailyClaim = claimAt
	}

	out := &awardOutcome{profile: p}
	if next := domain.RankForPoints(ranks, p.Points); next != nil {
		if p.CurrentRankID == nil || *p.CurrentRankID != next.ID {
			out.oldRank = p.CurrentRankID
			id := next.ID
			p.CurrentRankID = &id
			out.rankUp = next

			draft := domain.NewRankIncreasedDraft(domain.RankIncreasedEvent{
				UserID:    userID,
				OldRankID: out.oldRank,
				NewRankID: next.ID,
				Points:    p.Points,
			})
			if err := q.InsertOutbox(ctx, draft); err != nil {
				return nil, err
			}
		}
	}

	if created {
		return out, q.CreateProfile(ctx, p)
	}
	return out, q.UpdateProfile(ctx, p)
}

// newProfile builds a fresh profile at the starting rank.
func newProfile(userID int64, ranks []domain.Rank, now time.Time) *domain.Profile {
	p := &domain.Profile{UserID: userID, LastActivityAt: now, CreatedAt: now}
	if start := domain.StartingRank(ranks); start != nil {
		id := start.ID
		p.CurrentRankID = &id
	}
	return p
}

// afterAward runs the post-commit side effects of a rank transition:
// publish the event, congratulate the user, deliver the rank's rewards.
// Every step here is best-effort; the points are already committed.
func (e *Engine) afterAward(ctx context.Context, out *awardOutcome) {
	if out == nil || out.rankUp == nil {
		return
	}

	e.bus.Publish(ctx, domain.EventRankIncreased, domain.RankIncreasedEvent{
		UserID:    out.profile.UserID,
		OldRankID: out.oldRank,
		NewRankID: out.rankUp.ID,
		Points:    out.profile.Points,
	})

	oldName := "none"
	if out.oldRank != nil {
		if r, err := e.store.RankByID(ctx, *out.oldRank); err == nil && r != nil {
			oldName = r.Name
		}
	}
	_ = e.notifier.Send(ctx, out.profile.UserID, notify.TemplateRankUp, map[string]any{
		"old_rank": oldName,
		"new_rank": out.rankUp.Name,
	})

	if e.deliverer != nil {
		e.deliverer.Deliver(ctx, out.profile.UserID, out.rankUp)
	}
}

// Profile returns the gamification profile, or NotFound when the user has
// never interacted.
func (e *Engine) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := e.store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound("profile", fmt.Sprintf("%d", userID))
	}
	return p, nil
}
