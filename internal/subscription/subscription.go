// Package subscription manages VIP memberships: invite tokens, redemption,
// extension and expiry sweeping.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clubhaus/backoffice/internal/bus"
	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
)

// Service handles VIP subscription operations.
type Service struct {
	store    repository.Store
	bus      *bus.Bus
	notifier *notify.Service
	logger   *slog.Logger
}

// NewService creates a subscription Service.
func NewService(store repository.Store, b *bus.Bus, notifier *notify.Service, logger *slog.Logger) *Service {
	return &Service{store: store, bus: b, notifier: notifier, logger: logger}
}

// GenerateToken issues a single-use VIP invite worth durationHours of
// membership.
func (s *Service) GenerateToken(ctx context.Context, adminID int64, durationHours int) (*domain.InviteToken, error) {
	if durationHours <= 0 {
		return nil, domain.ErrValidation("token duration must be positive")
	}

	token := &domain.InviteToken{
		ID:            uuid.New(),
		Token:         "VIP-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16]),
		GeneratedBy:   adminID,
		DurationHours: durationHours,
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return nil, err
	}
	s.logger.Info("invite token generated", "token_id", token.ID, "admin_id", adminID, "hours", durationHours)
	return token, nil
}

// ListTokens returns recent invite tokens, newest first.
func (s *Service) ListTokens(ctx context.Context, limit int) ([]domain.InviteToken, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListTokens(ctx, limit)
}

// Redeem consumes a token for the given user and opens or extends their
// subscription by the token's duration. The token lock, the used flag and
// the subscription write commit together, so a token can only ever be
// redeemed once.
func checkToken(token *domain.InviteToken) error {
	if token == nil {
		return domain.ErrTokenInvalid("unknown token")
	}
	if token.Used {
		return domain.ErrTokenInvalid("token already redeemed")
	}
	return nil
}

// ValidateToken checks a token without consuming it.
func (s *Service) ValidateToken(ctx context.Context, tokenValue string) (*domain.InviteToken, error) {
	token, err := s.store.TokenByValue(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	if err := checkToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) Redeem(ctx context.Context, tokenValue string, userID int64) (*domain.Subscription, error) {
	now := time.Now()
	var sub *domain.Subscription

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		token, err := q.TokenByValue(ctx, tokenValue)
		if err != nil {
			return err
		}
		if err := checkToken(token); err != nil {
			return err
		}
		if err := q.MarkTokenUsed(ctx, token.ID, userID, now); err != nil {
			return err
		}

		sub, err = extendLocked(ctx, q, userID, time.Duration(token.DurationHours)*time.Hour, now, &token.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, domain.EventSubscriptionCreated, domain.SubscriptionEvent{UserID: userID, ExpiresAt: sub.ExpiresAt})
	s.logger.Info("token redeemed", "user_id", userID, "expires_at", sub.ExpiresAt)
	return sub, nil
}

// ExtendVIP adds whole days to a user's membership: an active subscription
// grows from its current expiry, a lapsed or missing one restarts from now.
// Satisfies the engine's reward-delivery contract.
func (s *Service) ExtendVIP(ctx context.Context, userID int64, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, domain.ErrValidation("days must be positive")
	}

	now := time.Now()
	var sub *domain.Subscription
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		sub, err = extendLocked(ctx, q, userID, time.Duration(days)*24*time.Hour, now, nil)
		return err
	})
	if err != nil {
		return time.Time{}, err
	}

	s.bus.Publish(ctx, domain.EventSubscriptionCreated, domain.SubscriptionEvent{UserID: userID, ExpiresAt: sub.ExpiresAt})
	return sub.ExpiresAt, nil
}

// extendLocked applies a membership extension inside a transaction. The
// subscription row is read under lock by the transactional queries view.
func extendLocked(ctx context.Context, q repository.Queries, userID int64, d time.Duration, now time.Time, tokenID *uuid.UUID) (*domain.Subscription, error) {
	sub, err := q.SubscriptionByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub == nil {
		sub = &domain.Subscription{
			ID:        uuid.New(),
			UserID:    userID,
			JoinedAt:  now,
			ExpiresAt: now.Add(d),
			Status:    domain.SubscriptionActive,
			TokenID:   tokenID,
		}
		if err := q.CreateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	} else {
		if sub.Active(now) {
			sub.ExpiresAt = sub.ExpiresAt.Add(d)
		} else {
			sub.ExpiresAt = now.Add(d)
		}
		sub.Status = domain.SubscriptionActive
		if tokenID != nil {
			sub.TokenID = tokenID
		}
		if err := q.UpdateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	}

	draft := domain.NewSubscriptionDraft(domain.EventSubscriptionCreated, domain.SubscriptionEvent{
		UserID:    userID,
		ExpiresAt: sub.ExpiresAt,
	})
	if err := q.InsertOutbox(ctx, draft); err != nil {
		return nil, err
	}
	return sub, nil
}

// Status returns the user's subscription or NotFound.
func (s *Service) Status(ctx context.Context, userID int64) (*domain.Subscription, error) {
	sub, err := s.store.SubscriptionByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound("subscription", fmt.Sprintf("%d", userID))
	}
	return sub, nil
}

// ExpireDue flips every subscription past its expiry to expired, records
// the lifecycle events and notifies the affected users. Returns how many
// subscriptions lapsed.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	now := time.Now()
	var expired []domain.Subscription

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		expired, err = q.ExpireSubscriptionsDue(ctx, now)
		if err != nil {
			return err
		}
		for _, sub := range expired {
			draft := domain.NewSubscriptionDraft(domain.EventSubscriptionExpired, domain.SubscriptionEvent{
				UserID:    sub.UserID,
				ExpiresAt: sub.ExpiresAt,
			})
			if err := q.InsertOutbox(ctx, draft); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, sub := range expired {
		s.bus.Publish(ctx, domain.EventSubscriptionExpired, domain.SubscriptionEvent{UserID: sub.UserID, ExpiresAt: sub.ExpiresAt})
		_ = s.notifier.Send(ctx, sub.UserID, notify.TemplateGenericAlert, map[string]any{
			"message": "your VIP subscription has expired",
		})
	}
	if len(expired) > 0 {
		s.logger.Info("subscriptions expired", "count", len(expired))
	}
	return len(expired), nil
}

// RunExpirySweeper polls for lapsed subscriptions until the context is
// cancelled.
func (s *Service) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.ExpireDue(ctx); err != nil {
				s.logger.Error("expiry sweep failed", "error", err)
			}
		}
	}
}
