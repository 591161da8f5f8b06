package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
)

const referralPrefix = "ref_"

// ReferralLink builds the deep link a user shares to refer others.
func ReferralLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", botUsername, referralPrefix, userID)
}

// ParseReferralPayload extracts the referrer id from a start payload.
func ParseReferralPayload(payload string) (int64, error) {
	raw, ok := strings.CutPrefix(payload, referralPrefix)
	if !ok {
		return 0, domain.ErrValidation("payload is not a referral link")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrValidation("malformed referral payload")
	}
	return id, nil
}

// ProcessReferral credits a completed referral: the referee's profile is
// created with the welcome bonus, the referrer earns the referral bonus
// and a counter bump. All of it commits atomically or not at all.
//
// Rejected when the referee refers themselves, already has a profile, or
// the referrer is unknown.
func (e *Engine) ProcessReferral(ctx context.Context, refereeID, referrerID int64) error {
	if refereeID == referrerID {
		return domain.ErrReferralRejected("self-referral is not allowed")
	}

	unlock := e.locks.lockPair(refereeID, referrerID)
	defer unlock()

	now := time.Now()
	var refereeOut, referrerOut *awardOutcome

	err := e.store.InTx(ctx, func(q repository.Queries) error {
		existing, err := q.Profile(ctx, refereeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrReferralRejected("profile already initialized")
		}

		referrer, err := q.Profile(ctx, referrerID)
		if err != nil {
			return err
		}
		if referrer == nil {
			return domain.ErrReferralRejected("unknown referrer")
		}

		ranks, err := q.Ranks(ctx)
		if err != nil {
			return err
		}
		referee := newProfile(refereeID, ranks, now)
		referee.ReferredBy = &referrerID
		if err := q.CreateProfile(ctx, referee); err != nil {
			return err
		}
		refereeOut, err = applyAward(ctx, q, refereeID, RefereeBonus, now, nil)
		if err != nil {
			return err
		}

		referrer.ReferralCount++
		if err := q.UpdateProfile(ctx, referrer); err != nil {
			return err
		}
		referrerOut, err = applyAward(ctx, q, referrerID, ReferrerBonus, now, nil)
		if err != nil {
			return err
		}

		return q.InsertOutbox(ctx, domain.NewReferralCompletedDraft(domain.ReferralCompletedEvent{
			ReferrerID: referrerID,
			RefereeID:  refereeID,
		}))
	})
	if err != nil {
		return err
	}

	e.bus.Publish(ctx, domain.EventReferralCompleted, domain.ReferralCompletedEvent{
		ReferrerID: referrerID,
		RefereeID:  refereeID,
	})
	_ = e.notifier.Send(ctx, referrerID, notify.TemplateReferralCredit, map[string]any{"points": ReferrerBonus})
	_ = e.notifier.Send(ctx, refereeID, notify.TemplateReferralBonus, map[string]any{"points": RefereeBonus})
	e.afterAward(ctx, refereeOut)
	e.afterAward(ctx, referrerOut)

	return nil
}
