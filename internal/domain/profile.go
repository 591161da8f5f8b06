package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a user's gamification state. The identity key is the external
// chat user id, not a generated UUID, because profiles are created lazily
// the first time an engagement event arrives for a user.
type Profile struct {
	UserID         int64      `json:"user_id"`
	Points         int        `json:"points"`
	CurrentRankID  *uuid.UUID `json:"current_rank_id,omitempty"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	LastDailyClaim *time.Time `json:"last_daily_claim,omitempty"`
	ReferredBy     *int64     `json:"referred_by,omitempty"`
	ReferralCount  int        `json:"referral_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Rank is an ordered tier unlocked by a point threshold. BonusDays and
// RewardPackID configure the rewards delivered when the rank is reached.
type Rank struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	MinPoints    int        `json:"min_points"`
	RewardNote   string     `json:"reward_note,omitempty"`
	BonusDays    int        `json:"bonus_days"`
	RewardPackID *uuid.UUID `json:"reward_pack_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HasRewards reports whether reaching this rank delivers anything.
func (r *Rank) HasRewards() bool {
	return r.BonusDays > 0 || r.RewardPackID != nil
}

// RankForPoints returns the highest rank whose threshold is covered by the
// given balance, or nil when the balance is below every threshold.
// Ranks must be sorted ascending by MinPoints.
func RankForPoints(ranks []Rank, points int) *Rank {
	var best *Rank
	for i := range ranks {
		if ranks[i].MinPoints <= points {
			best = &ranks[i]
		}
	}
	return best
}

// StartingRank returns the rank with a zero threshold, if one exists.
// New profiles begin there.
func StartingRank(ranks []Rank) *Rank {
	for i := range ranks {
		if ranks[i].MinPoints == 0 {
			return &ranks[i]
		}
	}
	return nil
}
