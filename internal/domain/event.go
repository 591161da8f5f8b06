package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types. The dotted form doubles as
// the in-process bus topic and the outbox event type.
type EventType string

const (
	EventReactionAdded       EventType = "club.engagement.reaction.added"
	EventRankIncreased       EventType = "club.gamification.rank.increased"
	EventReferralCompleted   EventType = "club.gamification.referral.completed"
	EventDailyClaimed        EventType = "club.gamification.daily.claimed"
	EventSubscriptionCreated EventType = "club.subscription.created"
	EventSubscriptionExpired EventType = "club.subscription.expired"
	EventBroadcastRequested  EventType = "club.broadcast.requested"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateProfile      AggregateType = "profile"
	AggregateSubscription AggregateType = "subscription"
	AggregateChannel      AggregateType = "channel"
)

// OutboxDraft is the payload written to the event_outbox table, in the same
// transaction as the state change it announces.
type OutboxDraft struct {
	SeqID         int64           `json:"seq_id,omitempty"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ReactionEvent is the inbound engagement payload: a user reacted in a
// channel. Tag carries the emoji or reaction identifier used for dedup.
type ReactionEvent struct {
	UserID    int64  `json:"user_id"`
	ChannelID int64  `json:"channel_id"`
	Tag       string `json:"tag"`
}

// RankIncreasedEvent announces a rank transition.
type RankIncreasedEvent struct {
	UserID    int64      `json:"user_id"`
	OldRankID *uuid.UUID `json:"old_rank_id"`
	NewRankID uuid.UUID  `json:"new_rank_id"`
	Points    int        `json:"points"`
}

// ReferralCompletedEvent announces a processed referral.
type ReferralCompletedEvent struct {
	ReferrerID int64 `json:"referrer_id"`
	RefereeID  int64 `json:"referee_id"`
}

// SubscriptionEvent announces a subscription lifecycle change.
type SubscriptionEvent struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
