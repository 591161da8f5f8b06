package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewRankIncreasedDraft creates the outbox event for a rank transition.
func NewRankIncreasedDraft(evt RankIncreasedEvent) OutboxDraft {
	payload, _ := json.Marshal(evt)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateProfile,
		AggregateID:   strconv.FormatInt(evt.UserID, 10),
		EventType:     EventRankIncreased,
		PartitionKey:  strconv.FormatInt(evt.UserID, 10),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewReferralCompletedDraft creates the outbox event for a processed referral.
func NewReferralCompletedDraft(evt ReferralCompletedEvent) OutboxDraft {
	payload, _ := json.Marshal(evt)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateProfile,
		AggregateID:   strconv.FormatInt(evt.RefereeID, 10),
		EventType:     EventReferralCompleted,
		PartitionKey:  strconv.FormatInt(evt.RefereeID, 10),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSubscriptionDraft creates a subscription lifecycle outbox event.
func NewSubscriptionDraft(eventType EventType, evt SubscriptionEvent) OutboxDraft {
	payload, _ := json.Marshal(evt)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSubscription,
		AggregateID:   strconv.FormatInt(evt.UserID, 10),
		EventType:     eventType,
		PartitionKey:  strconv.FormatInt(evt.UserID, 10),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBroadcastDraft creates the outbox event for a requested channel broadcast.
func NewBroadcastDraft(channelID string, payload json.RawMessage) OutboxDraft {
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateChannel,
		AggregateID:   channelID,
		EventType:     EventBroadcastRequested,
		PartitionKey:  channelID,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
