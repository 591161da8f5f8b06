package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus enumerates the lifecycle states of a VIP subscription.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Subscription is a user's VIP membership window.
type Subscription struct {
	ID        uuid.UUID          `json:"id"`
	UserID    int64              `json:"user_id"`
	JoinedAt  time.Time          `json:"joined_at"`
	ExpiresAt time.Time          `json:"expires_at"`
	Status    SubscriptionStatus `json:"status"`
	TokenID   *uuid.UUID         `json:"token_id,omitempty"`
}

// Active reports whether the subscription is live at the given instant.
func (s *Subscription) Active(now time.Time) bool {
	return s.Status == SubscriptionActive && s.ExpiresAt.After(now)
}

// InviteToken is a single-use VIP invitation issued by an admin.
type InviteToken struct {
	ID            uuid.UUID  `json:"id"`
	Token         string     `json:"token"`
	GeneratedBy   int64      `json:"generated_by"`
	DurationHours int        `json:"duration_hours"`
	Used          bool       `json:"used"`
	UsedBy        *int64     `json:"used_by,omitempty"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FreeChannelRequest tracks a user's pending request to join the free channel.
type FreeChannelRequest struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int64      `json:"user_id"`
	RequestedAt time.Time  `json:"requested_at"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// BotConfig is the single back-office configuration row.
type BotConfig struct {
	ID               int            `json:"id"`
	VIPChannelID     string         `json:"vip_channel_id,omitempty"`
	FreeChannelID    string         `json:"free_channel_id,omitempty"`
	WaitTimeMinutes  int            `json:"wait_time_minutes"`
	VIPReactions     []string       `json:"vip_reactions"`
	FreeReactions    []string       `json:"free_reactions"`
	SubscriptionFees map[string]int `json:"subscription_fees"`
}
