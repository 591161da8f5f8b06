//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"
)

// CleanAll truncates all tables in dependency-safe order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"admin_login_attempts",
		"admin_users",
		"event_outbox",
		"free_channel_requests",
		"vip_subscriptions",
		"invite_tokens",
		"gamification_profiles",
		"ranks",
		"reward_pack_items",
		"reward_packs",
		"bot_config",
	}

	for _, table := range tables {
		if _, err := env.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			env.t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
