package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Config returns the single bot_config row, or nil if none exists yet.
func (q pgQueries) Config(ctx context.Context) (*domain.BotConfig, error) {
	c := &domain.BotConfig{}
	err := q.db.QueryRow(ctx, `
		SELECT id, vip_channel_id, free_channel_id, wait_time_minutes,
		       vip_reactions, free_reactions, subscription_fees
		FROM bot_config LIMIT 1`).Scan(&c.ID, &c.VIPChannelID, &c.FreeChannelID,
		&c.WaitTimeMinutes, &c.VIPReactions, &c.FreeReactions, &c.SubscriptionFees)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	return c, nil
}

func (q pgQueries) SaveConfig(ctx context.Context, c *domain.BotConfig) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO bot_config (id, vip_channel_id, free_channel_id, wait_time_minutes,
		                        vip_reactions, free_reactions, subscription_fees)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			vip_channel_id = EXCLUDED.vip_channel_id,
			free_channel_id = EXCLUDED.free_channel_id,
			wait_time_minutes = EXCLUDED.wait_time_minutes,
			vip_reactions = EXCLUDED.vip_reactions,
			free_reactions = EXCLUDED.free_reactions,
			subscription_fees = EXCLUDED.subscription_fees`,
		c.VIPChannelID, c.FreeChannelID, c.WaitTimeMinutes,
		c.VIPReactions, c.FreeReactions, c.SubscriptionFees)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (q pgQueries) CreateFreeRequest(ctx context.Context, r *domain.FreeChannelRequest) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO free_channel_requests (id, user_id, requested_at, processed)
		VALUES ($1, $2, $3, false)`, r.ID, r.UserID, r.RequestedAt)
	if err != nil {
		return fmt.Errorf("insert free request: %w", err)
	}
	return nil
}

func (q pgQueries) PendingFreeRequests(ctx context.Context) ([]domain.FreeChannelRequest, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, requested_at, processed, processed_at
		FROM free_channel_requests WHERE processed = false
		ORDER BY requested_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query free requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.FreeChannelRequest
	for rows.Next() {
		var r domain.FreeChannelRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.RequestedAt, &r.Processed, &r.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan free request: %w", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

func (q pgQueries) MarkRequestProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE free_channel_requests SET processed = true, processed_at = $2
		WHERE id = $1 AND processed = false`, id, at)
	if err != nil {
		return fmt.Errorf("mark request processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("free channel request", id.String())
	}
	return nil
}
