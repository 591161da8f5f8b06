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

func (q pgQueries) CreateToken(ctx context.Context, t *domain.InviteToken) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO invite_tokens (id, token, generated_by, duration_hours, used)
		VALUES ($1, $2, $3, $4, false)`,
		t.ID, t.Token, t.GeneratedBy, t.DurationHours)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (q pgQueries) TokenByValue(ctx context.Context, token string) (*domain.InviteToken, error) {
	query := `
		SELECT id, token, generated_by, duration_hours, used, used_by, used_at, created_at
		FROM invite_tokens WHERE token = $1`
	if q.inTx {
		query += " FOR UPDATE"
	}

	t := &domain.InviteToken{}
	err := q.db.QueryRow(ctx, query, token).Scan(&t.ID, &t.Token, &t.GeneratedBy,
		&t.DurationHours, &t.Used, &t.UsedBy, &t.UsedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return t, nil
}

func (q pgQueries) ListTokens(ctx context.Context, limit int) ([]domain.InviteToken, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, token, generated_by, duration_hours, used, used_by, used_at, created_at
		FROM invite_tokens ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.InviteToken
	for rows.Next() {
		var t domain.InviteToken
		if err := rows.Scan(&t.ID, &t.Token, &t.GeneratedBy, &t.DurationHours,
			&t.Used, &t.UsedBy, &t.UsedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (q pgQueries) MarkTokenUsed(ctx context.Context, id uuid.UUID, usedBy int64, at time.Time) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE invite_tokens SET used = true, used_by = $2, used_at = $3
		WHERE id = $1 AND used = false`, id, usedBy, at)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenInvalid("token already used")
	}
	return nil
}

// SubscriptionByUser returns the user's most recent subscription, if any.
func (q pgQueries) SubscriptionByUser(ctx context.Context, userID int64) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, joined_at, expires_at, status, token_id
		FROM vip_subscriptions WHERE user_id = $1
		ORDER BY expires_at DESC LIMIT 1`
	if q.inTx {
		query += " FOR UPDATE"
	}

	s := &domain.Subscription{}
	err := q.db.QueryRow(ctx, query, userID).Scan(&s.ID, &s.UserID,
		&s.JoinedAt, &s.ExpiresAt, &s.Status, &s.TokenID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return s, nil
}

func (q pgQueries) CreateSubscription(ctx context.Context, s *domain.Subscription) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO vip_subscriptions (id, user_id, joined_at, expires_at, status, token_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.JoinedAt, s.ExpiresAt, s.Status, s.TokenID)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (q pgQueries) UpdateSubscription(ctx context.Context, s *domain.Subscription) error {
	_, err := q.db.Exec(ctx, `
		UPDATE vip_subscriptions SET expires_at = $2, status = $3 WHERE id = $1`,
		s.ID, s.ExpiresAt, s.Status)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

// ExpireSubscriptionsDue flips overdue active subscriptions to expired and
// returns the affected rows for event emission.
func (q pgQueries) ExpireSubscriptionsDue(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	rows, err := q.db.Query(ctx, `
		UPDATE vip_subscriptions SET status = 'expired'
		WHERE status = 'active' AND expires_at <= $1
		RETURNING id, user_id, joined_at, expires_at, status, token_id`, now)
	if err != nil {
		return nil, fmt.Errorf("expire subscriptions: %w", err)
	}
	defer rows.Close()

	var expired []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.JoinedAt, &s.ExpiresAt, &s.Status, &s.TokenID); err != nil {
			return nil, fmt.Errorf("scan expired subscription: %w", err)
		}
		expired = append(expired, s)
	}
	return expired, rows.Err()
}

func (q pgQueries) CountActiveSubscriptions(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM vip_subscriptions WHERE status = 'active' AND expires_at > $1`, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active subscriptions: %w", err)
	}
	return n, nil
}
