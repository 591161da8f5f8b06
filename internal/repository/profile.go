package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Profile returns a gamification profile, or nil if none exists. Inside a
// transaction the row is locked for update.
func (q pgQueries) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `
		SELECT user_id, points, current_rank_id, last_activity_at, last_daily_claim,
		       referred_by, referral_count, created_at
		FROM gamification_profiles WHERE user_id = $1`
	if q.inTx {
		query += " FOR UPDATE"
	}

	row := q.db.QueryRow(ctx, query, userID)

	p := &domain.Profile{}
	err := row.Scan(&p.UserID, &p.Points, &p.CurrentRankID, &p.LastActivityAt,
		&p.LastDailyClaim, &p.ReferredBy, &p.ReferralCount, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

func (q pgQueries) CreateProfile(ctx context.Context, p *domain.Profile) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO gamification_profiles
			(user_id, points, current_rank_id, last_activity_at, last_daily_claim,
			 referred_by, referral_count)
		VALUES ($1, $2, $3, now(), $4, $5, $6)`,
		p.UserID, p.Points, p.CurrentRankID, p.LastDailyClaim, p.ReferredBy, p.ReferralCount)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (q pgQueries) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	_, err := q.db.Exec(ctx, `
		UPDATE gamification_profiles SET
			points = $2, current_rank_id = $3, last_activity_at = now(),
			last_daily_claim = $4, referral_count = $5
		WHERE user_id = $1`,
		p.UserID, p.Points, p.CurrentRankID, p.LastDailyClaim, p.ReferralCount)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (q pgQueries) CountProfiles(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM gamification_profiles`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func (q pgQueries) TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	rows, err := q.db.Query(ctx, `
		SELECT user_id, points, current_rank_id, last_activity_at, last_daily_claim,
		       referred_by, referral_count, created_at
		FROM gamification_profiles
		ORDER BY points DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.UserID, &p.Points, &p.CurrentRankID, &p.LastActivityAt,
			&p.LastDailyClaim, &p.ReferredBy, &p.ReferralCount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
