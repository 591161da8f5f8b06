package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (q pgQueries) Ranks(ctx context.Context) ([]domain.Rank, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, min_points, reward_note, bonus_days, reward_pack_id, created_at
		FROM ranks ORDER BY min_points ASC`)
	if err != nil {
		return nil, fmt.Errorf("query ranks: %w", err)
	}
	defer rows.Close()

	var ranks []domain.Rank
	for rows.Next() {
		var r domain.Rank
		if err := rows.Scan(&r.ID, &r.Name, &r.MinPoints, &r.RewardNote,
			&r.BonusDays, &r.RewardPackID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rank: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

func (q pgQueries) RankByID(ctx context.Context, id uuid.UUID) (*domain.Rank, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, name, min_points, reward_note, bonus_days, reward_pack_id, created_at
		FROM ranks WHERE id = $1`, id)

	r := &domain.Rank{}
	err := row.Scan(&r.ID, &r.Name, &r.MinPoints, &r.RewardNote,
		&r.BonusDays, &r.RewardPackID, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan rank: %w", err)
	}
	return r, nil
}

func (q pgQueries) CreateRank(ctx context.Context, r *domain.Rank) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO ranks (id, name, min_points, reward_note, bonus_days, reward_pack_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.Name, r.MinPoints, r.RewardNote, r.BonusDays, r.RewardPackID)
	if err != nil {
		return fmt.Errorf("insert rank: %w", err)
	}
	return nil
}

// UpdateRankRewards patches only the reward fields that are provided.
func (q pgQueries) UpdateRankRewards(ctx context.Context, id uuid.UUID, bonusDays *int, packID *uuid.UUID) (*domain.Rank, error) {
	if bonusDays != nil {
		if _, err := q.db.Exec(ctx, `UPDATE ranks SET bonus_days = $2 WHERE id = $1`, id, *bonusDays); err != nil {
			return nil, fmt.Errorf("update rank bonus days: %w", err)
		}
	}
	if packID != nil {
		if _, err := q.db.Exec(ctx, `UPDATE ranks SET reward_pack_id = $2 WHERE id = $1`, id, packID); err != nil {
			return nil, fmt.Errorf("update rank pack: %w", err)
		}
	}
	return q.RankByID(ctx, id)
}

func (q pgQueries) DeleteRank(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM ranks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("rank", id.String())
	}
	return nil
}
