package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (q pgQueries) CreatePack(ctx context.Context, p *domain.RewardPack) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO reward_packs (id, name) VALUES ($1, $2)`, p.ID, p.Name)
	if err != nil {
		return fmt.Errorf("insert pack: %w", err)
	}
	return nil
}

func (q pgQueries) PackByID(ctx context.Context, id uuid.UUID) (*domain.RewardPack, error) {
	return q.scanPack(q.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM reward_packs WHERE id = $1`, id))
}

func (q pgQueries) PackByName(ctx context.Context, name string) (*domain.RewardPack, error) {
	return q.scanPack(q.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM reward_packs WHERE name = $1`, name))
}

func (q pgQueries) scanPack(row pgx.Row) (*domain.RewardPack, error) {
	p := &domain.RewardPack{}
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan pack: %w", err)
	}
	return p, nil
}

func (q pgQueries) ListPacks(ctx context.Context) ([]domain.RewardPack, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, name, created_at FROM reward_packs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query packs: %w", err)
	}
	defer rows.Close()

	var packs []domain.RewardPack
	for rows.Next() {
		var p domain.RewardPack
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// DeletePack removes a pack; the reward_pack_items foreign key cascades so
// no orphan items remain.
func (q pgQueries) DeletePack(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM reward_packs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pack: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("pack", id.String())
	}
	return nil
}

func (q pgQueries) AddPackItem(ctx context.Context, item *domain.PackItem) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO reward_pack_items (id, pack_id, file_id, unique_id, media_type)
		VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.PackID, item.FileID, item.UniqueID, item.MediaType)
	if err != nil {
		return fmt.Errorf("insert pack item: %w", err)
	}
	return nil
}

func (q pgQueries) PackItems(ctx context.Context, packID uuid.UUID) ([]domain.PackItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, pack_id, file_id, unique_id, media_type, created_at
		FROM reward_pack_items WHERE pack_id = $1 ORDER BY created_at ASC`, packID)
	if err != nil {
		return nil, fmt.Errorf("query pack items: %w", err)
	}
	defer rows.Close()

	var items []domain.PackItem
	for rows.Next() {
		var it domain.PackItem
		if err := rows.Scan(&it.ID, &it.PackID, &it.FileID, &it.UniqueID,
			&it.MediaType, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pack item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
