// Package service holds the back-office application services that sit
// between the HTTP surface and the store: catalog management, bot
// configuration, stats, broadcasts and free-channel requests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/repository"
)

// CatalogService manages the rank ladder and reward packs.
type CatalogService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(store repository.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// CreateRank adds a rank to the ladder. Thresholds must be unique; the
// check and the insert run in one transaction so two admins cannot race
// the same threshold in.
func (s *CatalogService) CreateRank(ctx context.Context, name string, minPoints int, rewardNote string, bonusDays int, packID *uuid.UUID) (*domain.Rank, error) {
	if name == "" {
		return nil, domain.ErrValidation("rank name is required")
	}
	if bonusDays < 0 {
		return nil, domain.ErrValidation("bonus days must be non-negative")
	}

	rank := &domain.Rank{
		ID:           uuid.New(),
		Name:         name,
		MinPoints:    minPoints,
		RewardNote:   rewardNote,
		BonusDays:    bonusDays,
		RewardPackID: packID,
		CreatedAt:    time.Now(),
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		existing, err := q.Ranks(ctx)
		if err != nil {
			return err
		}
		if err := domain.ValidateRankThresholds(existing, minPoints); err != nil {
			return err
		}
		if packID != nil {
			pack, err := q.PackByID(ctx, *packID)
			if err != nil {
				return err
			}
			if pack == nil {
				return domain.ErrNotFound("pack", packID.String())
			}
		}
		return q.CreateRank(ctx, rank)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rank created", "rank_id", rank.ID, "name", name, "min_points", minPoints)
	return rank, nil
}

// AttachRewards updates a rank's reward configuration.
func (s *CatalogService) AttachRewards(ctx context.Context, rankID uuid.UUID, bonusDays *int, packID *uuid.UUID) (*domain.Rank, error) {
	if bonusDays != nil && *bonusDays < 0 {
		return nil, domain.ErrValidation("bonus days must be non-negative")
	}

	var rank *domain.Rank
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		if packID != nil {
			pack, err := q.PackByID(ctx, *packID)
			if err != nil {
				return err
			}
			if pack == nil {
				return domain.ErrNotFound("pack", packID.String())
			}
		}
		var err error
		rank, err = q.UpdateRankRewards(ctx, rankID, bonusDays, packID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rank == nil {
		return nil, domain.ErrNotFound("rank", rankID.String())
	}
	return rank, nil
}

// Ranks lists the ladder, ascending by threshold.
func (s *CatalogService) Ranks(ctx context.Context) ([]domain.Rank, error) {
	return s.store.Ranks(ctx)
}

// DeleteRank removes a rank from the ladder.
func (s *CatalogService) DeleteRank(ctx context.Context, rankID uuid.UUID) error {
	return s.store.DeleteRank(ctx, rankID)
}

// CreatePack creates an empty reward pack. Names are unique.
func (s *CatalogService) CreatePack(ctx context.Context, name string) (*domain.RewardPack, error) {
	if name == "" {
		return nil, domain.ErrValidation("pack name is required")
	}

	pack := &domain.RewardPack{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		existing, err := q.PackByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrConflict(fmt.Sprintf("pack %q already exists", name))
		}
		return q.CreatePack(ctx, pack)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pack created", "pack_id", pack.ID, "name", name)
	return pack, nil
}

// PackByName resolves a pack by its unique name.
func (s *CatalogService) PackByName(ctx context.Context, name string) (*domain.RewardPack, error) {
	pack, err := s.store.PackByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if pack == nil {
		return nil, domain.ErrNotFound("pack", name)
	}
	return pack, nil
}

// AddPackItem appends a media item to a pack.
func (s *CatalogService) AddPackItem(ctx context.Context, packID uuid.UUID, fileID, uniqueID string, mediaType domain.MediaType) (*domain.PackItem, error) {
	if fileID == "" || uniqueID == "" {
		return nil, domain.ErrValidation("file id and unique id are required")
	}
	if err := domain.ValidateMediaType(mediaType); err != nil {
		return nil, err
	}

	item := &domain.PackItem{
		ID:        uuid.New(),
		PackID:    packID,
		FileID:    fileID,
		UniqueID:  uniqueID,
		MediaType: mediaType,
		CreatedAt: time.Now(),
	}
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		pack, err := q.PackByID(ctx, packID)
		if err != nil {
			return err
		}
		if pack == nil {
			return domain.ErrNotFound("pack", packID.String())
		}
		return q.AddPackItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Packs lists all reward packs.
func (s *CatalogService) Packs(ctx context.Context) ([]domain.RewardPack, error) {
	return s.store.ListPacks(ctx)
}

// PackItems lists the media inside a pack.
func (s *CatalogService) PackItems(ctx context.Context, packID uuid.UUID) ([]domain.PackItem, error) {
	return s.store.PackItems(ctx, packID)
}

// DeletePack removes a pack and all its items.
func (s *CatalogService) DeletePack(ctx context.Context, packID uuid.UUID) error {
	return s.store.InTx(ctx, func(q repository.Queries) error {
		ranks, err := q.Ranks(ctx)
		if err != nil {
			return err
		}
		for _, r := range ranks {
			if r.RewardPackID != nil && *r.RewardPackID == packID {
				return domain.ErrConflict(fmt.Sprintf("pack is attached to rank %q", r.Name))
			}
		}
		return q.DeletePack(ctx, packID)
	})
}
