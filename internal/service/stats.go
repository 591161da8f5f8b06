package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/repository"
)

// StatsService aggregates back-office metrics for the admin dashboard.
type StatsService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(store repository.Store, logger *slog.Logger) *StatsService {
	return &StatsService{store: store, logger: logger}
}

// Overview is the admin dashboard snapshot.
type Overview struct {
	TotalProfiles       int              `json:"total_profiles"`
	ActiveSubscriptions int              `json:"active_subscriptions"`
	Leaderboard         []domain.Profile `json:"leaderboard"`
}

// Overview returns profile and subscription totals plus the points
// leaderboard.
func (s *StatsService) Overview(ctx context.Context, leaderboardSize int) (*Overview, error) {
	if leaderboardSize <= 0 {
		leaderboardSize = 10
	}

	total, err := s.store.CountProfiles(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.store.CountActiveSubscriptions(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	top, err := s.store.TopProfiles(ctx, leaderboardSize)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalProfiles:       total,
		ActiveSubscriptions: active,
		Leaderboard:         top,
	}, nil
}
