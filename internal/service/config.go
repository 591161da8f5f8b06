package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/repository"
)

// ConfigService serves the single bot configuration row through an
// in-memory cache. The cache is explicit: every write invalidates it, and
// Invalidate exists for out-of-band changes.
type ConfigService struct {
	store  repository.Store
	logger *slog.Logger

	mu     sync.RWMutex
	cached *domain.BotConfig
}

// NewConfigService creates a ConfigService.
func NewConfigService(store repository.Store, logger *slog.Logger) *ConfigService {
	return &ConfigService{store: store, logger: logger}
}

// Get returns the configuration, loading it on a cache miss. A missing row
// yields defaults rather than an error so a fresh deployment works before
// the first admin save.
func (s *ConfigService) Get(ctx context.Context) (*domain.BotConfig, error) {
	s.mu.RLock()
	if s.cached != nil {
		cfg := *s.cached
		s.mu.RUnlock()
		return &cfg, nil
	}
	s.mu.RUnlock()

	cfg, err := s.store.Config(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = defaultConfig()
	}

	s.mu.Lock()
	s.cached = cfg
	s.mu.Unlock()

	out := *cfg
	return &out, nil
}

// Update persists the configuration and drops the cache.
func (s *ConfigService) Update(ctx context.Context, cfg *domain.BotConfig) error {
	if cfg.WaitTimeMinutes < 0 {
		return domain.ErrValidation("wait time must be non-negative")
	}
	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	s.logger.Info("bot config updated")
	return nil
}

// Invalidate drops the cached row; the next Get reloads from the store.
func (s *ConfigService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func defaultConfig() *domain.BotConfig {
	return &domain.BotConfig{
		ID:              1,
		WaitTimeMinutes: 10,
		VIPReactions:    []string{},
		FreeReactions:   []string{},
	}
}
