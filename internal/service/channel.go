package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
)

// ChannelService handles free-channel access requests. Requests sit in a
// queue until the configured wait time passes, then the worker approves
// them and notifies the user.
type ChannelService struct {
	store    repository.Store
	config   *ConfigService
	notifier *notify.Service
	logger   *slog.Logger
}

// NewChannelService creates a ChannelService.
func NewChannelService(store repository.Store, config *ConfigService, notifier *notify.Service, logger *slog.Logger) *ChannelService {
	return &ChannelService{store: store, config: config, notifier: notifier, logger: logger}
}

// RequestAccess queues a free-channel join request for the user. A user
// with a pending request is not queued twice.
func (s *ChannelService) RequestAccess(ctx context.Context, userID int64) (*domain.FreeChannelRequest, error) {
	req := &domain.FreeChannelRequest{
		ID:          uuid.New(),
		UserID:      userID,
		RequestedAt: time.Now(),
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		pending, err := q.PendingFreeRequests(ctx)
		if err != nil {
			return err
		}
		for _, p := range pending {
			if p.UserID == userID {
				return domain.ErrConflict("request already pending")
			}
		}
		return q.CreateFreeRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("free channel request queued", "user_id", userID)
	return req, nil
}

// ProcessDue approves every pending request older than the configured wait
// time. Returns the number processed.
func (s *ChannelService) ProcessDue(ctx context.Context) (int, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-time.Duration(cfg.WaitTimeMinutes) * time.Minute)

	pending, err := s.store.PendingFreeRequests(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, req := range pending {
		if req.RequestedAt.After(cutoff) {
			continue
		}
		if err := s.store.MarkRequestProcessed(ctx, req.ID, time.Now()); err != nil {
			s.logger.Error("free request approval failed", "request_id", req.ID, "error", err)
			continue
		}
		_ = s.notifier.Send(ctx, req.UserID, notify.TemplateGenericAlert, map[string]any{
			"message": "your free channel access is ready",
		})
		processed++
	}
	return processed, nil
}

// RunRequestWorker polls for due requests until the context is cancelled.
func (s *ChannelService) RunRequestWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("free request worker started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("free request worker stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessDue(ctx); err != nil {
				s.logger.Error("free request sweep failed", "error", err)
			}
		}
	}
}
