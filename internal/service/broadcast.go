package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/clubhaus/backoffice/internal/bus"
	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/repository"
)

// BroadcastService accepts admin broadcast requests and hands them to the
// outbox; the relay fans them out to the channel workers.
type BroadcastService struct {
	store  repository.Store
	bus    *bus.Bus
	logger *slog.Logger
}

// NewBroadcastService creates a BroadcastService.
func NewBroadcastService(store repository.Store, b *bus.Bus, logger *slog.Logger) *BroadcastService {
	return &BroadcastService{store: store, bus: b, logger: logger}
}

// BroadcastRequest is an admin-submitted channel announcement.
type BroadcastRequest struct {
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
}

// Request enqueues a broadcast for the given channel.
func (s *BroadcastService) Request(ctx context.Context, req BroadcastRequest) error {
	if req.ChannelID == "" {
		return domain.ErrValidation("channel id is required")
	}
	if req.Message == "" {
		return domain.ErrValidation("message is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.ErrInternal("encode broadcast", err)
	}

	if err := s.store.InsertOutbox(ctx, domain.NewBroadcastDraft(req.ChannelID, payload)); err != nil {
		return err
	}

	s.bus.Publish(ctx, domain.EventBroadcastRequested, req)
	s.logger.Info("broadcast requested", "channel_id", req.ChannelID)
	return nil
}
