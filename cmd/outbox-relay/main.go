package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/infra"
	"github.com/clubhaus/backoffice/internal/provider"
	"github.com/clubhaus/backoffice/internal/repository"
	"github.com/clubhaus/backoffice/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox relay failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-relay connected to postgres")

	pollInterval, err := time.ParseDuration(cfg.OutboxPollInterval)
	if err != nil {
		return fmt.Errorf("parse outbox poll interval: %w", err)
	}

	store := repository.NewPgStore(pool)
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	poller := infra.NewOutboxPoller(store, producer, logger, pollInterval)
	poller.Start(ctx)
	logger.Info("outbox-relay starting", "poll_interval", pollInterval)

	// Broadcast fan-out: announcements pass through the outbox like every
	// other event, then come back here for delivery to the channel.
	if cfg.KafkaEnabled {
		consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, string(domain.EventBroadcastRequested), "outbox-relay", cfg.KafkaEnabled, logger)
		defer consumer.Close()
		gateway := provider.NewGatewayClient(cfg.GatewayBaseURL, cfg.GatewayAPIToken, logger)
		go consumeBroadcasts(ctx, consumer, gateway, logger)
	}

	<-ctx.Done()
	logger.Info("outbox-relay shutting down")
	return nil
}

func consumeBroadcasts(ctx context.Context, consumer *infra.KafkaConsumer, gateway *provider.GatewayClient, logger *slog.Logger) {
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("read broadcast", "error", err)
			continue
		}

		var envelope domain.OutboxDraft
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("decode broadcast envelope", "error", err)
			continue
		}
		var req service.BroadcastRequest
		if err := json.Unmarshal(envelope.Payload, &req); err != nil {
			logger.Error("decode broadcast payload", "error", err)
			continue
		}

		if err := gateway.SendChannelText(ctx, req.ChannelID, req.Message); err != nil {
			logger.Error("deliver broadcast", "channel_id", req.ChannelID, "error", err)
			continue
		}
		logger.Info("broadcast delivered", "channel_id", req.ChannelID)
	}
}
