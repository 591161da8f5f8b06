package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/clubhaus/backoffice/internal/repository"
)

// OutboxPoller relays committed outbox events to Kafka. The event type is
// the topic, the partition key is the per-profile ordering key.
type OutboxPoller struct {
	store     repository.Store
	producer  *KafkaProducer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(store repository.Store, producer *KafkaProducer, logger *slog.Logger, interval time.Duration) *OutboxPoller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &OutboxPoller{
		store:     store,
		producer:  producer,
		logger:    logger,
		interval:  interval,
		batchSize: 100,
	}
}

// Start begins polling in a goroutine. Stops when ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("outbox poller stopped")
				return
			case <-ticker.C:
				if err := p.Poll(ctx); err != nil {
					p.logger.Error("outbox poll error", "error", err)
				}
			}
		}
	}()
}

// Poll publishes one batch of unpublished events. Events that fail to
// publish stay unpublished and are retried on the next tick.
func (p *OutboxPoller) Poll(ctx context.Context) error {
	drafts, err := p.store.FetchUnpublishedOutbox(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		return nil
	}

	published := make([]int64, 0, len(drafts))
	for _, d := range drafts {
		msg, _ := json.Marshal(map[string]interface{}{
			"event_id":       d.EventID,
			"aggregate_type": d.AggregateType,
			"aggregate_id":   d.AggregateID,
			"event_type":     d.EventType,
			"payload":        d.Payload,
			"occurred_at":    d.OccurredAt,
		})

		if err := p.producer.Publish(ctx, string(d.EventType), []byte(d.PartitionKey), msg); err != nil {
			p.logger.Error("kafka publish failed", "event_id", d.EventID, "error", err)
			continue
		}
		published = append(published, d.SeqID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := p.store.MarkOutboxPublished(ctx, published); err != nil {
		return err
	}

	p.logger.Debug("outbox poll complete", "published", len(published))
	return nil
}
