package repository

import (
	"context"
	"fmt"

	"github.com/clubhaus/backoffice/internal/domain"
)

func (q pgQueries) InsertOutbox(ctx context.Context, draft domain.OutboxDraft) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO event_outbox (event_id, aggregate_type, aggregate_id, event_type,
		                          partition_key, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		draft.EventID, draft.AggregateType, draft.AggregateID, draft.EventType,
		draft.PartitionKey, draft.Payload, draft.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (q pgQueries) FetchUnpublishedOutbox(ctx context.Context, limit int) ([]domain.OutboxDraft, error) {
	rows, err := q.db.Query(ctx, `
		SELECT seq_id, event_id, aggregate_type, aggregate_id, event_type,
		       partition_key, payload, occurred_at
		FROM event_outbox WHERE published_at IS NULL
		ORDER BY seq_id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var drafts []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		if err := rows.Scan(&d.SeqID, &d.EventID, &d.AggregateType, &d.AggregateID,
			&d.EventType, &d.PartitionKey, &d.Payload, &d.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (q pgQueries) MarkOutboxPublished(ctx context.Context, seqIDs []int64) error {
	if len(seqIDs) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx,
		`UPDATE event_outbox SET published_at = now() WHERE seq_id = ANY($1)`, seqIDs)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
