package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tasksphere/internal/domain/outbox"
)

type outboxRepository struct {
	db DBTX
}

func NewOutboxRepository(db DBTX) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Append(ctx context.Context, tx DBTX, eventType, channel, payload string) (string, error) {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	if payload == "" {
		payload = "{}"
	}
	eventID := uuid.New().String()
	_, err := execDB.Exec(ctx, `
        INSERT INTO outbox_events (event_id, type, channel, payload, published)
        VALUES ($1, $2, $3, $4, false)
    `, eventID, eventType, channel, payload)
	if err != nil {
		return "", err
	}
	return eventID, nil
}

func (r *outboxRepository) ScanUnpublished(ctx context.Context, limit int) ([]outbox.Event, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, event_id, type, channel, payload, published, created_at
        FROM outbox_events
        WHERE published = false
        ORDER BY created_at ASC, id ASC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.Type,
			&e.Channel,
			&e.Payload,
			&e.Published,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
        UPDATE outbox_events
        SET published = true
        WHERE event_id = ANY($1) AND published = false
    `, eventIDs)
	return err
}

func (r *outboxRepository) Depth(ctx context.Context) (int64, error) {
	var depth int64
	err := r.db.QueryRow(ctx, `
        SELECT count(*) FROM outbox_events WHERE published = false
    `).Scan(&depth)
	return depth, err
}

func (r *outboxRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM outbox_events
        WHERE published = true AND created_at < $1
    `, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
