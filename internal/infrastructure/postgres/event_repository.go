package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/gridcast-io/gridcast/internal/domain"
)

// EventRepository implements domain.EventRepository using Postgres.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// SaveBatch persists a batch of events in a single round trip.
// events whose id is already stored are ignored, so re-uploading an
// overlapping export is safe. returns the number of rows written.
func (r *EventRepository) SaveBatch(ctx context.Context, events []domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO gridcast.events (id, text, occurred_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(query, event.ID, event.Text, event.Timestamp)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	stored := 0
	for range events {
		tag, err := results.Exec()
		if err != nil {
			return stored, err
		}
		stored += int(tag.RowsAffected())
	}

	return stored, nil
}

// ListBetween retrieves events with timestamps in [from, to], ordered by
// timestamp ascending.
func (r *EventRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	const query = `
		SELECT id, text, occurred_at
		FROM gridcast.events
		WHERE occurred_at >= $1 AND occurred_at <= $2
		ORDER BY occurred_at ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// ListAll retrieves the full dataset, ordered by timestamp ascending.
func (r *EventRepository) ListAll(ctx context.Context) ([]domain.Event, error) {
	const query = `
		SELECT id, text, occurred_at
		FROM gridcast.events
		ORDER BY occurred_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// Count returns the number of stored events.
func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM gridcast.events`

	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// scanEvents scans rows into an event slice.
func (r *EventRepository) scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var events []domain.Event

	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(&event.ID, &event.Text, &event.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
