package domain

import (
	"context"
	"time"
)

// EventRepository persists and retrieves post events.
// the core only needs a time-ranged read; everything else is storage
// housekeeping.
type EventRepository interface {
	// SaveBatch persists a batch of events, ignoring ids already stored.
	SaveBatch(ctx context.Context, events []Event) (int, error)

	// ListBetween retrieves events with timestamps in [from, to], ordered
	// by timestamp ascending.
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)

	// ListAll retrieves the full dataset, ordered by timestamp ascending.
	ListAll(ctx context.Context) ([]Event, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int64, error)
}
