// Package eventstore records the history of rebuild generations as an
// append-only event log and projects it into summaries for status reporting.
package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves generation events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, generation uint64, eventType string, payload []byte, metadata map[string]string) error

	// GetByGeneration retrieves all events for one generation in append order.
	GetByGeneration(ctx context.Context, generation uint64) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
