package eventstore

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/hotbundle/internal/logfields"
)

// History appends generation events to a store and keeps a projection of
// them current. Store failures are logged; they never affect a build.
type History struct {
	store      Store
	projection *HistoryProjection
	logger     *slog.Logger
}

// NewHistory wraps store. The projection is rebuilt from existing events.
func NewHistory(ctx context.Context, store Store, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	h := &History{store: store, projection: NewHistoryProjection(store, 100), logger: logger}
	if err := h.projection.Rebuild(ctx); err != nil {
		logger.Warn("Failed to load generation history", logfields.Error(err))
	}
	return h
}

// Projection exposes the read model.
func (h *History) Projection() *HistoryProjection { return h.projection }

// Record appends ev and applies it to the projection.
func (h *History) Record(ctx context.Context, ev *BaseEvent, err error) {
	if err != nil {
		h.logger.Warn("Failed to build history event", logfields.Error(err))
		return
	}
	if err := h.store.Append(ctx, ev.EventGeneration, ev.EventType, ev.EventPayload, ev.EventMetadata); err != nil {
		h.logger.Warn("Failed to append history event",
			logfields.Generation(ev.EventGeneration), logfields.Error(err))
	}
	h.projection.Apply(ev)
}

// Close closes the underlying store.
func (h *History) Close() error { return h.store.Close() }
