// Package common holds middleware shared by event handlers.
package common

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor derives the idempotency key of an event. An empty key disables
// the check for that event.
type KeyExtractor func(events.Event) string

// EventIDKey keys events by their event id. Durable buses redeliver the same
// id after a crash, so this is the default key for stream consumers.
func EventIDKey(e events.Event) string {
	if identified, ok := e.(interface{ ID() string }); ok {
		return identified.ID()
	}
	return ""
}

// IdempotencyTracker remembers keys whose handler already succeeded.
type IdempotencyTracker struct {
	processed sync.Map
	inflight  singleflight.Group
}

// NewIdempotencyTracker creates an empty tracker.
func NewIdempotencyTracker() *IdempotencyTracker {
	return &IdempotencyTracker{}
}

// Store marks key as processed.
func (t *IdempotencyTracker) Store(key string) {
	t.processed.Store(key, struct{}{})
}

// Delete forgets key.
func (t *IdempotencyTracker) Delete(key string) {
	t.processed.Delete(key)
}

// Seen reports whether key was processed.
func (t *IdempotencyTracker) Seen(key string) bool {
	_, ok := t.processed.Load(key)
	return ok
}

// WithIdempotency runs handler at most once per key. Concurrent deliveries of
// the same key share one execution; a failed execution leaves the key
// unprocessed so a redelivery retries it.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e events.Event) error {
		key := keyExtractor(e)
		if key == "" {
			return handler(ctx, e)
		}

		log := logger.With(
			"handler", handlerName,
			"event_type", e.Type(),
			"idempotency_key", key,
		)

		if tracker.Seen(key) {
			log.Debug("duplicate event skipped")
			return nil
		}

		_, err, _ := tracker.inflight.Do(key, func() (any, error) {
			if tracker.Seen(key) {
				return nil, nil
			}
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			tracker.Store(key)
			return nil, nil
		})
		if err != nil {
			log.Warn("handler failed, key left open for retry", "error", err)
			return err
		}
		return nil
	}
}
