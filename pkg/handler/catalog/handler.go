// Package catalog reacts to catalog load events.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
)

var errUnexpectedEvent = errors.New("unexpected event type")

// HandleLoaded logs successful catalog loads.
func HandleLoaded(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		cl, ok := e.(*events.CatalogLoaded)
		if !ok {
			return fmt.Errorf("%w: %T", errUnexpectedEvent, e)
		}
		logger.Info("catalog loaded", "handler", "catalog.HandleLoaded", "assets", cl.Count)
		return nil
	}
}

// HandleFailed logs failed catalog loads.
func HandleFailed(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		cf, ok := e.(*events.CatalogFailed)
		if !ok {
			return fmt.Errorf("%w: %T", errUnexpectedEvent, e)
		}
		logger.Error("catalog load failed", "handler", "catalog.HandleFailed", "kind", cf.Kind, "reason", cf.Reason)
		return nil
	}
}
