package app

import (
	"github.com/amirasaad/tokenswap/pkg/domain/events"
	handlercatalog "github.com/amirasaad/tokenswap/pkg/handler/catalog"
	handlercommon "github.com/amirasaad/tokenswap/pkg/handler/common"
	handlerconversion "github.com/amirasaad/tokenswap/pkg/handler/conversion"
)

// setupEventBus registers the application's event handlers.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	logger := a.Deps.Logger

	bus.Register(
		events.EventTypeCatalogLoaded.String(),
		handlercatalog.HandleLoaded(logger),
	)
	bus.Register(
		events.EventTypeCatalogFailed.String(),
		handlercatalog.HandleFailed(logger),
	)

	bus.Register(
		events.EventTypeConversionSubmitted.String(),
		handlerconversion.HandleSubmitted(logger),
	)

	// Durable buses redeliver unacknowledged messages, so the activity
	// feed handlers are keyed by event id.
	settledTracker := handlercommon.NewIdempotencyTracker()
	failedTracker := handlercommon.NewIdempotencyTracker()
	bus.Register(
		events.EventTypeConversionSettled.String(),
		handlercommon.WithIdempotency(
			handlerconversion.HandleSettled(a.Activity, logger),
			settledTracker,
			handlercommon.EventIDKey,
			"HandleSettled",
			logger,
		),
	)
	bus.Register(
		events.EventTypeConversionFailed.String(),
		handlercommon.WithIdempotency(
			handlerconversion.HandleFailed(a.Activity, logger),
			failedTracker,
			handlercommon.EventIDKey,
			"HandleFailed",
			logger,
		),
	)
}
