package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
)

// ErrUnexpectedEvent is returned when a handler receives a type it was not
// registered for.
var ErrUnexpectedEvent = errors.New("unexpected event type")

// HandleSubmitted logs conversions handed to the execution service.
func HandleSubmitted(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "conversion.HandleSubmitted", "event_type", e.Type())
		cs, ok := e.(*events.ConversionSubmitted)
		if !ok {
			log.Error("unexpected event", "event_type", fmt.Sprintf("%T", e))
			return ErrUnexpectedEvent
		}
		log.Info("conversion submitted",
			"request_id", cs.RequestID,
			"source", cs.Source,
			"target", cs.Target,
			"amount", cs.Amount.String(),
		)
		return nil
	}
}

// HandleSettled records settled conversions in the activity feed.
func HandleSettled(activity *Activity, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "conversion.HandleSettled", "event_type", e.Type())
		cs, ok := e.(*events.ConversionSettled)
		if !ok {
			log.Error("unexpected event", "event_type", fmt.Sprintf("%T", e))
			return ErrUnexpectedEvent
		}
		if cs.TransactionID == "" {
			log.Error("settled event without transaction id", "request_id", cs.RequestID)
			return errors.New("missing transaction id")
		}
		activity.add(Entry{
			EventID:       cs.ID(),
			RequestID:     cs.RequestID.String(),
			Status:        StatusSettled,
			Source:        cs.Source,
			Target:        cs.Target,
			Amount:        cs.Amount.String(),
			TransactionID: cs.TransactionID,
			At:            cs.Timestamp,
		})
		log.Info("conversion settled", "request_id", cs.RequestID, "transaction_id", cs.TransactionID)
		return nil
	}
}

// HandleFailed records failed conversions in the activity feed.
func HandleFailed(activity *Activity, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "conversion.HandleFailed", "event_type", e.Type())
		cf, ok := e.(*events.ConversionFailed)
		if !ok {
			log.Error("unexpected event", "event_type", fmt.Sprintf("%T", e))
			return ErrUnexpectedEvent
		}
		activity.add(Entry{
			EventID:   cf.ID(),
			RequestID: cf.RequestID.String(),
			Status:    StatusFailed,
			Source:    cf.Source,
			Target:    cf.Target,
			Amount:    cf.Amount.String(),
			Kind:      cf.Kind,
			Reason:    cf.Reason,
			At:        cf.Timestamp,
		})
		log.Warn("conversion failed", "request_id", cf.RequestID, "kind", cf.Kind, "reason", cf.Reason)
		return nil
	}
}
