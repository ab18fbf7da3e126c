// Package eventbus defines the contract for publishing domain events.
package eventbus

import (
	"context"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
)

// HandlerFunc handles one event. A returned error is logged by the bus and,
// for durable buses, moves the message to a dead-letter stream.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus publishes events and dispatches them to registered handlers.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Register(string, HandlerFunc) {}
func (Nop) Emit(context.Context, events.Event) error { return nil }

var _ Bus = Nop{}
