// Package events defines the domain events emitted by the conversion flow.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeCatalogLoaded       EventType = "Catalog.Loaded"
	EventTypeCatalogFailed       EventType = "Catalog.Failed"
	EventTypeAssetsSwapped       EventType = "Conversion.AssetsSwapped"
	EventTypeConversionSubmitted EventType = "Conversion.Submitted"
	EventTypeConversionSettled   EventType = "Conversion.Settled"
	EventTypeConversionFailed    EventType = "Conversion.Failed"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Meta is embedded in every event.
type Meta struct {
	EventID   uuid.UUID `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ID returns the event identifier as a string.
func (m Meta) ID() string {
	return m.EventID.String()
}

func newMeta() Meta {
	return Meta{EventID: uuid.New(), Timestamp: time.Now().UTC()}
}

// CatalogLoaded is emitted after a successful catalog load or refresh.
type CatalogLoaded struct {
	Meta
	Count int `json:"count"`
}

func (CatalogLoaded) Type() string { return EventTypeCatalogLoaded.String() }

// CatalogFailed is emitted when the catalog could not be loaded.
type CatalogFailed struct {
	Meta
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

func (CatalogFailed) Type() string { return EventTypeCatalogFailed.String() }

// AssetsSwapped is emitted once a swap of source and target completed.
type AssetsSwapped struct {
	Meta
	Source string `json:"source"`
	Target string `json:"target"`
}

func (AssetsSwapped) Type() string { return EventTypeAssetsSwapped.String() }

// ConversionSubmitted is emitted when a request is handed to the execution service.
type ConversionSubmitted struct {
	Meta
	RequestID uuid.UUID       `json:"request_id"`
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Amount    decimal.Decimal `json:"amount"`
}

func (ConversionSubmitted) Type() string { return EventTypeConversionSubmitted.String() }

// ConversionSettled is emitted when the execution service accepted the request.
type ConversionSettled struct {
	Meta
	RequestID     uuid.UUID       `json:"request_id"`
	Source        string          `json:"source"`
	Target        string          `json:"target"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

func (ConversionSettled) Type() string { return EventTypeConversionSettled.String() }

// ConversionFailed is emitted when the execution service rejected the request
// or did not answer in time.
type ConversionFailed struct {
	Meta
	RequestID uuid.UUID       `json:"request_id"`
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	Reason    string          `json:"reason"`
}

func (ConversionFailed) Type() string { return EventTypeConversionFailed.String() }

// NewCatalogLoaded builds a CatalogLoaded event.
func NewCatalogLoaded(count int) *CatalogLoaded {
	return &CatalogLoaded{Meta: newMeta(), Count: count}
}

// NewCatalogFailed builds a CatalogFailed event.
func NewCatalogFailed(kind, reason string) *CatalogFailed {
	return &CatalogFailed{Meta: newMeta(), Kind: kind, Reason: reason}
}

// NewAssetsSwapped builds an AssetsSwapped event.
func NewAssetsSwapped(source, target string) *AssetsSwapped {
	return &AssetsSwapped{Meta: newMeta(), Source: source, Target: target}
}

// NewConversionSubmitted builds a ConversionSubmitted event.
func NewConversionSubmitted(requestID uuid.UUID, source, target string, amount decimal.Decimal) *ConversionSubmitted {
	return &ConversionSubmitted{Meta: newMeta(), RequestID: requestID, Source: source, Target: target, Amount: amount}
}

// NewConversionSettled builds a ConversionSettled event.
func NewConversionSettled(requestID uuid.UUID, source, target string, amount decimal.Decimal, txID string) *ConversionSettled {
	return &ConversionSettled{
		Meta:          newMeta(),
		RequestID:     requestID,
		Source:        source,
		Target:        target,
		Amount:        amount,
		TransactionID: txID,
	}
}

// NewConversionFailed builds a ConversionFailed event.
func NewConversionFailed(requestID uuid.UUID, source, target string, amount decimal.Decimal, kind, reason string) *ConversionFailed {
	return &ConversionFailed{
		Meta:      newMeta(),
		RequestID: requestID,
		Source:    source,
		Target:    target,
		Amount:    amount,
		Kind:      kind,
		Reason:    reason,
	}
}

// EventTypes maps event type names to factories, used to decode events read
// back from a stream.
var EventTypes = map[string]func() Event{
	EventTypeCatalogLoaded.String():       func() Event { return &CatalogLoaded{} },
	EventTypeCatalogFailed.String():       func() Event { return &CatalogFailed{} },
	EventTypeAssetsSwapped.String():       func() Event { return &AssetsSwapped{} },
	EventTypeConversionSubmitted.String(): func() Event { return &ConversionSubmitted{} },
	EventTypeConversionSettled.String():   func() Event { return &ConversionSettled{} },
	EventTypeConversionFailed.String():    func() Event { return &ConversionFailed{} },
}
