// Package domain holds the value types shared by the catalog, the
// conversion engine and the adapters around them.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Asset is an immutable catalog entry. A refreshed price produces a new
// Asset value with the same Symbol.
type Asset struct {
	Symbol      string           `json:"symbol"`
	DisplayName string           `json:"display_name"`
	IconRef     string           `json:"icon_ref,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	QuotedAt    time.Time        `json:"quoted_at"`
}

// HasBalance reports whether the user's balance is tracked for the asset.
func (a Asset) HasBalance() bool {
	return a.Balance != nil
}

// WithBalance returns a copy of the asset carrying the given balance.
func (a Asset) WithBalance(balance decimal.Decimal) Asset {
	b := balance
	a.Balance = &b
	return a
}

// SameSymbol compares symbols case-insensitively.
func (a Asset) SameSymbol(other Asset) bool {
	return NormalizeSymbol(a.Symbol) == NormalizeSymbol(other.Symbol)
}

// Quote is one raw row returned by a catalog fetch.
type Quote struct {
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	Timestamp   time.Time       `json:"timestamp"`
	DisplayName string          `json:"display_name,omitempty"`
	IconRef     string          `json:"icon_ref,omitempty"`
}

// NormalizeSymbol is the lookup key form of a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
