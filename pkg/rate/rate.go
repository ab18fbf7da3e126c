// Package rate derives price ratios between assets and converts amounts.
package rate

import (
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/shopspring/decimal"
)

// Places is the number of decimals a converted amount is rounded and
// rendered to.
const Places = 4

// Rate returns how many units of target one unit of source is worth.
// Prices are validated positive by the catalog; a zero target price yields zero.
func Rate(source, target domain.Asset) decimal.Decimal {
	if !target.UnitPrice.IsPositive() {
		return decimal.Zero
	}
	return source.UnitPrice.Div(target.UnitPrice)
}

// Convert multiplies amount by rate, rounding half away from zero.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(Places)
}

// Format renders d with exactly four decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Inverse returns 1/rate, or zero when rate is zero.
func Inverse(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Div(rate)
}
