// Package walletsort orders wallet balances by the priority of the chain
// they live on.
package walletsort

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Unranked is the priority of chains without an entry in the table.
const Unranked = -99

var priorities = map[string]int{
	"osmosis":  100,
	"ethereum": 50,
	"arbitrum": 30,
	"zilliqa":  20,
	"neo":      20,
}

// Balance is one wallet holding.
type Balance struct {
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Blockchain string          `json:"blockchain"`
}

// Row is a balance ready for display.
type Row struct {
	Balance
	Formatted string          `json:"formatted"`
	USDValue  decimal.Decimal `json:"usd_value"`
}

// Priority returns the rank of a chain, or Unranked.
func Priority(blockchain string) int {
	if p, ok := priorities[strings.ToLower(strings.TrimSpace(blockchain))]; ok {
		return p
	}
	return Unranked
}

// Sort drops balances on unranked chains and non-positive amounts, then
// orders the rest by descending chain priority. Ties keep input order.
func Sort(balances []Balance) []Balance {
	out := make([]Balance, 0, len(balances))
	for _, b := range balances {
		if Priority(b.Blockchain) > Unranked && b.Amount.IsPositive() {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Priority(out[i].Blockchain) > Priority(out[j].Blockchain)
	})
	return out
}

// Rows sorts balances and values them with prices keyed by currency.
// A currency without a price is valued at zero.
func Rows(balances []Balance, prices map[string]decimal.Decimal) []Row {
	sorted := Sort(balances)
	rows := make([]Row, 0, len(sorted))
	for _, b := range sorted {
		price := prices[b.Currency]
		rows = append(rows, Row{
			Balance:   b,
			Formatted: b.Amount.StringFixed(4),
			USDValue:  price.Mul(b.Amount),
		})
	}
	return rows
}
