package walletsort_test

import (
	"testing"

	"github.com/amirasaad/tokenswap/pkg/walletsort"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bal(currency, amount, chain string) walletsort.Balance {
	return walletsort.Balance{Currency: currency, Amount: decimal.RequireFromString(amount), Blockchain: chain}
}

func currencies(bs []walletsort.Balance) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Currency)
	}
	return out
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 100, walletsort.Priority("Osmosis"))
	assert.Equal(t, 50, walletsort.Priority("Ethereum"))
	assert.Equal(t, 30, walletsort.Priority("Arbitrum"))
	assert.Equal(t, 20, walletsort.Priority("Zilliqa"))
	assert.Equal(t, 20, walletsort.Priority("Neo"))
	assert.Equal(t, walletsort.Unranked, walletsort.Priority("Solana"))
}

func TestSort(t *testing.T) {
	in := []walletsort.Balance{
		bal("NEO", "3", "Neo"),
		bal("ETH", "1", "Ethereum"),
		bal("SOL", "10", "Solana"),
		bal("ZIL", "7", "Zilliqa"),
		bal("OSMO", "0", "Osmosis"),
		bal("ATOM", "-2", "Osmosis"),
		bal("OSMO", "5", "Osmosis"),
		bal("ARB", "4", "Arbitrum"),
	}

	got := walletsort.Sort(in)
	assert.Equal(t, []string{"OSMO", "ETH", "ARB", "NEO", "ZIL"}, currencies(got))
	assert.Len(t, in, 8, "input is not modified")
}

func TestRows(t *testing.T) {
	prices := map[string]decimal.Decimal{"ETH": decimal.NewFromInt(2500)}
	rows := walletsort.Rows([]walletsort.Balance{
		bal("ETH", "2.5", "Ethereum"),
		bal("OSMO", "1", "Osmosis"),
	}, prices)

	require.Len(t, rows, 2)
	assert.Equal(t, "OSMO", rows[0].Currency)
	assert.True(t, rows[0].USDValue.IsZero())
	assert.Equal(t, "2.5000", rows[1].Formatted)
	assert.Equal(t, "6250", rows[1].USDValue.String())
}
