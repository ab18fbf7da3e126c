package provider

import (
	"context"
	"time"

	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/shopspring/decimal"
)

// StaticFeed serves a fixed quote table.
type StaticFeed struct {
	quotes []domain.Quote
}

// NewStaticFeed serves quotes as given.
func NewStaticFeed(quotes []domain.Quote) *StaticFeed {
	return &StaticFeed{quotes: quotes}
}

// DefaultStaticFeed serves the built-in demo token table.
func DefaultStaticFeed() *StaticFeed {
	now := time.Now().UTC()
	row := func(symbol, name, price, icon string) domain.Quote {
		return domain.Quote{
			Symbol:      symbol,
			DisplayName: name,
			Price:       decimal.RequireFromString(price),
			Timestamp:   now,
			IconRef:     "https://cryptologos.cc/logos/" + icon,
		}
	}
	return NewStaticFeed([]domain.Quote{
		row("ETH", "Ethereum", "2500", "ethereum-eth-logo.svg"),
		row("BTC", "Bitcoin", "45000", "bitcoin-btc-logo.svg"),
		row("USDT", "Tether", "1", "tether-usdt-logo.svg"),
		row("USDC", "USD Coin", "1", "usd-coin-usdc-logo.svg"),
		row("BNB", "BNB", "320", "bnb-bnb-logo.svg"),
		row("SOL", "Solana", "150", "solana-sol-logo.svg"),
	})
}

// Fetch returns a copy of the table.
func (s *StaticFeed) Fetch(ctx context.Context) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Quote, len(s.quotes))
	copy(out, s.quotes)
	return out, nil
}

var _ catalog.Fetcher = (*StaticFeed)(nil)
