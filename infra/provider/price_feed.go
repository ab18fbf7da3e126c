package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
)

// PriceFeed fetches quotes from an HTTP endpoint serving a JSON array of
// {currency, date, price} rows.
//
// Example: [{"currency":"ETH","date":"2023-08-29T07:10:52.000Z","price":1645.93}]
type PriceFeed struct {
	url        string
	httpClient *http.Client
	maxRetries uint
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

type priceRow struct {
	Currency string          `json:"currency"`
	Date     time.Time       `json:"date"`
	Price    decimal.Decimal `json:"price"`
}

// NewPriceFeed creates a feed from catalog configuration.
func NewPriceFeed(cfg *config.Catalog, logger *slog.Logger) *PriceFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceFeed{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		maxRetries: cfg.MaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		logger: logger.With("component", "price-feed"),
	}
}

// Fetch downloads the price list, retrying transient failures with
// exponential backoff. Client errors are not retried.
func (p *PriceFeed) Fetch(ctx context.Context) ([]domain.Quote, error) {
	b := p.newBackOff()
	var attempt uint
	for {
		attempt++
		quotes, err := p.fetchOnce(ctx)
		if err == nil {
			return quotes, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) || attempt > p.maxRetries || ctx.Err() != nil {
			return nil, err
		}

		sleep := b.NextBackOff()
		if sleep == backoff.Stop {
			return nil, err
		}
		p.logger.Warn("price fetch failed, retrying", "attempt", attempt, "backoff", sleep, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

func (p *PriceFeed) fetchOnce(ctx context.Context) ([]domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("price feed returned status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &permanentError{err}
		}
		return nil, err
	}

	var rows []priceRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &permanentError{fmt.Errorf("failed to decode response: %w", err)}
	}

	quotes := make([]domain.Quote, 0, len(rows))
	for _, r := range rows {
		quotes = append(quotes, domain.Quote{Symbol: r.Currency, Price: r.Price, Timestamp: r.Date})
	}
	p.logger.Debug("prices fetched", "rows", len(rows))
	return quotes, nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

var _ catalog.Fetcher = (*PriceFeed)(nil)
