// Package catalog keeps the directory of tradable assets fetched from a
// price source.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a catalog fetch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Fetcher returns the raw quotes of the asset directory.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.Quote, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]domain.Quote, error)

// Fetch calls f(ctx).
func (f FetcherFunc) Fetch(ctx context.Context) ([]domain.Quote, error) {
	return f(ctx)
}

// Options configures a Catalog.
type Options struct {
	// Balances are the user's holdings, attached to matching assets.
	Balances Balances
	// IconTemplate builds an icon reference for quotes without one.
	// "{symbol}" is replaced by the asset symbol.
	IconTemplate string
	Timeout      time.Duration
	Bus          eventbus.Bus
	Logger       *slog.Logger
}

type collection struct {
	assets []domain.Asset
	index  map[string]int
}

// Catalog is the asset directory cache. It is read-only between loads and
// every load swaps the whole collection at once.
type Catalog struct {
	fetcher      Fetcher
	balances     Balances
	iconTemplate string
	timeout      time.Duration
	bus          eventbus.Bus
	logger       *slog.Logger

	current atomic.Pointer[collection]
	group   singleflight.Group
}

// New creates an empty catalog backed by fetcher.
func New(fetcher Fetcher, opts Options) *Catalog {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.Nop{}
	}
	return &Catalog{
		fetcher:      fetcher,
		balances:     opts.Balances,
		iconTemplate: opts.IconTemplate,
		timeout:      opts.Timeout,
		bus:          opts.Bus,
		logger:       opts.Logger.With("component", "catalog"),
	}
}

// Load fetches the directory and replaces the cached collection. Concurrent
// calls share one fetch. On failure the previous collection stays in place
// and the error is a *domain.Error of kind FetchError or Timeout.
func (c *Catalog) Load(ctx context.Context) ([]domain.Asset, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ch := c.group.DoChan("load", func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.load(callCtx)
	})

	select {
	case <-waitCtx.Done():
		err := classify(waitCtx.Err())
		c.logger.Warn("catalog load abandoned", "error", err)
		return nil, err
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneAssets(res.Val.(*collection).assets), nil
	}
}

// Refresh reloads prices. It is Load without the result.
func (c *Catalog) Refresh(ctx context.Context) error {
	_, err := c.Load(ctx)
	return err
}

func (c *Catalog) load(ctx context.Context) (*collection, error) {
	start := time.Now()
	quotes, err := c.fetcher.Fetch(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		derr := classify(err)
		c.logger.Error("catalog fetch failed", "kind", derr.Kind, "error", err)
		c.emit(events.NewCatalogFailed(string(derr.Kind), err.Error()))
		return nil, derr
	}

	coll := c.build(quotes)
	c.current.Store(coll)
	c.logger.Info("catalog loaded",
		"quotes", len(quotes),
		"assets", len(coll.assets),
		"duration", time.Since(start))
	c.emit(events.NewCatalogLoaded(len(coll.assets)))
	return coll, nil
}

// build drops rows without a positive price, keeps the most recent quote per
// symbol (ties go to the row read last) and preserves first-seen order.
func (c *Catalog) build(quotes []domain.Quote) *collection {
	coll := &collection{index: make(map[string]int, len(quotes))}
	for _, q := range quotes {
		symbol := strings.TrimSpace(q.Symbol)
		if symbol == "" || !q.Price.IsPositive() {
			continue
		}
		key := domain.NormalizeSymbol(symbol)
		asset := c.toAsset(symbol, q)

		if i, ok := coll.index[key]; ok {
			prev := coll.assets[i]
			if q.Timestamp.Before(prev.QuotedAt) {
				continue
			}
			if q.DisplayName == "" {
				asset.DisplayName = prev.DisplayName
			}
			if q.IconRef == "" {
				asset.IconRef = prev.IconRef
			}
			coll.assets[i] = asset
			continue
		}
		coll.index[key] = len(coll.assets)
		coll.assets = append(coll.assets, asset)
	}
	return coll
}

func (c *Catalog) toAsset(symbol string, q domain.Quote) domain.Asset {
	asset := domain.Asset{
		Symbol:      symbol,
		DisplayName: q.DisplayName,
		IconRef:     q.IconRef,
		UnitPrice:   q.Price,
		QuotedAt:    q.Timestamp,
	}
	if asset.DisplayName == "" {
		asset.DisplayName = symbol
	}
	if asset.IconRef == "" && c.iconTemplate != "" {
		asset.IconRef = strings.ReplaceAll(c.iconTemplate, "{symbol}", symbol)
	}
	if balance, ok := c.balances.Lookup(symbol); ok {
		asset = asset.WithBalance(balance)
	}
	return asset
}

func (c *Catalog) emit(event events.Event) {
	if err := c.bus.Emit(context.Background(), event); err != nil {
		c.logger.Warn("failed to publish catalog event", "type", event.Type(), "error", err)
	}
}

// Loaded reports whether at least one load has succeeded.
func (c *Catalog) Loaded() bool {
	return c.current.Load() != nil
}

// Assets returns the cached assets in first-seen order.
func (c *Catalog) Assets() []domain.Asset {
	coll := c.current.Load()
	if coll == nil {
		return nil
	}
	return cloneAssets(coll.assets)
}

// Lookup finds an asset by symbol, case-insensitively.
func (c *Catalog) Lookup(symbol string) (domain.Asset, bool) {
	coll := c.current.Load()
	if coll == nil {
		return domain.Asset{}, false
	}
	i, ok := coll.index[domain.NormalizeSymbol(symbol)]
	if !ok {
		return domain.Asset{}, false
	}
	return coll.assets[i], true
}

// Targets returns every asset except the one named by exclude.
func (c *Catalog) Targets(exclude string) []domain.Asset {
	key := domain.NormalizeSymbol(exclude)
	var out []domain.Asset
	for _, a := range c.Assets() {
		if domain.NormalizeSymbol(a.Symbol) != key {
			out = append(out, a)
		}
	}
	return out
}

// Holdings returns the assets the user holds a balance of.
func (c *Catalog) Holdings() []domain.Asset {
	var out []domain.Asset
	for _, a := range c.Assets() {
		if a.HasBalance() {
			out = append(out, a)
		}
	}
	return out
}

func cloneAssets(in []domain.Asset) []domain.Asset {
	out := make([]domain.Asset, len(in))
	copy(out, in)
	return out
}

func classify(err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) && (derr.Kind == domain.KindFetch || derr.Kind == domain.KindTimeout) {
		return derr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindTimeout, "catalog fetch timed out", err)
	}
	return domain.NewError(domain.KindFetch, "failed to load assets", err)
}

// Balances maps symbols to the user's holdings.
type Balances map[string]decimal.Decimal

// ParseBalances converts configured balance strings to decimals.
// Negative balances are rejected.
func ParseBalances(raw map[string]string) (Balances, error) {
	out := make(Balances, len(raw))
	for symbol, value := range raw {
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("balance for %s: %w", symbol, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("balance for %s: must not be negative", symbol)
		}
		out[domain.NormalizeSymbol(symbol)] = d
	}
	return out, nil
}

// Lookup returns the balance held for symbol.
func (b Balances) Lookup(symbol string) (decimal.Decimal, bool) {
	if b == nil {
		return decimal.Zero, false
	}
	if d, ok := b[symbol]; ok {
		return d, true
	}
	if d, ok := b[domain.NormalizeSymbol(symbol)]; ok {
		return d, true
	}
	return decimal.Zero, false
}
