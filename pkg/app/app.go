// Package app wires the conversion components into one running session.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/amirasaad/tokenswap/pkg/conversion"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
	handlerconversion "github.com/amirasaad/tokenswap/pkg/handler/conversion"
	"github.com/amirasaad/tokenswap/pkg/submission"
	"github.com/amirasaad/tokenswap/pkg/walletsort"
	"github.com/shopspring/decimal"
)

// Invalidator drops cached quotes so the next fetch hits the source.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Deps contains the adapters the application is built from.
type Deps struct {
	Fetcher     catalog.Fetcher
	Invalidator Invalidator
	Executor    submission.Executor
	EventBus    eventbus.Bus
	Logger      *slog.Logger
	// Closers are closed in reverse order by App.Close.
	Closers []io.Closer
}

type App struct {
	Deps       *Deps
	Config     *config.App
	Catalog    *catalog.Catalog
	Submission *submission.Controller
	Engine     *conversion.Engine
	Activity   *handlerconversion.Activity

	balances catalog.Balances
	logger   *slog.Logger
}

// New builds the catalog, the submission controller and the engine. The
// engine worker is running when New returns; call Start to load the catalog.
func New(deps *Deps, cfg *config.App) (*App, error) {
	if deps == nil || deps.Fetcher == nil || deps.Executor == nil {
		return nil, errors.New("app: fetcher and executor are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.EventBus == nil {
		deps.EventBus = eventbus.Nop{}
	}
	cfg = withDefaults(cfg)

	balances, err := catalog.ParseBalances(cfg.Wallet.Balances)
	if err != nil {
		return nil, fmt.Errorf("app: invalid wallet balances: %w", err)
	}

	a := &App{
		Deps:     deps,
		Config:   cfg,
		Activity: handlerconversion.NewActivity(handlerconversion.DefaultActivityLimit),
		balances: balances,
		logger:   deps.Logger.With("component", "app"),
	}
	a.setupEventBus()

	a.Catalog = catalog.New(deps.Fetcher, catalog.Options{
		Balances:     balances,
		IconTemplate: cfg.Catalog.IconTemplate,
		Timeout:      cfg.Catalog.Timeout,
		Bus:          deps.EventBus,
		Logger:       deps.Logger,
	})
	a.Submission = submission.New(deps.Executor, submission.Options{
		Timeout: cfg.Execution.Timeout,
		Bus:     deps.EventBus,
		Logger:  deps.Logger,
	})
	a.Engine = conversion.New(a.Catalog, a.Submission, conversion.Options{
		DefaultSource: cfg.Engine.DefaultSource,
		DefaultTarget: cfg.Engine.DefaultTarget,
		Confirmer:     conversion.DelayConfirmer{Delay: cfg.Engine.SwapConfirmDelay},
		CallTimeout:   cfg.Engine.CallTimeout,
		Bus:           deps.EventBus,
		Logger:        deps.Logger,
	})
	return a, nil
}

func withDefaults(cfg *config.App) *config.App {
	if cfg == nil {
		cfg = &config.App{}
	}
	if cfg.Catalog == nil {
		cfg.Catalog = &config.Catalog{}
	}
	if cfg.Wallet == nil {
		cfg.Wallet = &config.Wallet{}
	}
	if cfg.Execution == nil {
		cfg.Execution = &config.Execution{}
	}
	if cfg.Engine == nil {
		cfg.Engine = &config.Engine{}
	}
	return cfg
}

// Start loads the catalog. A failed load is not fatal: the session stays
// usable with an empty catalog and the error is kept on the snapshot, so
// only non-classified failures are returned.
func (a *App) Start(ctx context.Context) error {
	err := a.Engine.Start(ctx)
	switch domain.KindOf(err) {
	case "":
		return err
	case domain.KindFetch, domain.KindTimeout:
		a.logger.Warn("starting without a catalog", "error", err)
		return nil
	default:
		return err
	}
}

// ReloadCatalog drops cached quotes and refetches the catalog.
func (a *App) ReloadCatalog(ctx context.Context) error {
	if a.Deps.Invalidator != nil {
		if err := a.Deps.Invalidator.Invalidate(ctx); err != nil {
			a.logger.Warn("failed to invalidate quote cache", "error", err)
		}
	}
	return a.Engine.ReloadCatalog(ctx)
}

// WalletRows returns the user's holdings ordered by chain priority and
// valued at catalog prices.
func (a *App) WalletRows() []walletsort.Row {
	chains := make(map[string]string, len(a.Config.Wallet.Chains))
	for symbol, chain := range a.Config.Wallet.Chains {
		chains[domain.NormalizeSymbol(symbol)] = chain
	}

	balances := make([]walletsort.Balance, 0, len(a.balances))
	for symbol, amount := range a.balances {
		balances = append(balances, walletsort.Balance{
			Currency:   symbol,
			Amount:     amount,
			Blockchain: chains[symbol],
		})
	}
	// map order is random; sort by symbol first so priority ties are stable
	slices.SortFunc(balances, func(x, y walletsort.Balance) int {
		return strings.Compare(x.Currency, y.Currency)
	})

	prices := make(map[string]decimal.Decimal)
	for _, asset := range a.Catalog.Assets() {
		prices[asset.Symbol] = asset.UnitPrice
	}
	return walletsort.Rows(balances, prices)
}

// Close stops the engine and releases adapters.
func (a *App) Close() error {
	var errs []error
	if err := a.Engine.Close(); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.Deps.Closers) - 1; i >= 0; i-- {
		if err := a.Deps.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
