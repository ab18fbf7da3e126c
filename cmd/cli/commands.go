package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/amirasaad/tokenswap/infra/initializer"
	"github.com/amirasaad/tokenswap/pkg/amount"
	"github.com/amirasaad/tokenswap/pkg/app"
	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/amirasaad/tokenswap/pkg/conversion"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/rate"
	"github.com/amirasaad/tokenswap/pkg/series"
	"github.com/charmbracelet/log"
)

type sessionCommand func(ctx context.Context, p *printer, a *app.App, args []string) error

var sessionCommands = map[string]sessionCommand{
	"quote":    quoteCommand,
	"swap":     swapCommand,
	"assets":   assetsCommand,
	"balances": balancesCommand,
}

// openSession builds the application with logs on stderr, quieter than the
// server unless the configured level is already above warn.
func openSession(ctx context.Context, cfg *config.App, stderr io.Writer) (*app.App, error) {
	logCfg := config.Log{Format: "text"}
	if cfg.Log != nil {
		logCfg = *cfg.Log
	}
	if logCfg.Level < int(log.WarnLevel) {
		logCfg.Level = int(log.WarnLevel)
	}
	logger := initializer.NewLogger(&logCfg, stderr)

	deps, err := initializer.Build(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	a, err := app.New(deps, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func prepare(ctx context.Context, a *app.App, args []string) (conversion.Snapshot, error) {
	if len(args) != 3 {
		return conversion.Snapshot{}, errors.New("expected <from> <to> <amount>")
	}
	from, to, text := args[0], args[1], args[2]
	if snap := a.Engine.Snapshot(); snap.CatalogError != nil {
		return snap, fmt.Errorf("catalog unavailable: %s", snap.CatalogError.Message)
	}
	if !amount.IsPartial(text) {
		return conversion.Snapshot{}, domain.NewError(domain.KindMalformedNumber, "amount may only contain digits and one dot", nil)
	}
	if domain.NormalizeSymbol(from) == domain.NormalizeSymbol(to) {
		return conversion.Snapshot{}, domain.ErrSameAsset
	}
	if err := a.Engine.SelectAsset(ctx, from, conversion.RoleSource); err != nil {
		return conversion.Snapshot{}, err
	}
	if err := a.Engine.SelectAsset(ctx, to, conversion.RoleTarget); err != nil {
		return conversion.Snapshot{}, err
	}
	if err := a.Engine.SetSourceAmountText(ctx, text); err != nil {
		return a.Engine.Snapshot(), err
	}
	return a.Engine.Snapshot(), nil
}

func printQuote(p *printer, snap conversion.Snapshot) {
	p.field("From", snap.SourceText+" "+snap.Source.Symbol)
	p.field("To", snap.TargetText+" "+snap.Target.Symbol)
	if snap.Rate != nil {
		p.field("Rate", fmt.Sprintf("1 %s = %s %s", snap.Source.Symbol, rate.Format(*snap.Rate), snap.Target.Symbol))
	}
	if snap.Source.Balance != nil {
		p.field("Available", snap.Source.Balance.String()+" "+snap.Source.Symbol)
	}
}

func quoteCommand(ctx context.Context, p *printer, a *app.App, args []string) error {
	snap, err := prepare(ctx, a, args)
	if err != nil {
		return err
	}
	printQuote(p, snap)
	return nil
}

func swapCommand(ctx context.Context, p *printer, a *app.App, args []string) error {
	snap, err := prepare(ctx, a, args)
	if err != nil {
		return err
	}
	printQuote(p, snap)

	if err := a.Engine.Submit(ctx); err != nil {
		p.failure("conversion failed: %v", err)
		return err
	}
	after := a.Engine.Snapshot()
	if after.Receipt == nil {
		return errors.New("conversion settled without a receipt")
	}
	p.success("conversion settled")
	p.field("Transaction", after.Receipt.TransactionID)
	return nil
}

func assetsCommand(_ context.Context, p *printer, a *app.App, _ []string) error {
	assets := a.Catalog.Assets()
	if len(assets) == 0 {
		p.warning("no assets available")
		return nil
	}
	p.row("%-8s %-24s %16s %16s", "SYMBOL", "NAME", "PRICE (USD)", "BALANCE")
	for _, asset := range assets {
		balance := "-"
		if asset.Balance != nil {
			balance = asset.Balance.StringFixed(4)
		}
		p.row("%-8s %-24s %16s %16s", asset.Symbol, asset.DisplayName, asset.UnitPrice.StringFixed(4), balance)
	}
	return nil
}

func balancesCommand(_ context.Context, p *printer, a *app.App, _ []string) error {
	rows := a.WalletRows()
	if len(rows) == 0 {
		p.warning("no holdings on ranked chains")
		return nil
	}
	p.row("%-8s %-10s %16s %16s", "CURRENCY", "CHAIN", "AMOUNT", "USD VALUE")
	for _, r := range rows {
		p.row("%-8s %-10s %16s %16s", r.Currency, r.Blockchain, r.Formatted, r.USDValue.StringFixed(2))
	}
	return nil
}

func sumCommand(p *printer, args []string) error {
	if len(args) != 1 {
		return errors.New("expected <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid n: %w", err)
	}
	if err := series.CheckRange(n); err != nil {
		return fmt.Errorf("invalid n: %w", err)
	}
	for _, s := range series.Strategies {
		p.field(s.Name, s.Sum(n))
	}
	return nil
}
