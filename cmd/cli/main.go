package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/amirasaad/tokenswap/pkg/config"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  quote <from> <to> <amount>   show the converted amount
  swap <from> <to> <amount>    convert and submit
  assets                       list tradable assets
  balances                     wallet holdings by chain priority
  sum <n>                      sum 1..n with every strategy (n <= 1000000)`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	colored := term.IsTerminal(int(os.Stdout.Fd()))
	loadConfig := func() (*config.App, error) { return config.Load(".env") }
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, colored, loadConfig); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	colored bool,
	loadConfig func() (*config.App, error),
) error {
	p := newPrinter(stdout, colored)
	if len(args) == 0 {
		fmt.Fprintln(stdout, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	if cmd == "sum" {
		return sumCommand(p, rest)
	}

	handler, ok := sessionCommands[cmd]
	if !ok {
		fmt.Fprintln(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	s, err := openSession(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer s.Close() //nolint: errcheck
	return handler(ctx, p, s, rest)
}
