package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() (*config.App, error) {
	return &config.App{
		Log:     &config.Log{Format: "text"},
		Catalog: &config.Catalog{Source: "static", CacheDriver: "none", Timeout: time.Second},
		Wallet: &config.Wallet{
			Balances: map[string]string{"ETH": "20", "USDC": "100", "SOL": "5"},
			Chains:   map[string]string{"ETH": "Ethereum", "USDC": "Osmosis", "SOL": "Solana"},
		},
		Execution: &config.Execution{Timeout: time.Second},
		Engine:    &config.Engine{CallTimeout: time.Second, DefaultSource: "ETH", DefaultTarget: "USDC"},
		EventBus:  &config.EventBus{Driver: "memory"},
	}, nil
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr, false, testConfig)
	return stdout.String(), err
}

func TestUsage(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: cli")

	_, err = runCLI(t, "launch")
	require.Error(t, err)
}

func TestSum(t *testing.T) {
	out, err := runCLI(t, "sum", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "loop")
	assert.Contains(t, out, "formula")
	assert.Contains(t, out, "recursive")
	assert.Equal(t, 3, bytes.Count([]byte(out), []byte(" 15\n")))

	_, err = runCLI(t, "sum", "five")
	require.Error(t, err)

	out, err = runCLI(t, "sum", "200000000")
	require.ErrorIs(t, err, series.ErrOutOfRange)
	assert.Empty(t, out)
}

func TestQuote(t *testing.T) {
	out, err := runCLI(t, "quote", "eth", "usdc", "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "12.5 ETH")
	assert.Contains(t, out, "31250.0000 USDC")
	assert.Contains(t, out, "1 ETH = 2500.0000 USDC")
}

func TestQuoteErrors(t *testing.T) {
	_, err := runCLI(t, "quote", "ETH", "eth", "1")
	require.ErrorIs(t, err, domain.ErrSameAsset)

	_, err = runCLI(t, "quote", "ETH", "USDC", "25")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = runCLI(t, "quote", "ETH", "DOGE", "1")
	require.ErrorIs(t, err, domain.ErrAssetNotFound)

	_, err = runCLI(t, "quote", "ETH")
	require.Error(t, err)
}

func TestSwap(t *testing.T) {
	out, err := runCLI(t, "swap", "USDC", "ETH", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "conversion settled")
	assert.Contains(t, out, "0x")
}

func TestAssetsAndBalances(t *testing.T) {
	out, err := runCLI(t, "assets")
	require.NoError(t, err)
	assert.Contains(t, out, "Ethereum")
	assert.Contains(t, out, "20.0000")

	out, err = runCLI(t, "balances")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("USDC")), bytes.Index([]byte(out), []byte("ETH")))
	assert.NotContains(t, out, "SOL")
}

func TestConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	failing := func() (*config.App, error) { return nil, errors.New("bad env") }
	err := run(context.Background(), []string{"assets"}, &stdout, &stderr, false, failing)
	require.Error(t, err)
}

func TestQuoteRejectsNonNumeralInput(t *testing.T) {
	_, err := runCLI(t, "quote", "ETH", "USDC", "1e3")
	require.ErrorIs(t, err, domain.ErrMalformedNumber)
}
