// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RedisImage is the image started by StartRedis.
const RedisImage = "redis:7.0.5"

// StartRedis starts a throwaway Redis container and returns its host:port.
// The test is skipped in short mode or when no container runtime is
// available.
func StartRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        RedisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	return endpoint
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Quotes returns a small catalog: ETH at 2500, USDC at 1 and BTC at 45000.
func Quotes() []domain.Quote {
	now := time.Now().UTC()
	return []domain.Quote{
		{Symbol: "ETH", DisplayName: "Ethereum", Price: decimal.NewFromInt(2500), Timestamp: now},
		{Symbol: "USDC", DisplayName: "USD Coin", Price: decimal.NewFromInt(1), Timestamp: now},
		{Symbol: "BTC", DisplayName: "Bitcoin", Price: decimal.NewFromInt(45000), Timestamp: now},
	}
}

// MakeRequestWithApp sends a request through app without a network
// listener. A non-empty body is sent as JSON.
func MakeRequestWithApp(app *fiber.App, method, path, body string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		panic(err)
	}
	return resp
}
