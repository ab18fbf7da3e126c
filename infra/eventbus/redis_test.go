package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupRedisBus starts a Redis container and returns a bus connected to it.
func setupRedisBus(t *testing.T) *RedisEventBus {
	t.Helper()
	endpoint := testutils.StartRedis(t)

	bus, err := NewWithRedis("redis://"+endpoint, "tokenswap-events", "tokenswap", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestRedisBusHandlerReceivesEvent(t *testing.T) {
	bus := setupRedisBus(t)

	received := make(chan *events.ConversionSettled, 1)
	bus.Register(events.EventTypeConversionSettled.String(), func(_ context.Context, e events.Event) error {
		received <- e.(*events.ConversionSettled)
		return nil
	})

	evt := events.NewConversionSettled(uuid.New(), "ETH", "USDC", decimal.RequireFromString("1.5"), "0xabc")
	require.NoError(t, bus.Emit(context.Background(), evt))

	select {
	case got := <-received:
		require.Equal(t, "0xabc", got.TransactionID)
		require.True(t, got.Amount.Equal(decimal.RequireFromString("1.5")))
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestRedisBusDLQ(t *testing.T) {
	bus := setupRedisBus(t)
	ctx := context.Background()

	bus.Register(events.EventTypeCatalogFailed.String(), func(context.Context, events.Event) error {
		return errors.New("simulated failure")
	})
	require.NoError(t, bus.Emit(ctx, events.NewCatalogFailed("FetchError", "down")))

	require.Eventually(t, func() bool {
		res, err := bus.client.XRange(ctx, bus.DLQStream(), "-", "+").Result()
		return err == nil && len(res) == 1
	}, 5*time.Second, 100*time.Millisecond)
}
