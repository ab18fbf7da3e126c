package conversion

import (
	"context"
	"log/slog"
	"testing"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSettled(t *testing.T) {
	t.Parallel()
	activity := NewActivity(10)
	handler := HandleSettled(activity, slog.Default())
	requestID := uuid.New()

	err := handler(context.Background(), events.NewConversionSettled(requestID, "ETH", "USDC", decimal.RequireFromString("1.5"), "0xdead"))
	require.NoError(t, err)

	recent := activity.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, StatusSettled, recent[0].Status)
	assert.Equal(t, requestID.String(), recent[0].RequestID)
	assert.Equal(t, "1.5", recent[0].Amount)
	assert.Equal(t, "0xdead", recent[0].TransactionID)
}

func TestHandleSettledRejectsMissingTransaction(t *testing.T) {
	t.Parallel()
	activity := NewActivity(10)
	handler := HandleSettled(activity, slog.Default())

	err := handler(context.Background(), events.NewConversionSettled(uuid.New(), "ETH", "USDC", decimal.NewFromInt(1), ""))
	require.Error(t, err)
	assert.Zero(t, activity.Len())
}

func TestHandleFailed(t *testing.T) {
	t.Parallel()
	activity := NewActivity(10)
	handler := HandleFailed(activity, slog.Default())

	err := handler(context.Background(), events.NewConversionFailed(uuid.New(), "ETH", "USDC", decimal.NewFromInt(2), "Timeout", "swap timed out"))
	require.NoError(t, err)

	recent := activity.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, StatusFailed, recent[0].Status)
	assert.Equal(t, "Timeout", recent[0].Kind)
	assert.Equal(t, "swap timed out", recent[0].Reason)
}

func TestHandlersRejectWrongEvent(t *testing.T) {
	t.Parallel()
	activity := NewActivity(10)
	wrong := events.NewCatalogLoaded(1)

	assert.ErrorIs(t, HandleSettled(activity, slog.Default())(context.Background(), wrong), ErrUnexpectedEvent)
	assert.ErrorIs(t, HandleFailed(activity, slog.Default())(context.Background(), wrong), ErrUnexpectedEvent)
	assert.ErrorIs(t, HandleSubmitted(slog.Default())(context.Background(), wrong), ErrUnexpectedEvent)
	assert.NoError(t, HandleSubmitted(slog.Default())(context.Background(),
		events.NewConversionSubmitted(uuid.New(), "ETH", "USDC", decimal.NewFromInt(1))))
}

func TestActivityIsBoundedAndNewestFirst(t *testing.T) {
	t.Parallel()
	activity := NewActivity(3)
	for i := range 5 {
		activity.add(Entry{RequestID: string(rune('a' + i))})
	}

	recent := activity.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"e", "d", "c"}, []string{recent[0].RequestID, recent[1].RequestID, recent[2].RequestID})
	assert.Equal(t, DefaultActivityLimit, NewActivity(0).limit)
}
