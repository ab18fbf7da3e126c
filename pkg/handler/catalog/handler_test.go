package catalog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/stretchr/testify/assert"
)

func TestHandlers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := slog.Default()

	assert.NoError(t, HandleLoaded(logger)(ctx, events.NewCatalogLoaded(4)))
	assert.NoError(t, HandleFailed(logger)(ctx, events.NewCatalogFailed("FetchError", "boom")))

	assert.ErrorIs(t, HandleLoaded(logger)(ctx, events.NewCatalogFailed("FetchError", "boom")), errUnexpectedEvent)
	assert.ErrorIs(t, HandleFailed(logger)(ctx, events.NewCatalogLoaded(4)), errUnexpectedEvent)
}
