package catalog_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/tokenswap/infra/eventbus"
	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context) ([]domain.Quote, error) {
	args := m.Called(ctx)
	quotes, _ := args.Get(0).([]domain.Quote)
	return quotes, args.Error(1)
}

var t0 = time.Date(2023, 8, 29, 7, 10, 40, 0, time.UTC)

func quote(symbol, price string, at time.Time) domain.Quote {
	return domain.Quote{Symbol: symbol, Price: decimal.RequireFromString(price), Timestamp: at}
}

func symbols(assets []domain.Asset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Symbol)
	}
	return out
}

func TestLoad_DeduplicatesAndFilters(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return([]domain.Quote{
		quote("ETH", "2500", t0),
		quote("USDC", "1", t0),
		quote("ZERO", "0", t0),
		quote("NEG", "-3", t0),
		{Symbol: "", Price: decimal.NewFromInt(4)},
		quote("ETH", "2400", t0.Add(-time.Minute)),
		quote("USDC", "0.99", t0),
		quote("ATOM", "7.18", t0),
		quote("ETH", "2600", t0.Add(time.Minute)),
	}, nil).Once()

	c := catalog.New(fetcher, catalog.Options{})
	assets, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ETH", "USDC", "ATOM"}, symbols(assets))

	eth, ok := c.Lookup("eth")
	require.True(t, ok)
	assert.Equal(t, "2600", eth.UnitPrice.String(), "most recent quote wins")

	usdc, ok := c.Lookup("USDC")
	require.True(t, ok)
	assert.Equal(t, "0.99", usdc.UnitPrice.String(), "tie goes to the last row read")

	_, ok = c.Lookup("ZERO")
	assert.False(t, ok)
	fetcher.AssertExpectations(t)
}

func TestLoad_AttachesMetadataAndBalances(t *testing.T) {
	balances, err := catalog.ParseBalances(map[string]string{"eth": "2.5", "BLUR": "125.5"})
	require.NoError(t, err)

	fetcher := catalog.FetcherFunc(func(context.Context) ([]domain.Quote, error) {
		return []domain.Quote{
			{Symbol: "ETH", Price: decimal.NewFromInt(2500), Timestamp: t0, DisplayName: "Ether"},
			quote("USDC", "1", t0),
		}, nil
	})
	c := catalog.New(fetcher, catalog.Options{
		Balances:     balances,
		IconTemplate: "https://icons.example/{symbol}.svg",
	})
	_, err = c.Load(context.Background())
	require.NoError(t, err)

	eth, _ := c.Lookup("ETH")
	assert.Equal(t, "Ether", eth.DisplayName)
	assert.Equal(t, "https://icons.example/ETH.svg", eth.IconRef)
	require.True(t, eth.HasBalance())
	assert.Equal(t, "2.5", eth.Balance.String())

	usdc, _ := c.Lookup("USDC")
	assert.Equal(t, "USDC", usdc.DisplayName)
	assert.False(t, usdc.HasBalance())

	assert.Equal(t, []string{"ETH"}, symbols(c.Holdings()))
	assert.Equal(t, []string{"USDC"}, symbols(c.Targets("eth")))
}

func TestLoad_FailureKeepsPreviousCollection(t *testing.T) {
	bus := infraeventbus.NewWithMemory(nil)
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return([]domain.Quote{quote("ETH", "2500", t0)}, nil).Once()
	fetcher.On("Fetch", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	c := catalog.New(fetcher, catalog.Options{Bus: bus})
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	err = c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, []string{"ETH"}, symbols(c.Assets()))

	published := bus.Published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventTypeCatalogLoaded.String(), published[0].Type())
	assert.Equal(t, events.EventTypeCatalogFailed.String(), published[1].Type())
}

func TestLoad_Timeout(t *testing.T) {
	fetcher := catalog.FetcherFunc(func(ctx context.Context) ([]domain.Quote, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := catalog.New(fetcher, catalog.Options{Timeout: 20 * time.Millisecond})

	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.False(t, c.Loaded())
	assert.Empty(t, c.Assets())
}

func TestLoad_TimeoutWhenFetcherIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	fetcher := catalog.FetcherFunc(func(context.Context) ([]domain.Quote, error) {
		<-release
		return nil, nil
	})
	c := catalog.New(fetcher, catalog.Options{Timeout: 20 * time.Millisecond})

	_, err := c.Load(context.Background())
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
}

func TestLoad_CollapsesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := catalog.FetcherFunc(func(context.Context) ([]domain.Quote, error) {
		calls.Add(1)
		<-release
		return []domain.Quote{quote("ETH", "2500", t0)}, nil
	})
	c := catalog.New(fetcher, catalog.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assets, err := c.Load(context.Background())
			assert.NoError(t, err)
			assert.Len(t, assets, 1)
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRefresh_IsAtomic(t *testing.T) {
	var round atomic.Int32
	fetcher := catalog.FetcherFunc(func(context.Context) ([]domain.Quote, error) {
		price := "1"
		if round.Add(1)%2 == 0 {
			price = "2"
		}
		return []domain.Quote{
			quote("AAA", price, t0),
			quote("BBB", price, t0),
			quote("CCC", price, t0),
		}, nil
	})
	c := catalog.New(fetcher, catalog.Options{})
	require.NoError(t, c.Refresh(context.Background()))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			assets := c.Assets()
			if !assert.Len(t, assets, 3) {
				return
			}
			for _, a := range assets[1:] {
				assert.True(t, a.UnitPrice.Equal(assets[0].UnitPrice), "mixed collection observed")
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, c.Refresh(context.Background()))
	}
	close(stop)
	wg.Wait()
}

func TestParseBalances(t *testing.T) {
	_, err := catalog.ParseBalances(map[string]string{"ETH": "abc"})
	assert.Error(t, err)

	_, err = catalog.ParseBalances(map[string]string{"ETH": "-1"})
	assert.Error(t, err)

	b, err := catalog.ParseBalances(map[string]string{"bNEO": "45.25"})
	require.NoError(t, err)
	got, ok := b.Lookup("bneo")
	require.True(t, ok)
	assert.Equal(t, "45.25", got.String())
}
