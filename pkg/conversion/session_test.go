package conversion

import (
	"context"
	"testing"

	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/submission"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExecutor struct {
	calls int
}

func (c *countingExecutor) Execute(context.Context, submission.Request) (submission.Receipt, error) {
	c.calls++
	return submission.Receipt{TransactionID: "0x0"}, nil
}

func TestSubmit_SameAssetFailsWithoutTransition(t *testing.T) {
	fetcher := catalog.FetcherFunc(func(context.Context) ([]domain.Quote, error) {
		return []domain.Quote{
			{Symbol: "ETH", Price: decimal.NewFromInt(2500)},
			{Symbol: "USDT", Price: decimal.NewFromInt(1)},
		}, nil
	})
	exec := &countingExecutor{}
	ctrl := submission.New(exec, submission.Options{})
	e := New(catalog.New(fetcher, catalog.Options{}), ctrl, Options{})
	defer e.Close()

	ctx := context.Background()
	require.NoError(t, e.Start(ctx))
	require.NoError(t, e.SetSourceAmountText(ctx, "1"))

	e.mu.Lock()
	eth := *e.s.source
	e.s.target = &eth
	e.mu.Unlock()
	before := e.Snapshot()

	err := e.Submit(ctx)
	assert.ErrorIs(t, err, domain.ErrSameAsset)
	assert.Equal(t, PhaseReady, e.Snapshot().Phase)
	assert.Equal(t, before, e.Snapshot())
	assert.Zero(t, exec.calls)
	assert.False(t, ctrl.InFlight(), "the submission slot is released")
}

func TestRecompute_KeepsTargetConsistent(t *testing.T) {
	eth := domain.Asset{Symbol: "ETH", UnitPrice: decimal.NewFromInt(2500)}
	usdt := domain.Asset{Symbol: "USDT", UnitPrice: decimal.NewFromInt(1)}

	tests := []struct {
		name       string
		s          session
		wantTarget string
		wantKind   domain.Kind
	}{
		{"valid", session{source: &eth, target: &usdt, sourceText: "12.5"}, "31250.0000", ""},
		{"missing target", session{source: &eth, sourceText: "12.5"}, "", ""},
		{"malformed", session{source: &eth, target: &usdt, sourceText: "1e5"}, "", domain.KindMalformedNumber},
		{"stale validation error cleared", session{source: &eth, target: &usdt, sourceText: "1", err: domain.ErrMalformedNumber}, "2500.0000", ""},
		{"submit failure kept", session{source: &eth, target: &usdt, sourceText: "1", err: domain.ErrSubmitFailure}, "2500.0000", domain.KindSubmitFailure},
		{"empty", session{source: &eth, target: &usdt, targetText: "1.0000", err: domain.ErrNonPositiveAmount}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.s
			s.recompute()
			assert.Equal(t, tt.wantTarget, s.targetText)
			if tt.wantKind == "" {
				assert.Nil(t, s.err)
				return
			}
			require.NotNil(t, s.err)
			assert.Equal(t, tt.wantKind, s.err.Kind)
			if s.err.Kind.IsValidation() {
				assert.Empty(t, s.targetText)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("From")
	require.NoError(t, err)
	assert.Equal(t, RoleSource, r)

	r, err = ParseRole("target")
	require.NoError(t, err)
	assert.Equal(t, RoleTarget, r)

	_, err = ParseRole("middle")
	assert.Error(t, err)
}
