package amount_test

import (
	"testing"

	"github.com/amirasaad/tokenswap/pkg/amount"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		balance *decimal.Decimal
		want    string
		kind    domain.Kind
	}{
		{"integer", "12", nil, "12", ""},
		{"fraction", "12.5", nil, "12.5", ""},
		{"trailing dot", "12.", nil, "12", ""},
		{"leading dot", ".5", nil, "0.5", ""},
		{"within balance", "2.5", dec("2.5"), "2.5", ""},
		{"lone dot", ".", nil, "", domain.KindMalformedNumber},
		{"letters", "1a", nil, "", domain.KindMalformedNumber},
		{"negative", "-1", nil, "", domain.KindMalformedNumber},
		{"two dots", "1.2.3", nil, "", domain.KindMalformedNumber},
		{"spaces", " 1", nil, "", domain.KindMalformedNumber},
		{"zero", "0", nil, "", domain.KindNonPositiveAmount},
		{"zero fraction", "0.000", nil, "", domain.KindNonPositiveAmount},
		{"over balance", "3", dec("2.5"), "", domain.KindInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := amount.Validate(tt.text, tt.balance, "ETH")
			if tt.kind != "" {
				require.NotNil(t, res.Err)
				assert.False(t, res.Accepted)
				assert.Equal(t, tt.kind, res.Err.Kind)
				return
			}
			require.Nil(t, res.Err)
			assert.True(t, res.Accepted)
			assert.True(t, res.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", res.Amount)
		})
	}
}

func TestValidate_Empty(t *testing.T) {
	res := amount.Validate("", dec("1"), "ETH")
	assert.True(t, res.Accepted)
	assert.True(t, res.Empty)
	assert.Nil(t, res.Err)
}

func TestValidate_InsufficientBalancePayload(t *testing.T) {
	res := amount.ValidateFor("200", domain.Asset{Symbol: "BLUR", Balance: dec("125.5")})

	require.NotNil(t, res.Err)
	assert.ErrorIs(t, res.Err, domain.ErrInsufficientBalance)
	require.NotNil(t, res.Err.Max)
	assert.Equal(t, "125.5", res.Err.Max.String())
	assert.Equal(t, "insufficient balance. Maximum: 125.5 BLUR", res.Err.Message)
}

func TestIsPartial(t *testing.T) {
	for _, s := range []string{"", ".", "1.", "0.25", ".5"} {
		assert.True(t, amount.IsPartial(s), s)
	}
	for _, s := range []string{"a", "1..", "-", "1,5", "1.2.3"} {
		assert.False(t, amount.IsPartial(s), s)
	}
}
