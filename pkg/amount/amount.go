// Package amount validates the raw text a user types as a source amount.
package amount

import (
	"fmt"
	"regexp"

	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/shopspring/decimal"
)

var (
	numeral = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
	partial = regexp.MustCompile(`^\d*\.?\d*$`)
)

// Result is the outcome of validating one text.
// Accepted with a zero Amount and Empty set means "no amount".
type Result struct {
	Accepted bool
	Empty    bool
	Amount   decimal.Decimal
	Err      *domain.Error
}

// Validate checks text against the numeral grammar, positivity, and the
// optional balance. symbol is only used in the InsufficientBalance message.
func Validate(text string, balance *decimal.Decimal, symbol string) Result {
	if text == "" {
		return Result{Accepted: true, Empty: true}
	}
	if !numeral.MatchString(text) {
		return Result{Err: domain.ErrMalformedNumber}
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return Result{Err: domain.NewError(domain.KindMalformedNumber, domain.ErrMalformedNumber.Message, err)}
	}
	if !value.IsPositive() {
		return Result{Err: domain.ErrNonPositiveAmount}
	}
	if balance != nil && value.GreaterThan(*balance) {
		limit := *balance
		return Result{Err: &domain.Error{
			Kind:    domain.KindInsufficientBalance,
			Message: fmt.Sprintf("insufficient balance. Maximum: %s %s", limit.String(), symbol),
			Max:     &limit,
		}}
	}
	return Result{Accepted: true, Amount: value}
}

// ValidateFor validates text against the balance held in asset.
func ValidateFor(text string, asset domain.Asset) Result {
	return Validate(text, asset.Balance, asset.Symbol)
}

// IsPartial reports whether text could still become a valid numeral, such as
// "" or "12." while typing.
func IsPartial(text string) bool {
	return partial.MatchString(text)
}
