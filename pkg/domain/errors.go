package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind classifies every failure the conversion flow can surface.
type Kind string

const (
	KindMalformedNumber     Kind = "MalformedNumber"
	KindNonPositiveAmount   Kind = "NonPositiveAmount"
	KindInsufficientBalance Kind = "InsufficientBalance"
	KindSameAsset           Kind = "SameAssetError"
	KindAlreadySubmitting   Kind = "AlreadySubmittingError"
	KindFetch               Kind = "FetchError"
	KindSubmitFailure       Kind = "SubmitFailure"
	KindTimeout             Kind = "Timeout"
	KindAssetNotFound       Kind = "AssetNotFound"
	KindNotReady            Kind = "NotReady"
	KindAmountRequired      Kind = "AmountRequired"
)

// IsValidation reports whether the kind is produced by amount validation.
func (k Kind) IsValidation() bool {
	switch k {
	case KindMalformedNumber, KindNonPositiveAmount, KindInsufficientBalance:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is checks. Any *Error matches the sentinel of its kind.
var (
	ErrMalformedNumber     = &Error{Kind: KindMalformedNumber, Message: "amount is not a valid number"}
	ErrNonPositiveAmount   = &Error{Kind: KindNonPositiveAmount, Message: "amount must be greater than zero"}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance, Message: "insufficient balance"}
	ErrSameAsset           = &Error{Kind: KindSameAsset, Message: "cannot swap the same asset"}
	ErrAlreadySubmitting   = &Error{Kind: KindAlreadySubmitting, Message: "a submission is already in progress"}
	ErrFetch               = &Error{Kind: KindFetch, Message: "failed to load assets"}
	ErrSubmitFailure       = &Error{Kind: KindSubmitFailure, Message: "swap failed"}
	ErrTimeout             = &Error{Kind: KindTimeout, Message: "operation timed out"}
	ErrAssetNotFound       = &Error{Kind: KindAssetNotFound, Message: "asset not found"}
	ErrNotReady            = &Error{Kind: KindNotReady, Message: "session is not ready"}
	ErrAmountRequired      = &Error{Kind: KindAmountRequired, Message: "please enter a valid amount"}
)

// Error is a classified failure. Max is only set for InsufficientBalance and
// carries the largest usable amount.
type Error struct {
	Kind    Kind             `json:"kind"`
	Message string           `json:"message"`
	Max     *decimal.Decimal `json:"max,omitempty"`
	Err     error            `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a classified error with a custom message.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError returns err as *Error, wrapping unclassified errors with fallback.
func AsError(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: fallback, Message: err.Error(), Err: err}
}
