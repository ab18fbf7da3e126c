package conversion

import (
	"fmt"
	"strings"

	"github.com/amirasaad/tokenswap/pkg/amount"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/rate"
	"github.com/amirasaad/tokenswap/pkg/submission"
	"github.com/shopspring/decimal"
)

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseIdle           Phase = "Idle"
	PhaseCatalogLoading Phase = "CatalogLoading"
	PhaseReady          Phase = "Ready"
	PhaseSwapping       Phase = "Swapping"
	PhaseSubmitting     Phase = "Submitting"
)

// Role names one of the two asset slots.
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

// ParseRole accepts "source"/"from" and "target"/"to", case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source", "from":
		return RoleSource, nil
	case "target", "to":
		return RoleTarget, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// session is the mutable aggregate. Only the engine worker writes it.
type session struct {
	source      *domain.Asset
	target      *domain.Asset
	sourceText  string
	targetText  string
	err         *domain.Error
	catalogErr  *domain.Error
	phase       Phase
	lastReceipt *submission.Receipt
}

// ErrorView is the rendered form of a session error.
type ErrorView struct {
	Kind    domain.Kind      `json:"kind"`
	Message string           `json:"message"`
	Max     *decimal.Decimal `json:"max,omitempty"`
}

func viewOf(err *domain.Error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{Kind: err.Kind, Message: err.Error(), Max: err.Max}
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	Version      uint64              `json:"version"`
	Phase        Phase               `json:"phase"`
	Source       *domain.Asset       `json:"source,omitempty"`
	Target       *domain.Asset       `json:"target,omitempty"`
	SourceText   string              `json:"source_text"`
	TargetText   string              `json:"target_text"`
	Rate         *decimal.Decimal    `json:"rate,omitempty"`
	Error        *ErrorView          `json:"error,omitempty"`
	CatalogError *ErrorView          `json:"catalog_error,omitempty"`
	Receipt      *submission.Receipt `json:"receipt,omitempty"`
}

func (s *session) snapshot(version uint64) Snapshot {
	snap := Snapshot{
		Version:      version,
		Phase:        s.phase,
		SourceText:   s.sourceText,
		TargetText:   s.targetText,
		Error:        viewOf(s.err),
		CatalogError: viewOf(s.catalogErr),
	}
	if s.source != nil {
		a := *s.source
		snap.Source = &a
	}
	if s.target != nil {
		a := *s.target
		snap.Target = &a
	}
	if r, ok := s.rate(); ok {
		snap.Rate = &r
	}
	if s.lastReceipt != nil {
		r := *s.lastReceipt
		snap.Receipt = &r
	}
	return snap
}

func (s *session) rate() (decimal.Decimal, bool) {
	if s.source == nil || s.target == nil {
		return decimal.Decimal{}, false
	}
	return rate.Rate(*s.source, *s.target), true
}

// recompute re-validates the source text and derives the target text. It runs
// after every mutation that touches the text or either asset.
func (s *session) recompute() {
	s.targetText = ""
	if s.err != nil && s.err.Kind.IsValidation() {
		s.err = nil
	}

	var res amount.Result
	if s.source != nil {
		res = amount.ValidateFor(s.sourceText, *s.source)
	} else {
		res = amount.Validate(s.sourceText, nil, "")
	}
	if !res.Accepted {
		s.err = res.Err
		return
	}
	if res.Empty {
		return
	}
	if r, ok := s.rate(); ok {
		s.targetText = rate.Format(rate.Convert(res.Amount, r))
	}
}

// sameAssets reports whether both slots hold the same symbol.
func (s *session) sameAssets() bool {
	return s.source != nil && s.target != nil && s.source.SameSymbol(*s.target)
}
