// Package submission drives a conversion request through the execution
// service and guarantees that at most one request is in flight.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds an execution call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Request is one conversion handed to the execution service.
type Request struct {
	ID     uuid.UUID       `json:"id"`
	Source string          `json:"source"`
	Target string          `json:"target"`
	Amount decimal.Decimal `json:"amount"`
}

// NewRequest builds a request with a fresh ID.
func NewRequest(source, target string, amount decimal.Decimal) Request {
	return Request{ID: uuid.New(), Source: source, Target: target, Amount: amount}
}

// Receipt is returned by the execution service on success.
type Receipt struct {
	RequestID     uuid.UUID `json:"request_id"`
	TransactionID string    `json:"transaction_id"`
	SettledAt     time.Time `json:"settled_at"`
}

// Executor is the execution service port.
type Executor interface {
	Execute(ctx context.Context, req Request) (Receipt, error)
}

// Options configures a Controller.
type Options struct {
	Timeout time.Duration
	Bus     eventbus.Bus
	Logger  *slog.Logger
}

// Controller runs submissions one at a time.
type Controller struct {
	executor Executor
	timeout  time.Duration
	bus      eventbus.Bus
	logger   *slog.Logger
	inFlight atomic.Bool
}

// New creates a Controller around executor.
func New(executor Executor, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.Nop{}
	}
	return &Controller{
		executor: executor,
		timeout:  opts.Timeout,
		bus:      opts.Bus,
		logger:   opts.Logger.With("component", "submission"),
	}
}

// Acquire reserves the submission slot. It fails with AlreadySubmittingError
// while another submission is pending or running.
func (c *Controller) Acquire() error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return domain.ErrAlreadySubmitting
	}
	return nil
}

// Release frees the slot taken by Acquire.
func (c *Controller) Release() {
	c.inFlight.Store(false)
}

// InFlight reports whether the slot is taken.
func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Submit acquires the slot, executes req and releases the slot.
func (c *Controller) Submit(ctx context.Context, req Request) (Receipt, error) {
	if err := c.Acquire(); err != nil {
		return Receipt{}, err
	}
	defer c.Release()
	return c.Execute(ctx, req)
}

// Execute calls the execution service with a bounded deadline. The caller
// must hold the slot. Failures are *domain.Error of kind SubmitFailure or
// Timeout.
func (c *Controller) Execute(ctx context.Context, req Request) (Receipt, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	log := c.logger.With(
		"request_id", req.ID,
		"source", req.Source,
		"target", req.Target,
		"amount", req.Amount.String(),
	)
	c.emit(events.NewConversionSubmitted(req.ID, req.Source, req.Target, req.Amount))
	log.Info("submitting conversion")

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		receipt Receipt
		err     error
	}
	done := make(chan result, 1)
	go func() {
		receipt, err := c.executor.Execute(callCtx, req)
		done <- result{receipt, err}
	}()

	var res result
	select {
	case res = <-done:
		if res.err == nil && callCtx.Err() != nil {
			res.err = callCtx.Err()
		}
	case <-callCtx.Done():
		res.err = callCtx.Err()
	}

	if res.err == nil && res.receipt.TransactionID == "" {
		res.err = errors.New("execution service returned no transaction id")
	}
	if res.err != nil {
		derr := classify(res.err)
		log.Warn("conversion failed", "kind", derr.Kind, "error", res.err)
		c.emit(events.NewConversionFailed(req.ID, req.Source, req.Target, req.Amount, string(derr.Kind), res.err.Error()))
		return Receipt{}, derr
	}

	receipt := res.receipt
	receipt.RequestID = req.ID
	if receipt.SettledAt.IsZero() {
		receipt.SettledAt = time.Now().UTC()
	}
	log.Info("conversion settled", "transaction_id", receipt.TransactionID)
	c.emit(events.NewConversionSettled(req.ID, req.Source, req.Target, req.Amount, receipt.TransactionID))
	return receipt, nil
}

func (c *Controller) emit(event events.Event) {
	if err := c.bus.Emit(context.Background(), event); err != nil {
		c.logger.Warn("failed to publish submission event", "type", event.Type(), "error", err)
	}
}

func classify(err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) && (derr.Kind == domain.KindSubmitFailure || derr.Kind == domain.KindTimeout) {
		return derr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindTimeout, "swap timed out", err)
	}
	return domain.NewError(domain.KindSubmitFailure, "swap failed", err)
}
