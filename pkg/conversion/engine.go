// Package conversion implements the conversion state engine: it owns one
// session and applies user intents to it in request order.
package conversion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/tokenswap/pkg/amount"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
	"github.com/amirasaad/tokenswap/pkg/submission"
)

// ErrClosed is returned for intents issued after Close.
var ErrClosed = errors.New("conversion engine closed")

const (
	// DefaultCallTimeout bounds every suspension point of the engine.
	DefaultCallTimeout = 30 * time.Second
	defaultQueueSize   = 64
)

// Directory is the asset directory the engine selects from.
type Directory interface {
	Load(ctx context.Context) ([]domain.Asset, error)
	Lookup(symbol string) (domain.Asset, bool)
}

// Submitter runs submissions and owns the single in-flight slot.
type Submitter interface {
	Acquire() error
	Release()
	Execute(ctx context.Context, req submission.Request) (submission.Receipt, error)
}

// Confirmer models the external confirmation step of a swap.
type Confirmer interface {
	Confirm(ctx context.Context) error
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context) error

// Confirm calls f(ctx).
func (f ConfirmerFunc) Confirm(ctx context.Context) error {
	return f(ctx)
}

// DelayConfirmer confirms after a fixed delay.
type DelayConfirmer struct {
	Delay time.Duration
}

// Confirm waits for the delay or the context, whichever ends first.
func (d DelayConfirmer) Confirm(ctx context.Context) error {
	if d.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures an Engine.
type Options struct {
	// DefaultSource and DefaultTarget are preferred on first load. When
	// missing from the catalog the first two assets are used.
	DefaultSource string
	DefaultTarget string
	Confirmer     Confirmer
	CallTimeout   time.Duration
	QueueSize     int
	Bus           eventbus.Bus
	Logger        *slog.Logger
}

type intent struct {
	name   string
	ctx    context.Context
	run    func(ctx context.Context) error
	result chan error
	// drop runs instead of run when the engine closes with the intent queued.
	drop func()
}

// Engine owns one conversion session. Intents are applied by a single worker
// goroutine in the order they were issued; Snapshot never waits on it.
type Engine struct {
	directory Directory
	submitter Submitter
	confirmer Confirmer
	opts      Options
	bus       eventbus.Bus
	logger    *slog.Logger

	mu      sync.RWMutex
	s       session
	version uint64

	subsMu sync.Mutex
	subs   map[chan Snapshot]struct{}

	intents   chan intent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New creates an engine and starts its worker. Call Close to stop it.
func New(directory Directory, submitter Submitter, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Confirmer == nil {
		opts.Confirmer = DelayConfirmer{}
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.Nop{}
	}
	e := &Engine{
		directory: directory,
		submitter: submitter,
		confirmer: opts.Confirmer,
		opts:      opts,
		bus:       opts.Bus,
		logger:    opts.Logger.With("component", "conversion-engine"),
		s:         session{phase: PhaseIdle},
		subs:      make(map[chan Snapshot]struct{}),
		intents:   make(chan intent, opts.QueueSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer close(e.stopped)
	for {
		select {
		case <-e.done:
			return
		default:
		}
		select {
		case <-e.done:
			return
		case in := <-e.intents:
			err := in.run(in.ctx)
			e.logger.Debug("intent applied", "intent", in.name, "error", err)
			in.result <- err
		}
	}
}

// do queues fn and waits for its result.
func (e *Engine) do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	in, err := e.enqueue(ctx, name, fn, nil)
	if err != nil {
		return err
	}
	return e.wait(ctx, in)
}

// enqueue hands fn to the worker. The intent is detached from the caller's
// cancellation once queued, so a caller that gives up does not abort work
// already ordered behind other intents.
func (e *Engine) enqueue(ctx context.Context, name string, fn func(ctx context.Context) error, drop func()) (intent, error) {
	in := intent{
		name:   name,
		ctx:    context.WithoutCancel(ctx),
		run:    fn,
		result: make(chan error, 1),
		drop:   drop,
	}
	select {
	case <-e.done:
		return in, ErrClosed
	default:
	}
	select {
	case e.intents <- in:
		return in, nil
	case <-e.done:
		return in, ErrClosed
	case <-ctx.Done():
		return in, ctx.Err()
	}
}

func (e *Engine) wait(ctx context.Context, in intent) error {
	select {
	case err := <-in.result:
		return err
	case <-e.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// update applies fn under the write lock and publishes the new snapshot.
func (e *Engine) update(fn func(s *session)) Snapshot {
	e.mu.Lock()
	fn(&e.s)
	e.version++
	snap := e.s.snapshot(e.version)
	e.mu.Unlock()
	e.publish(snap)
	return snap
}

func (e *Engine) read(fn func(s *session)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(&e.s)
}

// ---- Catalog ----

// Start loads the catalog on first use. It is a no-op once the session has
// left Idle.
func (e *Engine) Start(ctx context.Context) error {
	return e.do(ctx, "start", func(ctx context.Context) error {
		var idle bool
		e.read(func(s *session) { idle = s.phase == PhaseIdle })
		if !idle {
			return nil
		}
		return e.loadCatalog(ctx)
	})
}

// LoadCatalog fetches the catalog and selects default assets when none are
// selected yet.
func (e *Engine) LoadCatalog(ctx context.Context) error {
	return e.do(ctx, "load_catalog", e.loadCatalog)
}

// ReloadCatalog refetches the catalog, retrying after a FetchError or picking
// up new prices. Selected assets are re-resolved by symbol.
func (e *Engine) ReloadCatalog(ctx context.Context) error {
	return e.do(ctx, "reload_catalog", e.loadCatalog)
}

// Only the first load passes through CatalogLoading; reloads keep the
// session Ready so a pending validation error stays consistent with its phase.
func (e *Engine) loadCatalog(ctx context.Context) error {
	e.update(func(s *session) {
		if s.phase == PhaseIdle {
			s.phase = PhaseCatalogLoading
		}
	})

	callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
	defer cancel()
	assets, err := e.directory.Load(callCtx)
	if err != nil {
		derr := domain.AsError(err, domain.KindFetch)
		if derr.Kind != domain.KindTimeout && errors.Is(err, context.DeadlineExceeded) {
			derr = domain.NewError(domain.KindTimeout, "catalog fetch timed out", err)
		}
		e.logger.Error("catalog load failed", "kind", derr.Kind, "error", err)
		e.update(func(s *session) {
			s.catalogErr = derr
			s.phase = PhaseReady
		})
		return derr
	}

	e.update(func(s *session) {
		s.catalogErr = nil
		if s.source == nil && s.target == nil {
			e.selectDefaults(s, assets)
		} else {
			s.source = e.resolve(s.source)
			s.target = e.resolve(s.target)
		}
		s.phase = PhaseReady
		s.recompute()
	})
	e.logger.Info("catalog ready", "assets", len(assets))
	return nil
}

func (e *Engine) selectDefaults(s *session, assets []domain.Asset) {
	if len(assets) == 0 {
		return
	}
	if a, ok := e.directory.Lookup(e.opts.DefaultSource); ok && e.opts.DefaultSource != "" {
		s.source = &a
	} else {
		a := assets[0]
		s.source = &a
	}
	if a, ok := e.directory.Lookup(e.opts.DefaultTarget); ok && e.opts.DefaultTarget != "" && !a.SameSymbol(*s.source) {
		s.target = &a
		return
	}
	for _, a := range assets {
		if !a.SameSymbol(*s.source) {
			s.target = &a
			return
		}
	}
}

func (e *Engine) resolve(current *domain.Asset) *domain.Asset {
	if current == nil {
		return nil
	}
	a, ok := e.directory.Lookup(current.Symbol)
	if !ok {
		return nil
	}
	return &a
}

// ---- Intents ----

// SelectAsset puts the asset named by symbol into the given slot. When the
// opposite slot holds the same symbol it is cleared, so both slots never
// hold the same asset.
func (e *Engine) SelectAsset(ctx context.Context, symbol string, role Role) error {
	return e.do(ctx, "select_asset", func(context.Context) error {
		asset, ok := e.directory.Lookup(symbol)
		if !ok {
			return domain.NewError(domain.KindAssetNotFound, "asset not found: "+symbol, nil)
		}
		e.update(func(s *session) {
			s.err = nil
			switch role {
			case RoleTarget:
				s.target = &asset
				if s.source != nil && s.source.SameSymbol(asset) {
					s.source = nil
				}
			default:
				s.source = &asset
				if s.target != nil && s.target.SameSymbol(asset) {
					s.target = nil
				}
			}
			s.recompute()
		})
		return nil
	})
}

// SetSourceAmountText stores the raw text and derives the target amount.
// A rejected text is recorded on the session and also returned.
func (e *Engine) SetSourceAmountText(ctx context.Context, text string) error {
	return e.do(ctx, "set_amount", func(context.Context) error {
		var rejected *domain.Error
		e.update(func(s *session) {
			s.sourceText = text
			s.err = nil
			s.recompute()
			rejected = s.err
		})
		if rejected != nil {
			return rejected
		}
		return nil
	})
}

// Swap exchanges source and target after the confirmation step. The previous
// target text becomes the source text. Without both assets it is a no-op.
// A failed confirmation leaves the session as it was.
func (e *Engine) Swap(ctx context.Context) error {
	return e.do(ctx, "swap", func(ctx context.Context) error {
		var ready bool
		e.read(func(s *session) { ready = s.source != nil && s.target != nil })
		if !ready {
			return nil
		}

		e.update(func(s *session) { s.phase = PhaseSwapping })

		callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
		defer cancel()
		if err := e.confirmer.Confirm(callCtx); err != nil {
			e.update(func(s *session) { s.phase = PhaseReady })
			if errors.Is(err, context.DeadlineExceeded) {
				return domain.NewError(domain.KindTimeout, "swap confirmation timed out", err)
			}
			if domain.KindOf(err) != "" {
				return err
			}
			return domain.NewError(domain.KindNotReady, "swap was not confirmed", err)
		}

		snap := e.update(func(s *session) {
			s.source, s.target = s.target, s.source
			s.sourceText = s.targetText
			if s.err != nil && !s.err.Kind.IsValidation() {
				s.err = nil
			}
			s.recompute()
			s.phase = PhaseReady
		})
		e.emit(events.NewAssetsSwapped(snap.Source.Symbol, snap.Target.Symbol))
		return nil
	})
}

// Submit hands the current amount to the execution service. A second call
// while one is pending or running fails with AlreadySubmittingError without
// touching the session.
func (e *Engine) Submit(ctx context.Context) error {
	if err := e.submitter.Acquire(); err != nil {
		return err
	}
	in, err := e.enqueue(ctx, "submit", func(ctx context.Context) error {
		defer e.submitter.Release()
		return e.submit(ctx)
	}, e.submitter.Release)
	if err != nil {
		e.submitter.Release()
		return err
	}
	return e.wait(ctx, in)
}

func (e *Engine) submit(ctx context.Context) error {
	var (
		req     submission.Request
		precond error
	)
	e.read(func(s *session) {
		switch {
		case s.phase != PhaseReady:
			precond = domain.ErrNotReady
		case s.source == nil || s.target == nil:
			precond = domain.NewError(domain.KindNotReady, "select both assets", nil)
		case s.sameAssets():
			precond = domain.ErrSameAsset
		case s.sourceText == "":
			precond = domain.ErrAmountRequired
		case s.err != nil && s.err.Kind.IsValidation():
			precond = s.err
		default:
			res := amount.ValidateFor(s.sourceText, *s.source)
			if !res.Accepted || res.Empty {
				precond = domain.ErrAmountRequired
				return
			}
			req = submission.NewRequest(s.source.Symbol, s.target.Symbol, res.Amount)
		}
	})
	if precond != nil {
		return precond
	}

	e.update(func(s *session) {
		s.phase = PhaseSubmitting
		s.err = nil
	})

	callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
	defer cancel()
	receipt, err := e.submitter.Execute(callCtx, req)
	if err != nil {
		derr := domain.AsError(err, domain.KindSubmitFailure)
		if derr.Kind != domain.KindTimeout && errors.Is(err, context.DeadlineExceeded) {
			derr = domain.NewError(domain.KindTimeout, "swap timed out", err)
		}
		e.update(func(s *session) {
			s.err = derr
			s.phase = PhaseReady
		})
		return derr
	}

	e.update(func(s *session) {
		s.sourceText = ""
		s.err = nil
		s.lastReceipt = &receipt
		s.recompute()
		s.phase = PhaseReady
	})
	return nil
}

// Reset clears amounts, errors and the last receipt. Selections and the
// catalog error are kept.
func (e *Engine) Reset(ctx context.Context) error {
	return e.do(ctx, "reset", func(context.Context) error {
		e.update(func(s *session) {
			s.sourceText = ""
			s.err = nil
			s.lastReceipt = nil
			s.recompute()
		})
		return nil
	})
}

// ---- Observation ----

// Snapshot returns a copy of the current session.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s.snapshot(e.version)
}

// Subscribe returns a channel receiving the latest snapshot after every
// transition. Slow readers skip intermediate snapshots. Call the returned
// function to unsubscribe.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	e.subsMu.Lock()
	e.subs[ch] = struct{}{}
	e.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subsMu.Lock()
			if _, ok := e.subs[ch]; ok {
				delete(e.subs, ch)
				close(ch)
			}
			e.subsMu.Unlock()
		})
	}
}

func (e *Engine) publish(snap Snapshot) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (e *Engine) emit(event events.Event) {
	if err := e.bus.Emit(context.Background(), event); err != nil {
		e.logger.Warn("failed to publish event", "type", event.Type(), "error", err)
	}
}

// Close stops the worker and closes subscriber channels. Queued intents
// fail with ErrClosed and a queued submission gives its slot back.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.done)
		<-e.stopped
		e.drain()
		e.subsMu.Lock()
		for ch := range e.subs {
			delete(e.subs, ch)
			close(ch)
		}
		e.subsMu.Unlock()
	})
	return nil
}

func (e *Engine) drain() {
	for {
		select {
		case in := <-e.intents:
			if in.drop != nil {
				in.drop()
			}
			in.result <- ErrClosed
		default:
			return
		}
	}
}
