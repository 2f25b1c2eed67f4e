package usecase

import (
	"context"
	"sync"
	"time"

	domrepo "SentinelConsole/internal/domain/repository"
	applogger "SentinelConsole/pkg/logger"

	"github.com/benbjohnson/clock"
)

type pollerConfig struct {
	clock   clock.Clock
	metrics domrepo.Metrics
	log     *applogger.Logger
	after   func(gen uint64)
}

// PollerOption configures a Poller.
type PollerOption func(*pollerConfig)

// WithPollerClock replaces the wall clock, mainly for tests.
func WithPollerClock(clk clock.Clock) PollerOption {
	return func(c *pollerConfig) { c.clock = clk }
}

// WithPollerMetrics sets the recorder for applied and stale cycles.
func WithPollerMetrics(m domrepo.Metrics) PollerOption {
	return func(c *pollerConfig) { c.metrics = m }
}

// WithPollerLogger sets the logger.
func WithPollerLogger(l *applogger.Logger) PollerOption {
	return func(c *pollerConfig) { c.log = l }
}

// WithAfterApply runs fn outside the poller lock after each applied cycle.
// Calls never overlap, and a cycle superseded before its turn is skipped, so
// fn sees generations in increasing order.
func WithAfterApply(fn func(gen uint64)) PollerOption {
	return func(c *pollerConfig) { c.after = fn }
}

// Poller re-runs fetch on a fixed interval and applies each result as a whole.
//
// Every cycle gets a generation number. A completion is applied only when its
// generation is still the newest one issued, so a slow response can never
// overwrite a fresher one. Stop invalidates the current generation, so work that
// completes after Stop is dropped. Timer ticks are skipped while the newest
// cycle is still outstanding; Trigger always starts a new cycle.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) T
	apply    func(gen uint64, v T)
	cfg      pollerConfig

	mu      sync.Mutex
	issued  uint64
	applied uint64
	pending bool
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	afterMu sync.Mutex
}

// NewPoller creates a stopped poller. apply runs under the poller lock and must not call back into it.
func NewPoller[T any](name string, interval time.Duration, fetch func(ctx context.Context) T, apply func(gen uint64, v T), opts ...PollerOption) *Poller[T] {
	cfg := pollerConfig{clock: clock.New(), log: applogger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		cfg:      cfg,
	}
}

// Start issues the first cycle immediately and then one per interval. It is a no-op when running.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.runCtx, p.cancel = context.WithCancel(ctx)
	runCtx := p.runCtx
	gen := p.issueLocked()
	ticker := p.cfg.clock.Ticker(p.interval)
	p.wg.Add(1)
	p.mu.Unlock()

	p.cfg.log.Debug("poller: started",
		applogger.String("source", p.name),
		applogger.Duration("interval_ms", p.interval),
	)
	go p.run(runCtx, gen)
	go p.loop(runCtx, ticker)
}

// Stop cancels the timer and in-flight fetches. Results that arrive later are discarded.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.pending = false
	p.issued++ // invalidates everything in flight
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	p.cfg.log.Debug("poller: stopped", applogger.String("source", p.name))
}

// Trigger starts a new cycle now, superseding any cycle in flight.
func (p *Poller[T]) Trigger() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	gen := p.issueLocked()
	ctx := p.runCtx
	p.mu.Unlock()

	go p.run(ctx, gen)
}

// Running reports whether the poller is mounted.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Applied returns the generation of the state currently shown.
func (p *Poller[T]) Applied() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

func (p *Poller[T]) loop(ctx context.Context, ticker *clock.Ticker) {
	defer p.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller[T]) tick(ctx context.Context) {
	p.mu.Lock()
	if !p.running || p.pending {
		p.mu.Unlock()
		return
	}
	gen := p.issueLocked()
	p.mu.Unlock()

	go p.run(ctx, gen)
}

func (p *Poller[T]) issueLocked() uint64 {
	p.issued++
	p.pending = true
	return p.issued
}

func (p *Poller[T]) run(ctx context.Context, gen uint64) {
	v := p.fetch(ctx)
	if p.complete(gen, v) {
		p.afterApply(gen)
	}
}

func (p *Poller[T]) afterApply(gen uint64) {
	if p.cfg.after == nil {
		return
	}
	p.afterMu.Lock()
	defer p.afterMu.Unlock()
	if p.Applied() != gen {
		return
	}
	p.cfg.after(gen)
}

func (p *Poller[T]) complete(gen uint64, v T) bool {
	p.mu.Lock()
	if gen == p.issued {
		p.pending = false
	}
	if !p.running || gen != p.issued || gen <= p.applied {
		p.mu.Unlock()
		if p.cfg.metrics != nil {
			p.cfg.metrics.RecordStale(p.name)
		}
		p.cfg.log.Debug("poller: discarded stale completion",
			applogger.String("source", p.name),
			applogger.Uint64("generation", gen),
		)
		return false
	}
	p.applied = gen
	p.apply(gen, v)
	p.mu.Unlock()

	if p.cfg.metrics != nil {
		p.cfg.metrics.RecordPollCycle(p.name)
	}
	return true
}
