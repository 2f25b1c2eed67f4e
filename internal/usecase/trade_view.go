package usecase

import (
	"context"
	"sync"

	"SentinelConsole/internal/domain/models"
)

type tradeCycle struct {
	trades      []models.TradeRecord
	instruments []models.MarketInstrument
}

// TradeView is the Trade History page. The ALL selection shows every symbol.
type TradeView struct {
	deps   ViewDeps
	cfg    ViewConfig
	poller *Poller[tradeCycle]
	frame  frame

	mu          sync.RWMutex
	symbol      string
	loading     bool
	trades      []models.TradeRecord
	instruments []models.MarketInstrument
	updatedAt   string
}

func NewTradeView(deps ViewDeps, cfg ViewConfig) *TradeView {
	if cfg.DefaultSymbol == "" {
		cfg.DefaultSymbol = models.SymbolAll
	}
	v := &TradeView{deps: deps.withDefaults(), cfg: cfg, symbol: cfg.DefaultSymbol}
	v.poller = NewPoller(models.ViewTradeHistory, cfg.Interval, v.fetch, v.apply, v.deps.pollerOptions(v.render)...)
	return v
}

func (v *TradeView) Name() string { return models.ViewTradeHistory }

func (v *TradeView) Mount(ctx context.Context) {
	if v.poller.Running() {
		return
	}
	v.mu.Lock()
	v.loading = true
	v.trades = nil
	v.instruments = nil
	v.updatedAt = ""
	v.mu.Unlock()
	v.poller.Start(ctx)
}

func (v *TradeView) Unmount() { v.poller.Stop() }

func (v *TradeView) Refresh() { v.poller.Trigger() }

func (v *TradeView) Mounted() bool { return v.poller.Running() }

func (v *TradeView) Symbol() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.symbol
}

// SetSymbol changes the selection and refetches right away.
func (v *TradeView) SetSymbol(symbol string) {
	v.mu.Lock()
	if symbol == "" || symbol == v.symbol {
		v.mu.Unlock()
		return
	}
	v.symbol = symbol
	v.mu.Unlock()
	v.poller.Trigger()
}

// View derives the page from the latest snapshot.
func (v *TradeView) View() models.TradeHistoryView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	trades := FilterTrades(v.trades, v.symbol)
	return models.TradeHistoryView{
		Loading:        v.loading,
		SelectedSymbol: v.symbol,
		SymbolChoices:  SymbolChoices(v.instruments, v.cfg.SymbolChoices),
		Trades:         trades,
		Count:          len(trades),
		Volumes:        TradeVolumes(trades),
		UpdatedAt:      v.updatedAt,
	}
}

func (v *TradeView) fetch(ctx context.Context) tradeCycle {
	symbol := v.Symbol()
	var c tradeCycle
	fetchAll(
		func() { c.trades = v.deps.Data.TradeHistory(ctx, symbol) },
		func() { c.instruments = v.deps.Data.Instruments(ctx) },
	)
	return c
}

func (v *TradeView) apply(gen uint64, c tradeCycle) {
	v.mu.Lock()
	v.trades = c.trades
	v.instruments = c.instruments
	v.loading = false
	v.updatedAt = v.deps.now()
	v.mu.Unlock()
	v.frame.store(gen, v.View())
}

func (v *TradeView) render(gen uint64) {
	v.frame.render(v.deps.Renderer, models.ViewTradeHistory, gen)
}
