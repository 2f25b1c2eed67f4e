package usecase

import (
	"context"
	"sync"

	"SentinelConsole/internal/domain/models"
)

type orderBookCycle struct {
	entries     []models.OrderBookEntry
	instruments []models.MarketInstrument
}

// OrderBookView is the Order Book page for one selected symbol.
type OrderBookView struct {
	deps   ViewDeps
	cfg    ViewConfig
	poller *Poller[orderBookCycle]
	frame  frame

	mu          sync.RWMutex
	symbol      string
	loading     bool
	entries     []models.OrderBookEntry
	instruments []models.MarketInstrument
	updatedAt   string
}

func NewOrderBookView(deps ViewDeps, cfg ViewConfig) *OrderBookView {
	v := &OrderBookView{deps: deps.withDefaults(), cfg: cfg, symbol: cfg.DefaultSymbol}
	v.poller = NewPoller(models.ViewOrderBook, cfg.Interval, v.fetch, v.apply, v.deps.pollerOptions(v.render)...)
	return v
}

func (v *OrderBookView) Name() string { return models.ViewOrderBook }

func (v *OrderBookView) Mount(ctx context.Context) {
	if v.poller.Running() {
		return
	}
	v.mu.Lock()
	v.loading = true
	v.entries = nil
	v.instruments = nil
	v.updatedAt = ""
	v.mu.Unlock()
	v.poller.Start(ctx)
}

func (v *OrderBookView) Unmount() { v.poller.Stop() }

func (v *OrderBookView) Refresh() { v.poller.Trigger() }

func (v *OrderBookView) Mounted() bool { return v.poller.Running() }

// Symbol returns the selected symbol.
func (v *OrderBookView) Symbol() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.symbol
}

// SetSymbol changes the selection and refetches right away. An unchanged,
// empty or ALL symbol is ignored; the book is always for one instrument.
func (v *OrderBookView) SetSymbol(symbol string) {
	v.mu.Lock()
	if selectsAll(symbol) || symbol == v.symbol {
		v.mu.Unlock()
		return
	}
	v.symbol = symbol
	v.mu.Unlock()
	v.poller.Trigger()
}

// View derives the page from the latest snapshot.
func (v *OrderBookView) View() models.OrderBookView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	bids, asks := SplitBook(FilterOrderBook(v.entries, v.symbol))
	return models.OrderBookView{
		Loading:        v.loading,
		SelectedSymbol: v.symbol,
		SymbolChoices:  SymbolChoices(v.instruments, v.cfg.SymbolChoices),
		Bids:           bids,
		Asks:           asks,
		BidCount:       len(bids),
		AskCount:       len(asks),
		Spread:         Spread(bids, asks),
		UpdatedAt:      v.updatedAt,
	}
}

func (v *OrderBookView) fetch(ctx context.Context) orderBookCycle {
	symbol := v.Symbol()
	var c orderBookCycle
	fetchAll(
		func() { c.entries = v.deps.Data.OrderBook(ctx, symbol) },
		func() { c.instruments = v.deps.Data.Instruments(ctx) },
	)
	return c
}

func (v *OrderBookView) apply(gen uint64, c orderBookCycle) {
	v.mu.Lock()
	v.entries = c.entries
	v.instruments = c.instruments
	v.loading = false
	v.updatedAt = v.deps.now()
	v.mu.Unlock()
	v.frame.store(gen, v.View())
}

func (v *OrderBookView) render(gen uint64) {
	v.frame.render(v.deps.Renderer, models.ViewOrderBook, gen)
}
