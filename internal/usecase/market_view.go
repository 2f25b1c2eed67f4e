package usecase

import (
	"context"
	"sync"

	"SentinelConsole/internal/domain/models"
)

// MarketView is the Market Data page: the instrument table and its summary cards.
type MarketView struct {
	deps   ViewDeps
	poller *Poller[[]models.MarketInstrument]
	frame  frame

	mu          sync.RWMutex
	loading     bool
	instruments []models.MarketInstrument
	updatedAt   string
}

func NewMarketView(deps ViewDeps, cfg ViewConfig) *MarketView {
	v := &MarketView{deps: deps.withDefaults()}
	v.poller = NewPoller(models.ViewMarketData, cfg.Interval, v.deps.Data.Instruments, v.apply, v.deps.pollerOptions(v.render)...)
	return v
}

func (v *MarketView) Name() string { return models.ViewMarketData }

func (v *MarketView) Mount(ctx context.Context) {
	if v.poller.Running() {
		return
	}
	v.mu.Lock()
	v.loading = true
	v.instruments = nil
	v.updatedAt = ""
	v.mu.Unlock()
	v.poller.Start(ctx)
}

func (v *MarketView) Unmount() { v.poller.Stop() }

func (v *MarketView) Refresh() { v.poller.Trigger() }

func (v *MarketView) Mounted() bool { return v.poller.Running() }

// View derives the page from the latest snapshot.
func (v *MarketView) View() models.MarketDataView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return models.MarketDataView{
		Loading:     v.loading,
		Instruments: FilterInstruments(v.instruments, models.SymbolAll),
		Summary:     MarketSummary(v.instruments),
		UpdatedAt:   v.updatedAt,
	}
}

func (v *MarketView) apply(gen uint64, instruments []models.MarketInstrument) {
	v.mu.Lock()
	v.instruments = instruments
	v.loading = false
	v.updatedAt = v.deps.now()
	v.mu.Unlock()
	v.frame.store(gen, v.View())
}

func (v *MarketView) render(gen uint64) {
	v.frame.render(v.deps.Renderer, models.ViewMarketData, gen)
}
