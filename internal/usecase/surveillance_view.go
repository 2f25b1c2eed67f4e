package usecase

import (
	"context"
	"sync"

	"SentinelConsole/internal/domain/models"
)

type surveillanceCycle struct {
	alerts   []models.SurveillanceAlert
	model    models.ModelStatus
	overview models.MarketOverview
}

// SurveillanceView combines alerts, model status and the market overview.
type SurveillanceView struct {
	deps   ViewDeps
	poller *Poller[surveillanceCycle]
	frame  frame

	mu        sync.RWMutex
	loading   bool
	cycle     surveillanceCycle
	updatedAt string
}

func NewSurveillanceView(deps ViewDeps, cfg ViewConfig) *SurveillanceView {
	v := &SurveillanceView{deps: deps.withDefaults()}
	v.poller = NewPoller(models.ViewSurveillance, cfg.Interval, v.fetch, v.apply, v.deps.pollerOptions(v.render)...)
	return v
}

func (v *SurveillanceView) Name() string { return models.ViewSurveillance }

func (v *SurveillanceView) Mount(ctx context.Context) {
	if v.poller.Running() {
		return
	}
	v.mu.Lock()
	v.loading = true
	v.cycle = surveillanceCycle{}
	v.updatedAt = ""
	v.mu.Unlock()
	v.poller.Start(ctx)
}

func (v *SurveillanceView) Unmount() { v.poller.Stop() }

func (v *SurveillanceView) Refresh() { v.poller.Trigger() }

func (v *SurveillanceView) Mounted() bool { return v.poller.Running() }

// View derives the page from the latest snapshot.
func (v *SurveillanceView) View() models.SurveillanceView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	alerts := v.cycle.alerts
	if alerts == nil {
		alerts = []models.SurveillanceAlert{}
	}
	return models.SurveillanceView{
		Loading:     v.loading,
		Alerts:      alerts,
		AlertCounts: AlertCounts(alerts),
		Model:       v.cycle.model,
		Overview:    v.cycle.overview,
		UpdatedAt:   v.updatedAt,
	}
}

func (v *SurveillanceView) fetch(ctx context.Context) surveillanceCycle {
	var c surveillanceCycle
	fetchAll(
		func() { c.alerts = v.deps.Data.SurveillanceAlerts(ctx) },
		func() { c.model = v.deps.Data.ModelStatus(ctx) },
		func() { c.overview = v.deps.Data.MarketOverview(ctx) },
	)
	return c
}

func (v *SurveillanceView) apply(gen uint64, c surveillanceCycle) {
	v.mu.Lock()
	v.cycle = c
	v.loading = false
	v.updatedAt = v.deps.now()
	v.mu.Unlock()
	v.frame.store(gen, v.View())
}

func (v *SurveillanceView) render(gen uint64) {
	v.frame.render(v.deps.Renderer, models.ViewSurveillance, gen)
}
