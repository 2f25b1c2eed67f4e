package usecase

import (
	"context"
	"sync"

	domrepo "SentinelConsole/internal/domain/repository"
	applogger "SentinelConsole/pkg/logger"
)

// Console owns the page views. Views are mounted while an admin session exists
// and unmounted as soon as it goes away, so no polling runs signed out.
type Console struct {
	Market       *MarketView
	OrderBook    *OrderBookView
	Trades       *TradeView
	Surveillance *SurveillanceView

	sessions domrepo.SessionStore
	log      *applogger.Logger

	mu  sync.Mutex
	ctx context.Context

	// syncMu serializes session-driven mount and unmount.
	syncMu sync.Mutex
}

func NewConsole(sessions domrepo.SessionStore, market *MarketView, book *OrderBookView, trades *TradeView, surv *SurveillanceView, log *applogger.Logger) *Console {
	if log == nil {
		log = applogger.Nop()
	}
	return &Console{
		Market:       market,
		OrderBook:    book,
		Trades:       trades,
		Surveillance: surv,
		sessions:     sessions,
		log:          log,
	}
}

// Views lists every page in a fixed order.
func (c *Console) Views() []View {
	return []View{c.Market, c.OrderBook, c.Trades, c.Surveillance}
}

// View finds a page by name.
func (c *Console) View(name string) (View, bool) {
	for _, v := range c.Views() {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Start binds the console to ctx and mounts the views if a session already exists.
func (c *Console) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if c.sessions != nil && c.sessions.Current() != nil {
		c.MountAll()
	}
}

// Stop unmounts every view.
func (c *Console) Stop() {
	c.UnmountAll()
	c.mu.Lock()
	c.ctx = nil
	c.mu.Unlock()
}

// SessionChanged is the session listener. The event only prompts a resync;
// views follow whatever session the store holds once the lock is taken.
func (c *Console) SessionChanged(active bool) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	if c.sessions != nil {
		active = c.sessions.Current() != nil
	}
	if active {
		c.MountAll()
		return
	}
	c.UnmountAll()
}

func (c *Console) MountAll() {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		return
	}
	for _, v := range c.Views() {
		v.Mount(ctx)
	}
	c.log.Info("console: views mounted")
}

func (c *Console) UnmountAll() {
	for _, v := range c.Views() {
		v.Unmount()
	}
	c.log.Info("console: views unmounted")
}
