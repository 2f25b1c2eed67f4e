package repository

import (
	"context"
	"time"

	"SentinelConsole/internal/domain/models"
)

// AdminData is the set of data access functions. None of them fail: backend or
// decoding errors are logged and replaced by empty or zeroed results.
type AdminData interface {
	Instruments(ctx context.Context) []models.MarketInstrument
	OrderBook(ctx context.Context, symbol string) []models.OrderBookEntry
	TradeHistory(ctx context.Context, symbol string) []models.TradeRecord
	SurveillanceAlerts(ctx context.Context) []models.SurveillanceAlert
	ModelStatus(ctx context.Context) models.ModelStatus
	MarketOverview(ctx context.Context) models.MarketOverview
}

// SessionStore owns the single admin session of this console.
type SessionStore interface {
	Login(ctx context.Context, username, password string) bool
	Logout(ctx context.Context)
	Current() *models.AdminSession
	Token() string
	Clear()
}

// Navigator moves the operator to another page, e.g. to the login page on 401.
type Navigator interface {
	ToLogin(reason string)
}

// SnapshotPublisher receives every fresh render.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, s *models.Snapshot) error
}

type Metrics interface {
	RecordFetch(resource, result string, d time.Duration)
	RecordStale(source string)
	RecordPollCycle(view string)
	RecordSessionEvent(event string)
	RecordSnapshot(view, result string)
	RecordError(kind string)
}
