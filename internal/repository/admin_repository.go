package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"
	"SentinelConsole/internal/service/adminapi"
	applogger "SentinelConsole/pkg/logger"
	"SentinelConsole/pkg/util"

	"github.com/benbjohnson/clock"
)

// Placeholder 24h range around the last price when the backend has none.
const (
	highFactor = 1.02
	lowFactor  = 0.98
)

// Getter is the slice of the backend client the data functions need.
type Getter interface {
	Get(ctx context.Context, path string, dest interface{}) error
}

// Result carries a fetched value together with the error that replaced it by a default.
type Result[T any] struct {
	Value T
	Err   error
}

// Or returns the value, or def when the fetch failed.
func (r Result[T]) Or(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}

// AdminRepository implements domain.repository.AdminData on top of the admin backend.
type AdminRepository struct {
	api     Getter
	clock   clock.Clock
	metrics domrepo.Metrics
	log     *applogger.Logger
}

func NewAdminRepository(api Getter, clk clock.Clock, metrics domrepo.Metrics, log *applogger.Logger) *AdminRepository {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &AdminRepository{api: api, clock: clk, metrics: metrics, log: log}
}

var _ domrepo.AdminData = (*AdminRepository)(nil)

func fetch[T any](ctx context.Context, r *AdminRepository, resource, path string, decode func(json.RawMessage) (T, error)) Result[T] {
	start := time.Now()
	var raw json.RawMessage
	err := r.api.Get(ctx, path, &raw)
	var v T
	if err == nil {
		v, err = decode(raw)
		if err != nil {
			err = fmt.Errorf("decode %s: %w", resource, err)
		}
	}

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		result = "canceled"
		r.log.Debug("admin data: fetch canceled", applogger.String("resource", resource))
	default:
		result = "error"
		r.log.Error("admin data: fetch failed",
			applogger.String("resource", resource),
			applogger.String("path", path),
			applogger.Error(err),
		)
	}
	if r.metrics != nil {
		r.metrics.RecordFetch(resource, result, time.Since(start))
	}
	return Result[T]{Value: v, Err: err}
}

// Instruments returns the instrument list, or an empty list on failure.
func (r *AdminRepository) Instruments(ctx context.Context) []models.MarketInstrument {
	return r.FetchInstruments(ctx).Or([]models.MarketInstrument{})
}

func (r *AdminRepository) FetchInstruments(ctx context.Context) Result[[]models.MarketInstrument] {
	now := r.clock.Now()
	return fetch(ctx, r, "instruments", adminapi.PathSymbols, func(raw json.RawMessage) ([]models.MarketInstrument, error) {
		rows, err := decodeList[rawInstrument](raw)
		if err != nil {
			return nil, err
		}
		out := make([]models.MarketInstrument, 0, len(rows))
		for _, in := range rows {
			out = append(out, normalizeInstrument(in, now))
		}
		return out, nil
	})
}

func normalizeInstrument(in rawInstrument, now time.Time) models.MarketInstrument {
	m := models.MarketInstrument{
		Symbol:        string(in.Symbol),
		Name:          string(in.Name),
		LastPrice:     in.MarketPrice.or(0),
		Change:        in.Change.or(0),
		ChangePercent: in.ChangePercent.or(0),
		Volume:        in.Volume.or(models.VolumeUnavailable),
		Timestamp:     util.NormalizeTimestamp(in.Timestamp, now),
	}
	if in.High24h.ok {
		m.High24h = floatPtr(in.High24h.v)
	} else if in.MarketPrice.ok {
		m.High24h = floatPtr(m.LastPrice * highFactor)
	}
	if in.Low24h.ok {
		m.Low24h = floatPtr(in.Low24h.v)
	} else if in.MarketPrice.ok {
		m.Low24h = floatPtr(m.LastPrice * lowFactor)
	}
	return m
}

// OrderBook returns all resting orders, or an empty list on failure.
func (r *AdminRepository) OrderBook(ctx context.Context, symbol string) []models.OrderBookEntry {
	return r.FetchOrderBook(ctx, symbol).Or([]models.OrderBookEntry{})
}

func (r *AdminRepository) FetchOrderBook(ctx context.Context, symbol string) Result[[]models.OrderBookEntry] {
	now := r.clock.Now()
	return fetch(ctx, r, "orderbook", withSymbol(adminapi.PathOrderBook, symbol), func(raw json.RawMessage) ([]models.OrderBookEntry, error) {
		rows, err := decodeList[rawOrder](raw)
		if err != nil {
			return nil, err
		}
		out := make([]models.OrderBookEntry, 0, len(rows))
		for i, o := range rows {
			id := string(o.ID)
			if id == "" {
				id = fmt.Sprintf("order-%d", i)
			}
			out = append(out, models.NewOrderBookEntry(
				id,
				string(o.Symbol),
				bookSide(string(o.Side)),
				o.Price.or(0),
				o.Quantity.or(0),
				util.NormalizeTimestamp(o.Timestamp, now),
				models.SourceMarket,
			))
		}
		return out, nil
	})
}

// TradeHistory returns executed trades, or an empty list on failure.
func (r *AdminRepository) TradeHistory(ctx context.Context, symbol string) []models.TradeRecord {
	return r.FetchTradeHistory(ctx, symbol).Or([]models.TradeRecord{})
}

func (r *AdminRepository) FetchTradeHistory(ctx context.Context, symbol string) Result[[]models.TradeRecord] {
	now := r.clock.Now()
	return fetch(ctx, r, "trades", withSymbol(adminapi.PathTrades, symbol), func(raw json.RawMessage) ([]models.TradeRecord, error) {
		rows, err := decodeList[rawTrade](raw)
		if err != nil {
			return nil, err
		}
		out := make([]models.TradeRecord, 0, len(rows))
		for _, tr := range rows {
			rec := models.NewTradeRecord(
				string(tr.ID),
				string(tr.Symbol),
				tradeSide(string(tr.Side)),
				tr.Price.or(0),
				tr.Quantity.or(0),
				util.NormalizeTimestamp(tr.Timestamp, now),
			)
			rec.Maker = string(tr.UserID)
			if rec.Maker == "" {
				rec.Maker = "User"
			}
			rec.Taker = "Market"
			rec.Source = models.SourceMarket
			out = append(out, rec)
		}
		return out, nil
	})
}

// SurveillanceAlerts returns the current alerts, or an empty list on failure.
func (r *AdminRepository) SurveillanceAlerts(ctx context.Context) []models.SurveillanceAlert {
	return r.FetchSurveillanceAlerts(ctx).Or([]models.SurveillanceAlert{})
}

func (r *AdminRepository) FetchSurveillanceAlerts(ctx context.Context) Result[[]models.SurveillanceAlert] {
	now := r.clock.Now()
	res := fetch(ctx, r, "alerts", adminapi.PathAlerts, func(raw json.RawMessage) ([]models.SurveillanceAlert, error) {
		rows, err := decodeList[rawAlert](raw)
		if err != nil {
			return nil, err
		}
		out := make([]models.SurveillanceAlert, 0, len(rows))
		for _, a := range rows {
			desc := string(a.Message)
			if desc == "" {
				desc = string(a.Description)
			}
			typ := models.AlertType(strings.ToUpper(string(a.Type)))
			if typ == "" {
				typ = models.AlertAnomaly
			}
			sev := models.Severity(strings.ToUpper(string(a.Severity)))
			if sev == "" {
				sev = models.SeverityLow
			}
			out = append(out, models.SurveillanceAlert{
				ID:            string(a.ID),
				Type:          typ,
				Severity:      sev,
				Symbol:        string(a.Symbol),
				Description:   desc,
				DetectedAt:    util.NormalizeTimestamp(a.Timestamp, now),
				Status:        models.AlertActive,
				BackendStatus: string(a.Status),
			})
		}
		return out, nil
	})

	overridden := 0
	for _, a := range res.Value {
		if a.BackendStatus != "" && !strings.EqualFold(a.BackendStatus, string(models.AlertActive)) {
			overridden++
		}
	}
	if overridden > 0 {
		r.log.Warn("admin data: alert status overridden to ACTIVE",
			applogger.Int("alerts", overridden),
		)
	}
	return res
}

// ModelStatus reports ACTIVE with backend metrics, or a zeroed INACTIVE status on failure.
func (r *AdminRepository) ModelStatus(ctx context.Context) models.ModelStatus {
	now := util.FormatISO(r.clock.Now())
	res := fetch(ctx, r, "model_metrics", adminapi.PathModelMetrics, decodeObject[rawModelMetrics])
	if res.Err != nil {
		return models.ModelStatus{Status: models.ModelInactive, LastUpdated: now}
	}
	return models.ModelStatus{
		Status:      models.ModelActive,
		Accuracy:    res.Value.Accuracy.or(0),
		Precision:   res.Value.Precision.or(0),
		Recall:      res.Value.Recall.or(0),
		LastUpdated: now,
	}
}

// MarketOverview returns exchange counters, or zeros on failure.
func (r *AdminRepository) MarketOverview(ctx context.Context) models.MarketOverview {
	res := fetch(ctx, r, "overview", adminapi.PathMarketData, decodeObject[rawOverview])
	if res.Err != nil {
		return models.MarketOverview{}
	}
	return models.MarketOverview{
		TotalVolume:  res.Value.TotalVolume.or(0),
		TotalTrades:  res.Value.TotalTrades.or(0),
		ActiveOrders: res.Value.ActiveOrders.or(0),
	}
}

func bookSide(side string) models.BookSide {
	switch strings.ToUpper(strings.TrimSpace(side)) {
	case "BUY", "BID":
		return models.SideBid
	default:
		return models.SideAsk
	}
}

func tradeSide(side string) models.TradeSide {
	switch s := strings.ToUpper(strings.TrimSpace(side)); s {
	case "BUY", "BID":
		return models.SideBuy
	case "SELL", "ASK":
		return models.SideSell
	default:
		return models.TradeSide(s)
	}
}

// withSymbol passes the selection to the backend as a hint; results are still filtered locally.
func withSymbol(path, symbol string) string {
	if symbol == "" || strings.EqualFold(symbol, models.SymbolAll) {
		return path
	}
	return path + "?symbol=" + url.QueryEscape(symbol)
}

func floatPtr(v float64) *float64 { return &v }
