package repository

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SentinelConsole/internal/domain/models"
	"SentinelConsole/internal/service/adminapi"
	"SentinelConsole/internal/service/session"
	"SentinelConsole/pkg/cache"

	"github.com/benbjohnson/clock"
)

const eps = 1e-9

func newBackend(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRepo(t *testing.T, baseURL string) (*AdminRepository, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC))
	api := adminapi.New(baseURL, nil, nil, nil)
	return NewAdminRepository(api, clk, nil, nil), clk
}

func TestInstrumentsSynthesizeHighLow(t *testing.T) {
	srv := newBackend(t, map[string]string{
		"/market/symbols": `[{"symbol":"X","marketPrice":100}]`,
	})
	repo, _ := newRepo(t, srv.URL)

	got := repo.Instruments(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 instrument, got %d", len(got))
	}
	in := got[0]
	if in.High24h == nil || math.Abs(*in.High24h-102) > eps {
		t.Fatalf("high24h = %v, want 102", in.High24h)
	}
	if in.Low24h == nil || math.Abs(*in.Low24h-98) > eps {
		t.Fatalf("low24h = %v, want 98", in.Low24h)
	}
	if in.Volume != models.VolumeUnavailable || in.HasVolume() {
		t.Fatalf("missing volume should be the unavailable sentinel, got %v", in.Volume)
	}
	if in.Change != 0 || in.ChangePercent != 0 {
		t.Fatalf("missing numerics should default to 0: %+v", in)
	}
	if in.Timestamp != "2024-10-10T10:10:10.000Z" {
		t.Fatalf("timestamp should fall back to fetch time, got %s", in.Timestamp)
	}
}

func TestInstrumentsKeepBackendValues(t *testing.T) {
	srv := newBackend(t, map[string]string{
		"/market/symbols": `{"data":[{"symbol":"TCS.NSE","name":"TCS","marketPrice":"3500.5","change":-2,"changePercent":"-0.1","volume":12000,"high24h":3600,"low24h":3400}]}`,
	})
	repo, _ := newRepo(t, srv.URL)

	got := repo.Instruments(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 instrument, got %d", len(got))
	}
	in := got[0]
	if in.LastPrice != 3500.5 || in.Change != -2 || in.ChangePercent != -0.1 {
		t.Fatalf("unexpected numerics %+v", in)
	}
	if in.Volume != 12000 || *in.High24h != 3600 || *in.Low24h != 3400 {
		t.Fatalf("backend values should win: %+v", in)
	}
}

func TestOrderBookNormalization(t *testing.T) {
	srv := newBackend(t, map[string]string{
		"/orders/book": `[
			{"id":"o1","symbol":"A","side":"BUY","price":10.1,"quantity":3,"timestamp":"2024-10-10T12:10:10+02:00"},
			{"symbol":"A","side":"SELL","price":10.3,"quantity":0.7,"timestamp":1728555010000},
			{"id":7,"symbol":"A","side":"bid","price":"9.9","quantity":"2"}
		]`,
	})
	repo, _ := newRepo(t, srv.URL)

	got := repo.OrderBook(context.Background(), "A")
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.Total != e.Price*e.Quantity {
			t.Fatalf("total invariant broken for %+v", e)
		}
		if e.Source != models.SourceMarket {
			t.Fatalf("source should be MARKET, got %s", e.Source)
		}
	}
	if got[0].Side != models.SideBid || got[1].Side != models.SideAsk || got[2].Side != models.SideBid {
		t.Fatalf("unexpected sides %s %s %s", got[0].Side, got[1].Side, got[2].Side)
	}
	if got[1].ID != "order-1" || got[2].ID != "7" {
		t.Fatalf("unexpected ids %q %q", got[1].ID, got[2].ID)
	}
	if got[0].Timestamp != "2024-10-10T10:10:10.000Z" || got[1].Timestamp != "2024-10-10T10:10:10.000Z" {
		t.Fatalf("timestamps not normalized: %s %s", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestTradeHistoryNormalization(t *testing.T) {
	srv := newBackend(t, map[string]string{
		"/trades/history": `[
			{"id":"t1","symbol":"A","side":"BUY","price":5,"quantity":4,"userId":"u-9","timestamp":"2024-10-10T10:10:10Z"},
			{"id":"t2","symbol":"B","side":"SELL","price":2,"quantity":1}
		]`,
	})
	repo, _ := newRepo(t, srv.URL)

	got := repo.TradeHistory(context.Background(), models.SymbolAll)
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}
	if got[0].Total != 20 || got[0].Maker != "u-9" || got[0].Taker != "Market" || got[0].Side != models.SideBuy {
		t.Fatalf("unexpected first trade %+v", got[0])
	}
	if got[1].Maker != "User" || got[1].Side != models.SideSell || got[1].Source != models.SourceMarket {
		t.Fatalf("unexpected second trade %+v", got[1])
	}
}

func TestAlertsForceActiveAndKeepBackendStatus(t *testing.T) {
	srv := newBackend(t, map[string]string{
		"/surveillance/alerts": `[
			{"id":"a1","severity":"HIGH","symbol":"A","message":"spoofing pattern","status":"RESOLVED","timestamp":"2024-10-10T10:10:10Z"},
			{"id":"a2","type":"MANIPULATION","severity":"critical","description":"wash trades"}
		]`,
	})
	repo, _ := newRepo(t, srv.URL)

	got := repo.SurveillanceAlerts(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}
	for _, a := range got {
		if a.Status != models.AlertActive {
			t.Fatalf("status should be forced ACTIVE, got %s", a.Status)
		}
	}
	if got[0].BackendStatus != "RESOLVED" {
		t.Fatalf("backend status lost: %+v", got[0])
	}
	if got[0].Type != models.AlertAnomaly || got[0].Description != "spoofing pattern" {
		t.Fatalf("unexpected first alert %+v", got[0])
	}
	if got[1].Type != models.AlertManipulation || got[1].Severity != models.SeverityCritical || got[1].Description != "wash trades" {
		t.Fatalf("unexpected second alert %+v", got[1])
	}
}

func TestModelStatusAndOverview(t *testing.T) {
	srv := newBackend(t, map[string]string{
		"/ml/metrics":  `{"accuracy":0.91,"precision":0.8}`,
		"/market/data": `{"totalVolume":1500000,"totalTrades":42,"activeOrders":7}`,
	})
	repo, _ := newRepo(t, srv.URL)

	ms := repo.ModelStatus(context.Background())
	if ms.Status != models.ModelActive || ms.Accuracy != 0.91 || ms.Precision != 0.8 || ms.Recall != 0 {
		t.Fatalf("unexpected model status %+v", ms)
	}
	ov := repo.MarketOverview(context.Background())
	if ov.TotalVolume != 1500000 || ov.TotalTrades != 42 || ov.ActiveOrders != 7 {
		t.Fatalf("unexpected overview %+v", ov)
	}
}

func TestFailuresDegradeToDefaults(t *testing.T) {
	cases := map[string]*httptest.Server{
		"server error": httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})),
		"malformed": httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"unexpected":true`))
		})),
		"wrong shape": httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"symbols":"nope"}`))
		})),
	}
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	cases["transport"] = closed

	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			defer srv.Close()
			repo, _ := newRepo(t, srv.URL)
			ctx := context.Background()

			if got := repo.Instruments(ctx); got == nil || len(got) != 0 {
				t.Fatalf("instruments: expected empty list, got %v", got)
			}
			if got := repo.OrderBook(ctx, "A"); got == nil || len(got) != 0 {
				t.Fatalf("orderbook: expected empty list, got %v", got)
			}
			if got := repo.TradeHistory(ctx, "A"); got == nil || len(got) != 0 {
				t.Fatalf("trades: expected empty list, got %v", got)
			}
			if got := repo.SurveillanceAlerts(ctx); got == nil || len(got) != 0 {
				t.Fatalf("alerts: expected empty list, got %v", got)
			}
			if ms := repo.ModelStatus(ctx); name != "wrong shape" && (ms.Status != models.ModelInactive || ms.Accuracy != 0) {
				t.Fatalf("model: expected INACTIVE, got %+v", ms)
			}
			if ov := repo.MarketOverview(ctx); ov != (models.MarketOverview{}) {
				t.Fatalf("overview: expected zeros, got %+v", ov)
			}
		})
	}
}

func TestFetchResultKeepsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	repo, _ := newRepo(t, srv.URL)

	res := repo.FetchInstruments(context.Background())
	if res.Err == nil {
		t.Fatalf("internal result should carry the error")
	}
	if got := res.Or(nil); got != nil {
		t.Fatalf("Or should return the default on error")
	}
}

func TestUnauthorizedFetchClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stale" {
			t.Errorf("bearer token not sent: %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	mc := cache.NewMemoryCache()
	defer mc.Close()
	storage := session.NewStorage(mc, 0, nil)
	if err := storage.Save(context.Background(), models.AdminSession{Username: "u", AdminID: "u", Token: "stale"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	api := adminapi.New(srv.URL, storage, nil, nil)
	repo := NewAdminRepository(api, clock.NewMock(), nil, nil)

	if got := repo.OrderBook(context.Background(), ""); len(got) != 0 {
		t.Fatalf("expected empty order book, got %v", got)
	}
	if storage.Token() != "" || storage.Current() != nil {
		t.Fatalf("session should be cleared after 401")
	}
	if ok, _ := mc.Exists(context.Background(), session.StorageKey); ok {
		t.Fatalf("persisted session should be removed after 401")
	}
}
