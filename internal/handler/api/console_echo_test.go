package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SentinelConsole/internal/domain/models"
	"SentinelConsole/internal/service/ratelimit"
	"SentinelConsole/internal/service/session"
	"SentinelConsole/internal/usecase"
	"SentinelConsole/pkg/cache"

	"github.com/labstack/echo/v4"
)

type emptyData struct{}

func (emptyData) Instruments(context.Context) []models.MarketInstrument { return nil }
func (emptyData) OrderBook(context.Context, string) []models.OrderBookEntry {
	return nil
}
func (emptyData) TradeHistory(context.Context, string) []models.TradeRecord { return nil }
func (emptyData) SurveillanceAlerts(context.Context) []models.SurveillanceAlert {
	return nil
}
func (emptyData) ModelStatus(context.Context) models.ModelStatus       { return models.ModelStatus{} }
func (emptyData) MarketOverview(context.Context) models.MarketOverview { return models.MarketOverview{} }

type rejectingPoster struct{}

func (rejectingPoster) Post(context.Context, string, interface{}, interface{}) error {
	return errors.New("backend rejected")
}

type navRecorder struct{ reasons []string }

func (n *navRecorder) ToLogin(reason string) { n.reasons = append(n.reasons, reason) }

func newTestServer(t *testing.T) (*echo.Echo, *session.Store, *navRecorder) {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	store := session.NewStore(session.NewStorage(mc, 0, nil), rejectingPoster{}, nil, nil, nil)

	deps := usecase.ViewDeps{Data: emptyData{}}
	cfg := usecase.ViewConfig{Interval: 1e9, DefaultSymbol: "RELIANCE.NSE", SymbolChoices: 4}
	console := usecase.NewConsole(store,
		usecase.NewMarketView(deps, cfg),
		usecase.NewOrderBookView(deps, cfg),
		usecase.NewTradeView(deps, usecase.ViewConfig{Interval: 1e9}),
		usecase.NewSurveillanceView(deps, cfg),
		nil,
	)

	nav := &navRecorder{}
	h := NewConsoleEchoHandler(nil, console, store, nav, nil, ratelimit.New(), LoginLimit{Burst: 3, PerSecond: 0.001})
	e := echo.New()
	h.RegisterRoutes(e)
	return e, store, nav
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPagesRequireSession(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/admin/market", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Redirect != models.LoginPath {
		t.Fatalf("redirect = %q", body.Redirect)
	}
}

func TestDemoLoginOpensPages(t *testing.T) {
	e, store, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/admin/login", `{"username":"admin@sentinel.com","password":"admin123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), store.Token()) {
		t.Fatalf("login response leaked the full token")
	}

	rec = do(e, http.MethodGet, "/admin/orderbook?symbol=TCS.NSE", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("orderbook status = %d", rec.Code)
	}
	var page struct {
		Data models.OrderBookView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Data.SelectedSymbol != "TCS.NSE" {
		t.Fatalf("selected symbol = %q", page.Data.SelectedSymbol)
	}

	if rec := do(e, http.MethodPost, "/admin/nope/refresh", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown view status = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/admin/market/refresh", ""); rec.Code != http.StatusAccepted {
		t.Fatalf("refresh status = %d", rec.Code)
	}
}

func TestLoginValidationAndFailure(t *testing.T) {
	e, _, _ := newTestServer(t)

	if rec := do(e, http.MethodPost, "/admin/login", `{"username":"x"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password status = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/admin/login", `{"username":"x","password":"y"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("rejected login status = %d", rec.Code)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	e, _, _ := newTestServer(t)

	var last int
	for i := 0; i < 4; i++ {
		last = do(e, http.MethodPost, "/admin/login", `{"username":"x","password":"y"}`).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("fourth attempt status = %d, want 429", last)
	}
}

func TestLogoutNavigatesToLogin(t *testing.T) {
	e, store, nav := newTestServer(t)

	do(e, http.MethodPost, "/admin/login", `{"username":"admin@sentinel.com","password":"admin123"}`)
	if rec := do(e, http.MethodPost, "/admin/logout", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if store.Current() != nil {
		t.Fatalf("session survived logout")
	}
	if len(nav.reasons) != 1 || nav.reasons[0] != "logout" {
		t.Fatalf("navigation = %v", nav.reasons)
	}
	if rec := do(e, http.MethodGet, "/admin/session", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("session after logout = %d", rec.Code)
	}
}
