package adminapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	xhttp "SentinelConsole/pkg/http"
)

type fakeCreds struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCreds) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
}

type fakeNav struct {
	reasons []string
}

func (n *fakeNav) ToLogin(reason string) { n.reasons = append(n.reasons, reason) }

func TestSendAttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	creds := &fakeCreds{token: "tok-1"}
	c := New(srv.URL+"/api/admin/", creds, nil, nil)

	var out []interface{}
	if err := c.Get(context.Background(), PathSymbols, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/api/admin/market/symbols" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestSendOmitsHeaderWithoutSession(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{}, nil, nil)
	if err := c.Post(context.Background(), PathLogout, nil, nil); err != nil {
		t.Fatalf("post: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestUnauthorizedClearsSessionAndNavigates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &fakeCreds{token: "expired"}
	nav := &fakeNav{}
	c := New(srv.URL, creds, nav, nil)

	err := c.Get(context.Background(), PathOrderBook, nil)
	if !xhttp.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if creds.Token() != "" || creds.cleared != 1 {
		t.Fatalf("session should be cleared once, token=%q cleared=%d", creds.Token(), creds.cleared)
	}
	if len(nav.reasons) != 1 {
		t.Fatalf("expected one navigation, got %v", nav.reasons)
	}
}

func TestServerErrorKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	creds := &fakeCreds{token: "ok"}
	nav := &fakeNav{}
	c := New(srv.URL, creds, nav, nil)

	err := c.Get(context.Background(), PathAlerts, nil)
	if xhttp.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %v", err)
	}
	if creds.cleared != 0 || len(nav.reasons) != 0 {
		t.Fatalf("non-401 errors must not touch the session")
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{}, nil, nil, xhttp.WithTimeout(20*time.Millisecond))
	if err := c.Get(context.Background(), PathMarketData, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}
