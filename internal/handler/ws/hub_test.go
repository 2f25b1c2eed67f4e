package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SentinelConsole/internal/domain/models"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil, nil)
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		srv.Close()
	})

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(2 * time.Millisecond)
	}
	return h, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	return ev
}

func TestHubBroadcastsSnapshots(t *testing.T) {
	h, conn := startHub(t)

	h.BroadcastSnapshot(&models.Snapshot{View: models.ViewMarketData, Generation: 3})
	ev := readEvent(t, conn)
	if ev.Type != EventSnapshot || ev.Snapshot == nil || ev.Snapshot.Generation != 3 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestHubToLoginReachesEveryClient(t *testing.T) {
	h, conn := startHub(t)

	h.ToLogin("unauthorized")
	ev := readEvent(t, conn)
	if ev.Type != EventNavigate || ev.Path != models.LoginPath || ev.Reason != "unauthorized" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestHubHonorsSubscriptions(t *testing.T) {
	h, conn := startHub(t)

	req, _ := json.Marshal(Request{Op: "subscribe", Channels: []string{models.ViewSurveillance}})
	if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.RLock()
		var filtered bool
		for c := range h.clients {
			filtered = !c.Wants(models.ViewTradeHistory)
		}
		h.mu.RUnlock()
		if filtered {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscription not applied")
		}
		time.Sleep(2 * time.Millisecond)
	}

	h.BroadcastSnapshot(&models.Snapshot{View: models.ViewTradeHistory})
	h.BroadcastSnapshot(&models.Snapshot{View: models.ViewSurveillance})
	ev := readEvent(t, conn)
	if ev.Snapshot == nil || ev.Snapshot.View != models.ViewSurveillance {
		t.Fatalf("unsubscribed view delivered: %+v", ev)
	}
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil, nil, WithAllowedOrigins([]string{"https://ops.example.com"}))
	go h.Run(ctx)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	foreign := http.Header{"Origin": []string{"https://evil.example.com"}}
	if conn, _, err := websocket.DefaultDialer.Dial(url, foreign); err == nil {
		_ = conn.Close()
		t.Fatalf("upgrade from a foreign origin succeeded")
	}

	allowed := http.Header{"Origin": []string{"https://ops.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, allowed)
	if err != nil {
		t.Fatalf("dial from allowed origin: %v", err)
	}
	_ = conn.Close()
}
