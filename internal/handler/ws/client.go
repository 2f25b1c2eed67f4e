package ws

import (
	"encoding/json"
	"sync"
	"time"

	applogger "SentinelConsole/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

// Request is an inbound subscription change. Channels are view names.
type Request struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}

// Client is one connected page. With no subscriptions it receives every view.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	mu   sync.RWMutex
	subs map[string]struct{}
}

func newClient(h *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   id,
		subs: make(map[string]struct{}),
	}
}

// Wants reports whether the client should receive snapshots of view.
func (c *Client) Wants(view string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.subs) == 0 {
		return true
	}
	_, ok := c.subs[view]
	return ok
}

func (c *Client) apply(req Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch req.Op {
	case "subscribe":
		for _, ch := range req.Channels {
			c.subs[ch] = struct{}{}
		}
	case "unsubscribe":
		for _, ch := range req.Channels {
			delete(c.subs, ch)
		}
	default:
		c.hub.log.Debug("ws: unknown op", applogger.String("client_id", c.id), applogger.String("op", req.Op))
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("ws: read error", applogger.String("client_id", c.id), applogger.Error(err))
			}
			return
		}
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			c.hub.log.Debug("ws: invalid message", applogger.String("client_id", c.id), applogger.Error(err))
			continue
		}
		c.apply(req)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
