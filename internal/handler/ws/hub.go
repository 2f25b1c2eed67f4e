package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"
	"SentinelConsole/pkg/http/middleware"
	applogger "SentinelConsole/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event types sent to operators.
const (
	EventSnapshot = "snapshot"
	EventNavigate = "navigate"
)

const sendBuffer = 64

// Event is the envelope of every outbound message.
type Event struct {
	Type     string           `json:"type"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
	Path     string           `json:"path,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

type outbound struct {
	view    string // empty goes to every client
	payload []byte
}

// Hub tracks connected operator pages and fans rendered views out to them.
// It also navigates every page to the login screen when the session ends.
type Hub struct {
	upgrader websocket.Upgrader
	metrics  domrepo.Metrics
	log      *applogger.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithAllowedOrigins restricts upgrades to the same origins the HTTP API admits.
// An empty list leaves every origin admitted, matching the HTTP side.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) {
		if len(origins) > 0 {
			h.upgrader.CheckOrigin = middleware.Origins(origins).CheckRequest
		}
	}
}

func NewHub(metrics domrepo.Metrics, log *applogger.Logger, opts ...HubOption) *Hub {
	if log == nil {
		log = applogger.Nop()
	}
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		metrics:    metrics,
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves registrations and broadcasts until ctx is done, then closes every client.
// It must be called once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("ws: client connected", applogger.String("client_id", c.id), applogger.Int("clients", n))

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if msg.view != "" && !c.Wants(msg.view) {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
					h.log.Warn("ws: dropped slow client", applogger.String("client_id", c.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// ServeHTTP upgrades the request and attaches a new client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws: upgrade failed", applogger.Error(err))
		return
	}
	c := newClient(h, conn, uuid.NewString())
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// BroadcastSnapshot sends a rendered view to every client watching it.
func (h *Hub) BroadcastSnapshot(s *models.Snapshot) {
	if s == nil {
		return
	}
	h.send(s.View, Event{Type: EventSnapshot, Snapshot: s})
	if h.metrics != nil {
		h.metrics.RecordSnapshot(s.View, "broadcast")
	}
}

// ToLogin tells every page to go to the login screen.
func (h *Hub) ToLogin(reason string) {
	h.log.Info("ws: navigating to login", applogger.String("reason", reason))
	h.send("", Event{Type: EventNavigate, Path: models.LoginPath, Reason: reason})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) send(view string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws: marshal event", applogger.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{view: view, payload: payload}:
	default:
		h.log.Warn("ws: broadcast queue full", applogger.String("type", ev.Type))
	}
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.Info("ws: client disconnected", applogger.String("client_id", c.id), applogger.Int("clients", len(h.clients)))
}
