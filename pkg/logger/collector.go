package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

const publishTimeout = 30 * time.Second

// Publisher ships error digests downstream, Kafka in production.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig controls how errors are grouped before they are shipped.
type CollectionConfig struct {
	TimeInterval   time.Duration // flush at least this often
	CountThreshold int           // flush once this many distinct errors are pending
	Topic          string
	Source         string // stamped on every batch, e.g. the console instance
	Publisher      Publisher
	Clock          clock.Clock
}

// ErrorDigest is one distinct error and how often it repeated in a window.
type ErrorDigest struct {
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// DigestBatch is the payload of one flush.
type DigestBatch struct {
	Source  string        `json:"source,omitempty"`
	From    time.Time     `json:"from"`
	To      time.Time     `json:"to"`
	Entries []ErrorDigest `json:"entries"`
}

// LogCollector groups repeated errors so a failing backend produces one
// message per window instead of one per poll.
type LogCollector struct {
	config  CollectionConfig
	clock   clock.Clock
	mu      sync.Mutex
	pending map[string]*ErrorDigest
	order   []string
	since   time.Time
	dropped atomic.Int64

	done    chan struct{}
	loop    sync.WaitGroup
	publish sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	cfg := *config
	if cfg.TimeInterval <= 0 {
		cfg.TimeInterval = 30 * time.Second
	}
	if cfg.CountThreshold <= 0 {
		cfg.CountThreshold = 100
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	c := &LogCollector{
		config:  cfg,
		clock:   cfg.Clock,
		pending: make(map[string]*ErrorDigest),
		since:   cfg.Clock.Now(),
		done:    make(chan struct{}),
	}
	ticker := c.clock.Ticker(cfg.TimeInterval)
	c.loop.Add(1)
	go c.run(ticker)
	return c
}

// AddLog records one occurrence.
func (c *LogCollector) AddLog(level, component, message string, fields map[string]interface{}, caller string) {
	now := c.clock.Now()
	key := digestKey(level, component, message, fields, caller)

	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.pending[key]; ok {
		d.Count++
		d.LastSeen = now
		return
	}
	c.pending[key] = &ErrorDigest{
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
	c.order = append(c.order, key)
	if len(c.pending) >= c.config.CountThreshold {
		c.flushLocked()
	}
}

// Dropped counts batches the publisher rejected.
func (c *LogCollector) Dropped() int64 { return c.dropped.Load() }

// Close flushes what is pending and waits for in-flight publishes.
func (c *LogCollector) Close() {
	close(c.done)
	c.loop.Wait()
	c.publish.Wait()
}

func (c *LogCollector) run(ticker *clock.Ticker) {
	defer c.loop.Done()
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
		case <-c.done:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
			return
		}
	}
}

func (c *LogCollector) flushLocked() {
	if len(c.pending) == 0 {
		return
	}
	now := c.clock.Now()
	batch := DigestBatch{
		Source:  c.config.Source,
		From:    c.since,
		To:      now,
		Entries: make([]ErrorDigest, 0, len(c.pending)),
	}
	for _, key := range c.order {
		batch.Entries = append(batch.Entries, *c.pending[key])
	}
	c.pending = make(map[string]*ErrorDigest)
	c.order = nil
	c.since = now

	if c.config.Publisher == nil {
		return
	}
	c.publish.Add(1)
	go func() {
		defer c.publish.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, batch); err != nil {
			c.dropped.Add(1)
		}
	}()
}

func digestKey(level, component, message string, fields map[string]interface{}, caller string) string {
	data, _ := json.Marshal(struct {
		Level     string                 `json:"l"`
		Component string                 `json:"c"`
		Message   string                 `json:"m"`
		Fields    map[string]interface{} `json:"f"`
		Caller    string                 `json:"at"`
	}{level, component, message, fields, caller})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
