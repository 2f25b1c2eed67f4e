package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"

	"github.com/benbjohnson/clock"
)

// SnapshotPipeline sits between the views and the snapshot sink.
// It validates, throttles per view, and buffers when the sink is unavailable.
type SnapshotPipeline struct {
	sink     domrepo.SnapshotPublisher
	metrics  domrepo.Metrics
	clock    clock.Clock
	maxRPS   int
	bufSize  int
	bufCh    chan *models.Snapshot
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-view last accepted time
}

type PipelineOption func(*SnapshotPipeline)

// WithMaxRPS sets the max snapshots per second per view.
func WithMaxRPS(n int) PipelineOption {
	return func(p *SnapshotPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when the sink is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *SnapshotPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clk clock.Clock) PipelineOption {
	return func(p *SnapshotPipeline) {
		if clk != nil {
			p.clock = clk
		}
	}
}

// NewSnapshotPipeline creates a new pipeline.
func NewSnapshotPipeline(sink domrepo.SnapshotPublisher, metrics domrepo.Metrics, opts ...PipelineOption) *SnapshotPipeline {
	p := &SnapshotPipeline{
		sink:     sink,
		metrics:  metrics,
		clock:    clock.New(),
		maxRPS:   2,
		bufSize:  256,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Snapshot, p.bufSize)
	return p
}

var _ domrepo.SnapshotPublisher = (*SnapshotPipeline)(nil)

// Start launches background flushing of buffered snapshots.
func (p *SnapshotPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case s := <-p.bufCh:
				if s == nil {
					continue
				}
				if err := p.sink.PublishSnapshot(ctx, s); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.record(s.View, "flush_error")
					p.clock.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- s:
					default:
						p.record(s.View, "dropped")
					}
				} else {
					backoff = 50 * time.Millisecond
					p.record(s.View, "flushed")
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *SnapshotPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// PublishSnapshot validates, throttles, and forwards s, buffering it when the sink fails.
func (p *SnapshotPipeline) PublishSnapshot(ctx context.Context, s *models.Snapshot) error {
	if err := validateSnapshot(s); err != nil {
		p.record("invalid", "rejected")
		return err
	}
	if !p.allow(s.View, p.clock.Now()) {
		p.record(s.View, "throttled")
		return nil
	}

	if err := p.sink.PublishSnapshot(ctx, s); err != nil {
		select {
		case p.bufCh <- s:
			p.record(s.View, "buffered")
		default:
			p.record(s.View, "dropped")
		}
		return fmt.Errorf("snapshot sink: %w", err)
	}
	p.record(s.View, "ok")
	return nil
}

// Buffered returns the number of snapshots waiting for the sink.
func (p *SnapshotPipeline) Buffered() int {
	return len(p.bufCh)
}

func validateSnapshot(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot nil")
	}
	if s.View == "" {
		return fmt.Errorf("view empty")
	}
	if s.Data == nil {
		return fmt.Errorf("data empty")
	}
	return nil
}

func (p *SnapshotPipeline) allow(view string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[view]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[view] = now
	return true
}

func (p *SnapshotPipeline) record(view, result string) {
	if p.metrics != nil {
		p.metrics.RecordSnapshot(view, result)
	}
}
