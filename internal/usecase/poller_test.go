package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type statsStub struct {
	stale   atomic.Int64
	cycles  atomic.Int64
	fetches atomic.Int64
}

func (s *statsStub) RecordFetch(string, string, time.Duration) { s.fetches.Add(1) }
func (s *statsStub) RecordStale(string)                        { s.stale.Add(1) }
func (s *statsStub) RecordPollCycle(string)                    { s.cycles.Add(1) }
func (s *statsStub) RecordSessionEvent(string)                 {}
func (s *statsStub) RecordSnapshot(string, string)             {}
func (s *statsStub) RecordError(string)                        {}

// gatedFetch blocks every call until the test releases it with a value.
type gatedFetch struct {
	mu      sync.Mutex
	waiting []chan string
}

func (g *gatedFetch) fetch(ctx context.Context) string {
	ch := make(chan string, 1)
	g.mu.Lock()
	g.waiting = append(g.waiting, ch)
	g.mu.Unlock()

	select {
	case v := <-ch:
		return v
	case <-ctx.Done():
		return "cancelled"
	}
}

func (g *gatedFetch) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiting)
}

func (g *gatedFetch) release(i int, v string) {
	g.mu.Lock()
	ch := g.waiting[i]
	g.mu.Unlock()
	ch <- v
}

type holder struct {
	mu      sync.Mutex
	value   string
	applies int
}

func (h *holder) apply(_ uint64, v string) {
	h.mu.Lock()
	h.value = v
	h.applies++
	h.mu.Unlock()
}

func (h *holder) get() (string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.applies
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestPoller(g *gatedFetch, h *holder, stats *statsStub, clk clock.Clock) *Poller[string] {
	return NewPoller("test", time.Second, g.fetch, h.apply,
		WithPollerClock(clk),
		WithPollerMetrics(stats),
	)
}

func TestPollerSlowOlderResponseIsDiscarded(t *testing.T) {
	g, h, stats := &gatedFetch{}, &holder{}, &statsStub{}
	p := newTestPoller(g, h, stats, clock.NewMock())
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, "first fetch", func() bool { return g.calls() == 1 })
	p.Trigger()
	waitFor(t, "second fetch", func() bool { return g.calls() == 2 })

	g.release(1, "B")
	waitFor(t, "B applied", func() bool { v, _ := h.get(); return v == "B" })

	g.release(0, "A")
	waitFor(t, "A discarded", func() bool { return stats.stale.Load() == 1 })

	if v, n := h.get(); v != "B" || n != 1 {
		t.Fatalf("state = %q after %d applies, want B after 1", v, n)
	}
	if p.Applied() != 2 {
		t.Fatalf("applied generation = %d, want 2", p.Applied())
	}
}

func TestPollerDropsCompletionAfterStop(t *testing.T) {
	g, h, stats := &gatedFetch{}, &holder{}, &statsStub{}
	p := newTestPoller(g, h, stats, clock.NewMock())
	p.Start(context.Background())

	waitFor(t, "first fetch", func() bool { return g.calls() == 1 })
	p.Stop()
	g.release(0, "late")

	waitFor(t, "late completion discarded", func() bool { return stats.stale.Load() == 1 })
	if _, n := h.get(); n != 0 {
		t.Fatalf("apply ran %d times after stop", n)
	}
	if p.Running() {
		t.Fatalf("poller still running")
	}
}

func TestPollerSkipsTicksWhileCycleOutstanding(t *testing.T) {
	g, h, stats := &gatedFetch{}, &holder{}, &statsStub{}
	clk := clock.NewMock()
	p := newTestPoller(g, h, stats, clk)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, "first fetch", func() bool { return g.calls() == 1 })
	clk.Add(time.Second)
	clk.Add(time.Second)
	time.Sleep(20 * time.Millisecond)
	if n := g.calls(); n != 1 {
		t.Fatalf("ticks started %d fetches while one was pending", n)
	}

	g.release(0, "v1")
	waitFor(t, "v1 applied", func() bool { v, _ := h.get(); return v == "v1" })

	clk.Add(time.Second)
	waitFor(t, "tick fetch", func() bool { return g.calls() == 2 })
	g.release(1, "v2")
	waitFor(t, "v2 applied", func() bool { v, _ := h.get(); return v == "v2" })

	if stats.stale.Load() != 0 {
		t.Fatalf("unexpected stale completions: %d", stats.stale.Load())
	}
	if stats.cycles.Load() != 2 {
		t.Fatalf("applied cycles = %d, want 2", stats.cycles.Load())
	}
}

func TestPollerRestartIgnoresPreviousMount(t *testing.T) {
	g, h, stats := &gatedFetch{}, &holder{}, &statsStub{}
	p := newTestPoller(g, h, stats, clock.NewMock())

	p.Start(context.Background())
	waitFor(t, "first fetch", func() bool { return g.calls() == 1 })
	p.Stop()

	p.Start(context.Background())
	defer p.Stop()
	waitFor(t, "second mount fetch", func() bool { return g.calls() == 2 })

	g.release(0, "old")
	g.release(1, "new")
	waitFor(t, "new applied", func() bool { v, _ := h.get(); return v == "new" })
	waitFor(t, "old discarded", func() bool { return stats.stale.Load() == 1 })

	if v, n := h.get(); v != "new" || n != 1 {
		t.Fatalf("state = %q after %d applies", v, n)
	}
}

func TestPollerTriggerWhenStoppedIsNoop(t *testing.T) {
	g, h, stats := &gatedFetch{}, &holder{}, &statsStub{}
	p := newTestPoller(g, h, stats, clock.NewMock())
	p.Trigger()
	time.Sleep(10 * time.Millisecond)
	if g.calls() != 0 {
		t.Fatalf("trigger on a stopped poller fetched")
	}
}

func TestPollerAfterApplyRunsOncePerAppliedCycle(t *testing.T) {
	g := &gatedFetch{}
	h := &holder{}
	var after atomic.Int64
	p := NewPoller("test", time.Second, g.fetch, h.apply,
		WithPollerClock(clock.NewMock()),
		WithAfterApply(func(uint64) { after.Add(1) }),
	)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, "first fetch", func() bool { return g.calls() == 1 })
	p.Trigger()
	waitFor(t, "second fetch", func() bool { return g.calls() == 2 })
	g.release(0, "a")
	g.release(1, "b")
	waitFor(t, "b applied", func() bool { v, _ := h.get(); return v == "b" })
	time.Sleep(10 * time.Millisecond)

	if after.Load() != 1 {
		t.Fatalf("after hook ran %d times, want 1", after.Load())
	}
}

func TestPollerAfterApplyIsOrderedAndSkipsSuperseded(t *testing.T) {
	g, h := &gatedFetch{}, &holder{}
	gate := make(chan struct{})
	var mu sync.Mutex
	var gens []uint64
	p := NewPoller("test", time.Second, g.fetch, h.apply,
		WithPollerClock(clock.NewMock()),
		WithAfterApply(func(gen uint64) {
			if gen == 1 {
				<-gate
			}
			mu.Lock()
			gens = append(gens, gen)
			mu.Unlock()
		}),
	)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, "first fetch", func() bool { return g.calls() == 1 })
	g.release(0, "a")
	waitFor(t, "a applied", func() bool { v, _ := h.get(); return v == "a" })

	p.Trigger()
	waitFor(t, "second fetch", func() bool { return g.calls() == 2 })
	g.release(1, "b")
	waitFor(t, "b applied", func() bool { return p.Applied() == 2 })
	close(gate)

	got := func() []uint64 {
		mu.Lock()
		defer mu.Unlock()
		return append([]uint64(nil), gens...)
	}
	waitFor(t, "both hooks", func() bool { return len(got()) == 2 })
	if seq := got(); seq[0] != 1 || seq[1] != 2 {
		t.Fatalf("hooks ran out of order: %v", seq)
	}

	// a late hook for a replaced generation is dropped
	p.afterApply(1)
	if n := len(got()); n != 2 {
		t.Fatalf("superseded generation re-ran the hook, %d calls", n)
	}
}
