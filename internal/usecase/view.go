package usecase

import (
	"context"
	"sync"
	"time"

	domrepo "SentinelConsole/internal/domain/repository"
	applogger "SentinelConsole/pkg/logger"
	"SentinelConsole/pkg/util"

	"github.com/benbjohnson/clock"
)

// ViewDeps are shared by every page view.
type ViewDeps struct {
	Data     domrepo.AdminData
	Renderer *Renderer
	Clock    clock.Clock
	Metrics  domrepo.Metrics
	Log      *applogger.Logger
}

// ViewConfig holds per-page settings.
type ViewConfig struct {
	Interval      time.Duration
	DefaultSymbol string
	SymbolChoices int
}

// View is a page that polls while it is mounted.
type View interface {
	Name() string
	Mount(ctx context.Context)
	Unmount()
	Refresh()
	Mounted() bool
}

func (d ViewDeps) withDefaults() ViewDeps {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Log == nil {
		d.Log = applogger.Nop()
	}
	return d
}

func (d ViewDeps) pollerOptions(after func(gen uint64)) []PollerOption {
	return []PollerOption{
		WithPollerClock(d.Clock),
		WithPollerMetrics(d.Metrics),
		WithPollerLogger(d.Log),
		WithAfterApply(after),
	}
}

func (d ViewDeps) now() string {
	return util.FormatISO(d.Clock.Now())
}

// frame is the view model captured when a cycle was applied.
type frame struct {
	mu   sync.Mutex
	gen  uint64
	data interface{}
}

// store runs under the poller lock, so gen and data always belong together.
func (f *frame) store(gen uint64, data interface{}) {
	f.mu.Lock()
	f.gen, f.data = gen, data
	f.mu.Unlock()
}

// render pushes the frame of gen. A frame already replaced by a newer cycle is
// skipped; that cycle renders its own.
func (f *frame) render(r *Renderer, view string, gen uint64) {
	f.mu.Lock()
	cur, data := f.gen, f.data
	f.mu.Unlock()
	if cur != gen {
		return
	}
	r.Render(view, gen, data)
}

// fetchAll runs fns concurrently and waits for all of them.
func fetchAll(fns ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(fn)
	}
	wg.Wait()
}
