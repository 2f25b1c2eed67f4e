package usecase

import (
	"context"
	"time"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"
	applogger "SentinelConsole/pkg/logger"
	"SentinelConsole/pkg/util"

	"github.com/benbjohnson/clock"
)

const publishTimeout = 5 * time.Second

// Broadcaster pushes rendered snapshots to connected operators.
type Broadcaster interface {
	BroadcastSnapshot(s *models.Snapshot)
}

// Renderer fans each fresh render out to live subscribers and the snapshot publisher.
// Either target may be nil.
type Renderer struct {
	live      Broadcaster
	publisher domrepo.SnapshotPublisher
	clock     clock.Clock
	log       *applogger.Logger
}

func NewRenderer(live Broadcaster, publisher domrepo.SnapshotPublisher, clk clock.Clock, log *applogger.Logger) *Renderer {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &Renderer{live: live, publisher: publisher, clock: clk, log: log}
}

// Render wraps data into a snapshot and hands it to the targets.
func (r *Renderer) Render(view string, gen uint64, data interface{}) {
	if r == nil {
		return
	}
	snap := &models.Snapshot{
		View:       view,
		Generation: gen,
		RenderedAt: util.FormatISO(r.clock.Now()),
		Data:       data,
	}
	if r.live != nil {
		r.live.BroadcastSnapshot(snap)
	}
	if r.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := r.publisher.PublishSnapshot(ctx, snap); err != nil {
			r.log.Warn("render: snapshot publish failed",
				applogger.String("view", view),
				applogger.Error(err),
			)
		}
	}
}
