package telegram

import (
	"context"
	"sort"
	"time"

	"github.com/ametelkin/tripline/internal/logger"
)

// UpdateSource fetches the next batch of updates at a given cursor.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
}

// Handler consumes one update. Errors are reported back so the loop can log
// them; the cursor advances regardless.
type Handler interface {
	Handle(ctx context.Context, upd Update) error
}

// Poller drives the ingestion loop: fixed-cadence ticks, one fetch in flight
// at a time, cursor owned exclusively by the loop.
type Poller struct {
	source   UpdateSource
	handler  Handler
	interval time.Duration
	log      *logger.Logger

	offset int64
}

func NewPoller(log *logger.Logger, source UpdateSource, handler Handler, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		source:   source,
		handler:  handler,
		interval: interval,
		log:      log.With("component", "Poller"),
	}
}

// Run blocks until ctx is cancelled. The ticker channel holds a single tick,
// so ticks that fire while a cycle (fetch + batch dispatch) is still running
// are dropped rather than queued: at most one cycle is ever in flight.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("Starting update polling", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Polling stopped")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce runs a single fetch-and-dispatch cycle. A fetch failure skips the
// tick; a handler failure is logged and the cursor still advances past the
// update, so one poisoned update can never wedge the loop.
func (p *Poller) pollOnce(ctx context.Context) {
	updates, err := p.source.GetUpdates(ctx, p.offset)
	if err != nil {
		p.log.Warn("Fetching updates failed, skipping tick", "offset", p.offset, "error", err)
		return
	}

	sort.Slice(updates, func(i, j int) bool {
		return updates[i].UpdateID < updates[j].UpdateID
	})

	for _, upd := range updates {
		p.dispatch(ctx, upd)
		p.offset = upd.UpdateID + 1
	}
}

func (p *Poller) dispatch(ctx context.Context, upd Update) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Handler panic", "update_id", upd.UpdateID, "panic", r)
		}
	}()

	if err := p.handler.Handle(ctx, upd); err != nil {
		p.log.Error("Handler failed", "update_id", upd.UpdateID, "error", err)
	}
}
