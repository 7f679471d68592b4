package feed

import (
	"context"
	"log/slog"
	"time"

	"deepscifi.app/feed/common/logger"
	"deepscifi.app/feed/internal/model"
)

// Poller periodically asks the aggregator to discover new head items. Its
// lifetime is bound to the context it runs under: cancel the context to
// release the timer, exactly like closing the feed view.
type Poller struct {
	agg      *Aggregator
	interval time.Duration
	onFresh  func([]model.FeedItem)
}

func NewPoller(agg *Aggregator, interval time.Duration, onFresh func([]model.FeedItem)) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		agg:      agg,
		interval: interval,
		onFresh:  onFresh,
	}
}

// Run blocks until ctx is cancelled. Poll failures are silent: logged at
// debug, never escalated, and the next tick proceeds on schedule.
func (p *Poller) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "feed.poller",
	})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fresh, err := p.agg.Poll(ctx)
			if err != nil {
				slog.DebugContext(ctx, "feed poll failed", "error", err)
				continue
			}
			if len(fresh) > 0 {
				slog.DebugContext(ctx, "feed poll discovered new items", "count", len(fresh))
				if p.onFresh != nil {
					p.onFresh(fresh)
				}
			}
		}
	}
}
