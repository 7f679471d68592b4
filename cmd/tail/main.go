// Command tail follows the Deep Sci-Fi activity feed in a terminal. It loads
// the most recent page, pages backward on demand, discovers new items by
// polling, and, when enabled, consumes the SSE stream for lower-latency
// delivery with polling as the redundant path.
//
// Controls: Enter loads an older page, q quits.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"deepscifi.app/feed/common/logger"
	"deepscifi.app/feed/core/config"
	"deepscifi.app/feed/internal/feed"
	"deepscifi.app/feed/internal/feedclient"
	"deepscifi.app/feed/internal/feedrender"
	"deepscifi.app/feed/internal/model"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(config.ServiceTypeTail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg)

	client := feedclient.New(cfg.Client.BaseURL)
	agg := feed.NewAggregator(client, int32(cfg.Client.PageSize))

	if err := agg.LoadInitial(ctx); err != nil {
		// Initial load failure is the full-page error state: nothing partial
		// to show, so report and exit.
		fmt.Fprintf(os.Stderr, "could not load the feed: %v\n", err)
		os.Exit(1)
	}

	for _, item := range agg.Items() {
		fmt.Println(feedrender.Line(item))
	}
	if !agg.HasMore() {
		fmt.Println("-- end of history --")
	}

	poller := feed.NewPoller(agg, cfg.Client.PollInterval, func(fresh []model.FeedItem) {
		// Fresh items arrive newest first; print oldest first so the
		// terminal reads chronologically.
		for i := len(fresh) - 1; i >= 0; i-- {
			fmt.Println(feedrender.Line(fresh[i]))
		}
	})
	go poller.Run(ctx)

	if cfg.Client.UseStream {
		go runStream(ctx, client, agg)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "q", "quit", "exit":
			return
		default:
			older, err := agg.LoadMore(ctx)
			if err != nil {
				// Transient inline state: existing items stay, Enter retries.
				fmt.Println("-- failed to load more, press Enter to retry --")
				slog.DebugContext(ctx, "load more failed", "error", err)
				continue
			}
			for _, item := range older {
				fmt.Println(feedrender.Line(item))
			}
			if !agg.HasMore() {
				fmt.Println("-- end of history --")
			}
		}
	}
}

// runStream keeps the SSE stream alive, reconnecting with backoff. Stream
// failure is surfaced to the user (unlike poll failures): the stream is the
// primary delivery path and its failure is actionable.
func runStream(ctx context.Context, client *feedclient.Client, agg *feed.Aggregator) {
	backoff := time.Second
	for {
		err := client.Stream(ctx, func(item model.FeedItem) {
			if agg.ApplyStream(item) {
				fmt.Println(feedrender.Line(item))
			}
		})
		if err == nil {
			// Deliberate shutdown.
			return
		}
		if errors.Is(err, feed.ErrStreamUnavailable) {
			fmt.Printf("-- live stream unavailable, retrying in %s (polling continues) --\n", backoff)
		} else {
			slog.ErrorContext(ctx, "stream consumer failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
