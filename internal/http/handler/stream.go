package handler

import (
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"deepscifi.app/feed/internal/model"
)

// Subscriber is the slice of the stream broker the SSE handler needs.
type Subscriber interface {
	Subscribe() (<-chan model.FeedItem, func())
}

type StreamHandler struct {
	broker    Subscriber
	heartbeat time.Duration
}

func NewStreamHandler(broker Subscriber, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &StreamHandler{
		broker:    broker,
		heartbeat: heartbeat,
	}
}

// Stream delivers new feed items over SSE as they are ingested. The
// connection lives until the client disconnects or the broker shuts down;
// heartbeat comments keep proxies from idling the connection out.
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	items, cancel := h.broker.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	slog.DebugContext(ctx, "sse subscriber connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case item, ok := <-items:
			if !ok {
				// Broker shut down; the client sees the drop and retries.
				return false
			}
			c.SSEvent("feed_item", item)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})

	slog.DebugContext(ctx, "sse subscriber disconnected")
}
