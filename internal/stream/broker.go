// Package stream fans freshly ingested feed items out to SSE subscribers.
// Items travel through a Redis pub/sub channel so every server replica sees
// every item regardless of which replica ingested it.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"deepscifi.app/feed/common/logger"
	"deepscifi.app/feed/internal/model"
)

type Broker struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	nextID int64
	subs   map[int64]chan model.FeedItem
	buffer int
}

func NewBroker(client *redis.Client, channel string, subscriberBuffer int) *Broker {
	if subscriberBuffer <= 0 {
		subscriberBuffer = 64
	}
	return &Broker{
		client:  client,
		channel: channel,
		subs:    make(map[int64]chan model.FeedItem),
		buffer:  subscriberBuffer,
	}
}

// Run consumes the Redis channel and fans items out to local subscribers
// until ctx is cancelled. It returns the subscription error if the pub/sub
// connection drops; the caller decides whether that is fatal.
func (b *Broker) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "feed.stream.broker",
	})

	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Force the subscription before consuming so a dead Redis fails fast.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", b.channel, err)
	}

	slog.InfoContext(ctx, "stream broker running", "channel", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return nil
		case msg, ok := <-ch:
			if !ok {
				b.closeAll()
				return fmt.Errorf("pubsub channel closed")
			}

			var item model.FeedItem
			if err := json.Unmarshal([]byte(msg.Payload), &item); err != nil {
				slog.ErrorContext(ctx, "failed to decode streamed feed item", "error", err)
				continue
			}
			b.fanOut(ctx, item)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called when the consumer goes away; the item channel is closed by the
// broker, never by the consumer.
func (b *Broker) Subscribe() (<-chan model.FeedItem, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan model.FeedItem, b.buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *Broker) fanOut(ctx context.Context, item model.FeedItem) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		select {
		case sub <- item:
		default:
			// Slow consumer: drop its oldest pending item to make room
			// rather than blocking delivery to everyone else.
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- item:
			default:
			}
			slog.WarnContext(ctx, "stream subscriber lagging, dropped oldest item",
				"subscriber_id", strconv.FormatInt(id, 10),
				"item_key", item.Key())
		}
	}
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub)
	}
}
