package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"deepscifi.app/feed/internal/model"
)

// Publisher pushes freshly ingested feed items onto the fan-out channel.
type Publisher interface {
	Publish(ctx context.Context, item model.FeedItem) error
	Close() error
}

type redisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, item model.FeedItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshaling feed item: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing feed item: %w", err)
	}

	p.logger.DebugContext(ctx, "published feed item", "item_key", item.Key(), "channel", p.channel)
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}
