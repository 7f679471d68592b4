package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deepscifi.app/feed/common/id"
	"deepscifi.app/feed/common/logger"
	"deepscifi.app/feed/internal/model"
	"deepscifi.app/feed/internal/store"
)

var ErrInvalidItem = errors.New("invalid feed item")

type IngestResult struct {
	Seq        int64
	Duplicated bool
}

// IngestService accepts already-computed event records from the upstream
// domain services and appends them to the feed projection. The feed never
// derives events itself.
type IngestService interface {
	Ingest(ctx context.Context, item model.FeedItem) (*IngestResult, error)
}

type ingestService struct {
	feed      store.FeedStore
	publisher Publisher
	logger    *slog.Logger
}

// Publisher is the slice of the stream gateway ingest needs.
type Publisher interface {
	Publish(ctx context.Context, item model.FeedItem) error
}

func NewIngestService(feed store.FeedStore, publisher Publisher, log *slog.Logger) IngestService {
	if log == nil {
		log = slog.Default()
	}
	return &ingestService{
		feed:      feed,
		publisher: publisher,
		logger:    log,
	}
}

func (s *ingestService) Ingest(ctx context.Context, item model.FeedItem) (*IngestResult, error) {
	if item.Type == "" || item.ID == "" {
		return nil, fmt.Errorf("%w: type and id are required", ErrInvalidItem)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	} else {
		item.CreatedAt = item.CreatedAt.UTC()
	}

	sc := logger.StartSpan(ctx, "feed.service.ingest")
	defer sc.End()
	ctx = logger.WithLogFields(sc.Context(), logger.LogFields{
		ItemKey:  logger.Ptr(item.Key()),
		ItemType: logger.Ptr(string(item.Type)),
	})

	seq := id.New()
	created, err := s.feed.Insert(ctx, seq, item)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("inserting feed item: %w", err)
	}

	if !created {
		s.logger.InfoContext(ctx, "duplicate feed item deduped")
		return &IngestResult{Duplicated: true}, nil
	}

	// Stream delivery is best effort: clients discover items by polling when
	// the push path is down, so a publish failure must not fail the ingest.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, item); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish feed item to stream", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "feed item ingested", "seq", seq)
	return &IngestResult{Seq: seq}, nil
}
