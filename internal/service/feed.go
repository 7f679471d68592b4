package service

import (
	"context"
	"fmt"

	"deepscifi.app/feed/common/logger"
	"deepscifi.app/feed/internal/cursor"
	"deepscifi.app/feed/internal/model"
	"deepscifi.app/feed/internal/store"
)

const (
	DefaultPageSize int32 = 20
	MaxPageSize     int32 = 100
)

// FeedPage is one page of feed history. NextCursor is nil exactly when no
// older data exists beyond the returned items.
type FeedPage struct {
	Items      []model.FeedItem
	NextCursor *string
}

type FeedService interface {
	// GetFeed returns a page in strict reverse-chronological order. A nil
	// cursor means the most recent page. Cursors are opaque to callers;
	// malformed ones fail with cursor.ErrInvalid.
	GetFeed(ctx context.Context, cur *string, limit int32) (*FeedPage, error)
}

type feedService struct {
	feed store.FeedStore
}

func NewFeedService(feed store.FeedStore) FeedService {
	return &feedService{feed: feed}
}

func (s *feedService) GetFeed(ctx context.Context, cur *string, limit int32) (*FeedPage, error) {
	sc := logger.StartSpan(ctx, "feed.service.get_feed")
	defer sc.End()
	ctx = sc.Context()

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var before *cursor.Position
	if cur != nil && *cur != "" {
		pos, err := cursor.Decode(*cur)
		if err != nil {
			return nil, err
		}
		before = &pos
	}

	// Fetch one extra row to learn whether older data exists; the extra row
	// is never delivered, it only decides next_cursor.
	rows, err := s.feed.ListPage(ctx, store.PageQuery{
		Before: before,
		Limit:  limit + 1,
	})
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("listing feed page: %w", err)
	}

	hasMore := int32(len(rows)) > limit
	if hasMore {
		rows = rows[:limit]
	}

	page := &FeedPage{
		Items: make([]model.FeedItem, 0, len(rows)),
	}
	for _, row := range rows {
		page.Items = append(page.Items, row.Item)
	}

	if hasMore {
		last := rows[len(rows)-1]
		token := cursor.Encode(cursor.Position{
			CreatedAt: last.Item.CreatedAt,
			Seq:       last.Seq,
		})
		page.NextCursor = &token
	}

	return page, nil
}
