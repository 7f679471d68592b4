package store

import (
	"context"
	"errors"

	"deepscifi.app/feed/internal/cursor"
	"deepscifi.app/feed/internal/model"
)

var ErrNotFound = errors.New("not found")

// PageQuery selects one backward page of feed history. A nil Before means
// "most recent page". Limit is assumed validated by the caller.
type PageQuery struct {
	Before *cursor.Position
	Limit  int32
}

// StoredItem pairs a feed item with the insertion sequence the store assigned
// to it. The sequence is the pagination tiebreaker and never leaves the
// server except inside an opaque cursor.
type StoredItem struct {
	Seq  int64
	Item model.FeedItem
}

// FeedStore reads and appends the feed_items projection. Items are append
// only: no update or delete exists on purpose.
type FeedStore interface {
	// ListPage returns up to Limit items strictly ordered by
	// (created_at DESC, seq DESC), starting strictly after Before when set.
	ListPage(ctx context.Context, q PageQuery) ([]StoredItem, error)

	// Insert appends one item. Returns false when an item with the same
	// (type, id) already exists; producers retry idempotently.
	Insert(ctx context.Context, seq int64, item model.FeedItem) (bool, error)
}
