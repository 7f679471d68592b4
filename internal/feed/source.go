package feed

import (
	"context"

	"deepscifi.app/feed/internal/model"
)

// Page is one page of feed history as delivered by the query service.
// NextCursor is nil at end of history.
type Page struct {
	Items      []model.FeedItem
	NextCursor *string
}

// Source abstracts the feed query service. The HTTP client implements it for
// real use; tests substitute in-memory fakes.
type Source interface {
	// GetFeed fetches one page. A nil cursor means the most recent page. The
	// cursor is opaque: callers echo it back untouched.
	GetFeed(ctx context.Context, cursor *string, limit int32) (*Page, error)
}
