// Package feed implements the client-side merge engine: a single ordered,
// de-duplicated feed item sequence combining paginated history, polled new
// items, and stream-pushed items.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"deepscifi.app/feed/internal/model"
)

var (
	// ErrInitialLoad means the very first page fetch failed; nothing is
	// rendered and the caller should show a full retryable error state.
	ErrInitialLoad = errors.New("initial feed load failed")

	// ErrLoadMore means a pagination fetch failed; existing items are
	// untouched and the caller may retry.
	ErrLoadMore = errors.New("loading more feed items failed")

	// ErrStreamUnavailable means the push channel could not be established
	// or dropped. Unlike poll failures this is surfaced: the stream is the
	// primary delivery path, and its failure is actionable.
	ErrStreamUnavailable = errors.New("feed stream unavailable")
)

// Aggregator owns the merged item sequence for one feed view. All state
// mutations are serialized by an internal mutex, so load-more appends, poll
// prepends, and stream pushes can be in flight concurrently: appends touch
// the tail, prepends touch the head, and the seen set is the safety net
// against double-insertion when both paths discover the same item.
type Aggregator struct {
	source Source
	limit  int32

	mu          sync.Mutex
	items       []model.FeedItem
	cursor      *string
	seen        map[string]struct{}
	generation  uint64
	initialized bool
	loadingMore bool
}

func NewAggregator(source Source, limit int32) *Aggregator {
	if limit <= 0 {
		limit = 20
	}
	return &Aggregator{
		source: source,
		limit:  limit,
		seen:   make(map[string]struct{}),
	}
}

// Items returns a snapshot of the current sequence, newest first.
func (a *Aggregator) Items() []model.FeedItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.FeedItem, len(a.items))
	copy(out, a.items)
	return out
}

// HasMore reports whether older history remains to page through.
func (a *Aggregator) HasMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor != nil
}

// Len returns the number of items currently held.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Reset discards all state and bumps the generation so results of fetches
// still in flight are dropped when they arrive instead of corrupting the
// fresh view. In-flight requests are not cancelled.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.items = nil
	a.cursor = nil
	a.seen = make(map[string]struct{})
	a.initialized = false
	a.loadingMore = false
}

// LoadInitial fetches the most recent page and replaces all state with it.
func (a *Aggregator) LoadInitial(ctx context.Context) error {
	a.mu.Lock()
	gen := a.generation
	a.mu.Unlock()

	page, err := a.source.GetFeed(ctx, nil, a.limit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitialLoad, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return nil
	}

	a.items = make([]model.FeedItem, 0, len(page.Items))
	a.seen = make(map[string]struct{}, len(page.Items))
	for _, item := range page.Items {
		if _, dup := a.seen[item.Key()]; dup {
			continue
		}
		a.seen[item.Key()] = struct{}{}
		a.items = append(a.items, item)
	}
	a.cursor = page.NextCursor
	a.initialized = true
	return nil
}

// LoadMore fetches the next older page and appends its unseen items,
// returning them. It is a no-op while another load-more is in flight, before
// the initial load, or once history is exhausted.
//
// The cursor always advances, even when every returned item was already
// seen: a burst of new inserts can shift the window so a page overlaps
// already-fetched items, and refusing to advance would retry the same page
// forever.
func (a *Aggregator) LoadMore(ctx context.Context) ([]model.FeedItem, error) {
	a.mu.Lock()
	if !a.initialized || a.loadingMore || a.cursor == nil {
		a.mu.Unlock()
		return nil, nil
	}
	a.loadingMore = true
	cur := *a.cursor
	gen := a.generation
	a.mu.Unlock()

	page, err := a.source.GetFeed(ctx, &cur, a.limit)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadingMore = false

	if gen != a.generation {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadMore, err)
	}

	var appended []model.FeedItem
	for _, item := range page.Items {
		if _, dup := a.seen[item.Key()]; dup {
			continue
		}
		a.seen[item.Key()] = struct{}{}
		a.items = append(a.items, item)
		appended = append(appended, item)
	}
	a.cursor = page.NextCursor
	return appended, nil
}

// Poll fetches the current head page and prepends items strictly newer than
// the known head, returning them in delivered (descending) order. Callers
// treat a poll failure as silent: log it and wait for the next tick.
func (a *Aggregator) Poll(ctx context.Context) ([]model.FeedItem, error) {
	a.mu.Lock()
	if !a.initialized || len(a.items) == 0 {
		a.mu.Unlock()
		return nil, nil
	}
	newest := a.items[0].CreatedAt
	gen := a.generation
	a.mu.Unlock()

	page, err := a.source.GetFeed(ctx, nil, a.limit)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return nil, nil
	}

	var fresh []model.FeedItem
	for _, item := range page.Items {
		if !item.CreatedAt.After(newest) {
			continue
		}
		if _, dup := a.seen[item.Key()]; dup {
			continue
		}
		a.seen[item.Key()] = struct{}{}
		fresh = append(fresh, item)
	}
	if len(fresh) > 0 {
		a.items = append(fresh, a.items...)
	}
	return fresh, nil
}

// ApplyStream merges one push-delivered item using the same de-duplication
// rule as polling. Reports whether the item was applied. Items usually land
// at the head; a late arrival that is older than the current head is placed
// at its ordered position so the descending invariant holds.
func (a *Aggregator) ApplyStream(item model.FeedItem) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return false
	}
	if _, dup := a.seen[item.Key()]; dup {
		return false
	}

	a.seen[item.Key()] = struct{}{}
	idx := sort.Search(len(a.items), func(i int) bool {
		return !a.items[i].CreatedAt.After(item.CreatedAt)
	})
	a.items = append(a.items, model.FeedItem{})
	copy(a.items[idx+1:], a.items[idx:])
	a.items[idx] = item
	return true
}
