package service_test

import (
	"context"
	"sort"

	"deepscifi.app/feed/internal/model"
	"deepscifi.app/feed/internal/store"
)

type mockFeedStore struct {
	listPageFn func(ctx context.Context, q store.PageQuery) ([]store.StoredItem, error)
	insertFn   func(ctx context.Context, seq int64, item model.FeedItem) (bool, error)
}

func (m *mockFeedStore) ListPage(ctx context.Context, q store.PageQuery) ([]store.StoredItem, error) {
	if m.listPageFn != nil {
		return m.listPageFn(ctx, q)
	}
	return nil, nil
}

func (m *mockFeedStore) Insert(ctx context.Context, seq int64, item model.FeedItem) (bool, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, seq, item)
	}
	return true, nil
}

type mockPublisher struct {
	publishFn    func(ctx context.Context, item model.FeedItem) error
	publishCalls int
}

func (m *mockPublisher) Publish(ctx context.Context, item model.FeedItem) error {
	m.publishCalls++
	if m.publishFn != nil {
		return m.publishFn(ctx, item)
	}
	return nil
}

// fakeFeedStore is an in-memory stand-in with real keyset semantics: rows
// ordered by (created_at DESC, seq DESC), pages starting strictly after the
// Before position. Pagination scenarios run against it end to end.
type fakeFeedStore struct {
	rows []store.StoredItem
}

func (f *fakeFeedStore) add(seq int64, item model.FeedItem) {
	f.rows = append(f.rows, store.StoredItem{Seq: seq, Item: item})
	sort.SliceStable(f.rows, func(i, j int) bool {
		a, b := f.rows[i], f.rows[j]
		if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
			return a.Item.CreatedAt.After(b.Item.CreatedAt)
		}
		return a.Seq > b.Seq
	})
}

func (f *fakeFeedStore) ListPage(_ context.Context, q store.PageQuery) ([]store.StoredItem, error) {
	var out []store.StoredItem
	for _, row := range f.rows {
		if q.Before != nil {
			after := row.Item.CreatedAt.After(q.Before.CreatedAt) ||
				(row.Item.CreatedAt.Equal(q.Before.CreatedAt) && row.Seq >= q.Before.Seq)
			if after {
				continue
			}
		}
		out = append(out, row)
		if int32(len(out)) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeFeedStore) Insert(_ context.Context, seq int64, item model.FeedItem) (bool, error) {
	for _, row := range f.rows {
		if row.Item.Type == item.Type && row.Item.ID == item.ID {
			return false, nil
		}
	}
	f.add(seq, item)
	return true, nil
}
