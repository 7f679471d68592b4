package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"deepscifi.app/feed/internal/model"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so the same store can run
// inside or outside a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type feedStore struct {
	q Querier
}

func NewFeedStore(q Querier) FeedStore {
	return &feedStore{q: q}
}

const listHeadSQL = `
SELECT seq, item_type, item_id, created_at, payload
FROM feed_items
ORDER BY created_at DESC, seq DESC
LIMIT $1`

const listBeforeSQL = `
SELECT seq, item_type, item_id, created_at, payload
FROM feed_items
WHERE (created_at, seq) < ($1, $2)
ORDER BY created_at DESC, seq DESC
LIMIT $3`

func (s *feedStore) ListPage(ctx context.Context, q PageQuery) ([]StoredItem, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if q.Before == nil {
		rows, err = s.q.Query(ctx, listHeadSQL, q.Limit)
	} else {
		rows, err = s.q.Query(ctx, listBeforeSQL, q.Before.CreatedAt, q.Before.Seq, q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying feed page: %w", err)
	}
	defer rows.Close()

	items := make([]StoredItem, 0, q.Limit)
	for rows.Next() {
		var (
			seq       int64
			itemType  string
			itemID    string
			createdAt time.Time
			payload   []byte
		)
		if err := rows.Scan(&seq, &itemType, &itemID, &createdAt, &payload); err != nil {
			return nil, fmt.Errorf("scanning feed row: %w", err)
		}

		item, err := toFeedItem(itemType, itemID, createdAt, payload)
		if err != nil {
			return nil, err
		}
		items = append(items, StoredItem{Seq: seq, Item: item})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed rows: %w", err)
	}

	return items, nil
}

const insertSQL = `
INSERT INTO feed_items (seq, item_type, item_id, created_at, payload)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (item_type, item_id) DO NOTHING`

func (s *feedStore) Insert(ctx context.Context, seq int64, item model.FeedItem) (bool, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("marshaling feed payload: %w", err)
	}

	tag, err := s.q.Exec(ctx, insertSQL, seq, string(item.Type), item.ID, item.CreatedAt, payload)
	if err != nil {
		return false, fmt.Errorf("inserting feed item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// toFeedItem rebuilds a FeedItem from a row. The payload holds the full
// denormalized item; type, id, and created_at columns are canonical and win
// over whatever the payload carries.
func toFeedItem(itemType, itemID string, createdAt time.Time, payload []byte) (model.FeedItem, error) {
	var item model.FeedItem
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &item); err != nil {
			return model.FeedItem{}, fmt.Errorf("unmarshaling feed payload for %s:%s: %w", itemType, itemID, err)
		}
	}
	item.Type = model.FeedItemType(itemType)
	item.ID = itemID
	item.CreatedAt = createdAt.UTC()
	return item, nil
}
